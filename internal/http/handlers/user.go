package handlers

import (
	"net/http"

	"fastfeet/internal/apperr"
	"fastfeet/internal/auth"
	"fastfeet/internal/domain"
	"fastfeet/internal/logx"
)

// UserHandler serves /users and /sessions.
type UserHandler struct {
	uc     userUsecase
	logger logx.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(logger logx.Logger, uc userUsecase) *UserHandler {
	return &UserHandler{uc: uc, logger: logger}
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	u, err := h.uc.Create(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusCreated, userToResponse(*u))
}

// Update handles PUT /users for the authenticated user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeAppError(h.logger, w, r, apperr.Unauthorizedf("Token not provided."))
		return
	}
	var req updateUserRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	u, err := h.uc.Update(r.Context(), domain.PartialUserUpdate{
		ID:              p.UserID,
		Name:            req.Name,
		Email:           req.Email,
		OldPassword:     req.OldPassword,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, userToResponse(*u))
}

// Session handles POST /sessions.
func (h *UserHandler) Session(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	s, err := h.uc.Session(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, sessionDTO{User: userToResponse(s.User), Token: s.Token})
}
