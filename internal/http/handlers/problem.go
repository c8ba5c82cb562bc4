package handlers

import (
	"net/http"

	"fastfeet/internal/logx"
)

// ProblemHandler serves delivery problems.
type ProblemHandler struct {
	uc     problemUsecase
	url    URLFunc
	logger logx.Logger
}

// NewProblemHandler creates a ProblemHandler.
func NewProblemHandler(logger logx.Logger, uc problemUsecase, url URLFunc) *ProblemHandler {
	return &ProblemHandler{uc: uc, url: url, logger: logger}
}

// ListOpen handles GET /deliveries/problems.
func (h *ProblemHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	list, err := h.uc.ListOpen(r.Context(), page)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, problemDetailsToResponse(list, h.url))
}

// ListByDelivery handles GET /deliveries/{id}/problems.
func (h *ProblemHandler) ListByDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	list, err := h.uc.ListByDelivery(r.Context(), id, page)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, problemsToResponse(list))
}

// Create handles POST /deliveries/{id}/problems.
func (h *ProblemHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	var req createProblemRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	p, err := h.uc.Create(r.Context(), id, req.Description)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusCreated, problemToResponse(*p))
}
