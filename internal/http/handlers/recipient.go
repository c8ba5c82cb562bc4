package handlers

import (
	"net/http"
	"strconv"

	"fastfeet/internal/logx"
)

// RecipientHandler serves /recipients.
type RecipientHandler struct {
	uc     recipientUsecase
	logger logx.Logger
}

// NewRecipientHandler creates a RecipientHandler.
func NewRecipientHandler(logger logx.Logger, uc recipientUsecase) *RecipientHandler {
	return &RecipientHandler{uc: uc, logger: logger}
}

// List handles GET /recipients?q=&page=.
func (h *RecipientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	list, err := h.uc.List(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, recipientsToResponse(list))
}

// Get handles GET /recipients/{id}.
func (h *RecipientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	rec, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, recipientToResponse(*rec))
}

// Create handles POST /recipients.
func (h *RecipientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRecipientRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	rec, err := h.uc.Create(r.Context(), req.toModel())
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/recipients/"+strconv.FormatInt(rec.ID, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, recipientToResponse(*rec))
}

// Update handles PUT /recipients/{id} with a partial body.
func (h *RecipientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	var req updateRecipientRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	rec, err := h.uc.Update(r.Context(), req.toModel(id))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, recipientToResponse(*rec))
}

// Delete handles DELETE /recipients/{id}.
func (h *RecipientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	if err := h.uc.Delete(r.Context(), id); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
