package handlers

import (
	"net/http"
	"strconv"

	"fastfeet/internal/logx"
)

// DeliverymanHandler serves /deliverymen management.
type DeliverymanHandler struct {
	uc     deliverymanUsecase
	url    URLFunc
	logger logx.Logger
}

// NewDeliverymanHandler creates a DeliverymanHandler.
func NewDeliverymanHandler(logger logx.Logger, uc deliverymanUsecase, url URLFunc) *DeliverymanHandler {
	return &DeliverymanHandler{uc: uc, url: url, logger: logger}
}

// List handles GET /deliverymen?q=&page=.
func (h *DeliverymanHandler) List(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(h.logger, w, r, http.StatusOK, deliverymenToResponse(list, h.url))
}

// Get handles GET /deliverymen/{id}.
func (h *DeliverymanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	dm, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliverymanToResponse(*dm, h.url))
}

// Create handles POST /deliverymen.
func (h *DeliverymanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeliverymanRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	dm, err := h.uc.Create(r.Context(), req.toModel())
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/deliverymen/"+strconv.FormatInt(dm.ID, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, deliverymanToResponse(*dm, h.url))
}

// Update handles PUT /deliverymen/{id}.
func (h *DeliverymanHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	var req updateDeliverymanRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	dm, err := h.uc.Update(r.Context(), req.toModel(id))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliverymanToResponse(*dm, h.url))
}

// Delete handles DELETE /deliverymen/{id}.
func (h *DeliverymanHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
