package handlers

import (
	"net/http"
	"strconv"

	"fastfeet/internal/apperr"
	"fastfeet/internal/logx"
)

// DeliveryHandler serves delivery administration and the deliveryman-facing views.
type DeliveryHandler struct {
	uc     deliveryUsecase
	url    URLFunc
	logger logx.Logger
}

// NewDeliveryHandler creates a DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, uc deliveryUsecase, url URLFunc) *DeliveryHandler {
	return &DeliveryHandler{uc: uc, url: url, logger: logger}
}

// List handles GET /deliveries?q=&page=.
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(h.logger, w, r, http.StatusOK, detailsListToResponse(list, h.url))
}

// Get handles GET /deliveries/{id}.
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	d, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, detailsToResponse(*d, h.url))
}

// Create handles POST /deliveries.
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d, err := h.uc.Create(r.Context(), req.Product, req.RecipientID, req.DeliverymanID)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/deliveries/"+strconv.FormatInt(d.ID, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, detailsToResponse(*d, h.url))
}

// Update handles PUT /deliveries/{id}.
func (h *DeliveryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	var req updateDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d, err := h.uc.Update(r.Context(), req.toModel(id))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, detailsToResponse(*d, h.url))
}

// Cancel handles DELETE /deliveries/{id}.
func (h *DeliveryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	d, err := h.uc.Cancel(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(*d))
}

// CancelByProblem handles DELETE /problems/{id}/cancel-delivery.
func (h *DeliveryHandler) CancelByProblem(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	d, err := h.uc.CancelByProblem(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(*d))
}

// Pending handles GET /deliverymen/{id}/deliveries.
func (h *DeliveryHandler) Pending(w http.ResponseWriter, r *http.Request) {
	h.listForDeliveryman(w, r, false)
}

// Delivered handles GET /deliverymen/{id}/deliveries/delivered.
func (h *DeliveryHandler) Delivered(w http.ResponseWriter, r *http.Request) {
	h.listForDeliveryman(w, r, true)
}

func (h *DeliveryHandler) listForDeliveryman(w http.ResponseWriter, r *http.Request, delivered bool) {
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
	list, err := h.uc.ListForDeliveryman(r.Context(), id, delivered, page)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, detailsListToResponse(list, h.url))
}

// Withdraw handles PUT /deliverymen/{id}/deliveries/{deliveryID}/start.
func (h *DeliveryHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	dmID, deliveryID, err := deliverymanAndDelivery(r)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	var req withdrawRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.StartDate == nil {
		writeAppError(h.logger, w, r, apperr.ErrInvalid)
		return
	}
	d, err := h.uc.Withdraw(r.Context(), dmID, deliveryID, *req.StartDate)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(*d))
}

// Conclude handles PUT /deliverymen/{id}/deliveries/{deliveryID}/end.
func (h *DeliveryHandler) Conclude(w http.ResponseWriter, r *http.Request) {
	dmID, deliveryID, err := deliverymanAndDelivery(r)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	var req concludeRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d, err := h.uc.Conclude(r.Context(), dmID, deliveryID, req.SignatureID)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(*d))
}

func deliverymanAndDelivery(r *http.Request) (int64, int64, error) {
	dmID, err := idFromURL(r, "id")
	if err != nil {
		return 0, 0, err
	}
	deliveryID, err := idFromURL(r, "deliveryID")
	if err != nil {
		return 0, 0, err
	}
	return dmID, deliveryID, nil
}
