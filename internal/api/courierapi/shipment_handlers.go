package courierapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/BearBump/CourierDesk/internal/models"
)

type createShipmentRequest struct {
	SenderName      string  `json:"senderName"`
	SenderEmail     string  `json:"senderEmail"`
	SenderPhone     string  `json:"senderPhone"`
	SenderAddress   string  `json:"senderAddress"`
	ReceiverName    string  `json:"receiverName"`
	ReceiverEmail   string  `json:"receiverEmail"`
	ReceiverPhone   string  `json:"receiverPhone"`
	ReceiverAddress string  `json:"receiverAddress"`
	WeightKG        float64 `json:"weightKg"`
	ImageRef        *string `json:"imageRef,omitempty"`
}

func (h *Handler) createShipment(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	var req createShipmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sh, err := h.shipments.CreateShipment(r.Context(), models.ShipmentCreateInput{
		UserID:          u.ID,
		SenderName:      req.SenderName,
		SenderEmail:     req.SenderEmail,
		SenderPhone:     req.SenderPhone,
		SenderAddress:   req.SenderAddress,
		ReceiverName:    req.ReceiverName,
		ReceiverEmail:   req.ReceiverEmail,
		ReceiverPhone:   req.ReceiverPhone,
		ReceiverAddress: req.ReceiverAddress,
		WeightKG:        req.WeightKG,
		ImageRef:        req.ImageRef,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Shipment created successfully",
		"shipment": map[string]any{
			"id":               sh.ID,
			"trackingNumber":   sh.TrackingNumber,
			"price":            sh.Price,
			"expectedDelivery": sh.ExpectedDelivery,
		},
	})
}

func (h *Handler) listMyShipments(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	shs, err := h.shipments.ListUserShipments(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShipmentViews(shs))
}

func (h *Handler) getMyShipment(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	sh, err := h.shipments.GetShipment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	// Owners only; report unknown rather than forbidden.
	if sh.UserID != u.ID && u.Role != models.RoleAdmin {
		writeError(w, errors.Wrap(models.ErrNotFound, "shipment"))
		return
	}

	history, err := h.shipments.History(r.Context(), sh.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"shipment": toShipmentView(sh),
		"history":  toEventViews(history),
	})
}

func (h *Handler) track(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "trackingNumber")

	t, err := h.shipments.Track(r.Context(), number)
	if err != nil {
		writeError(w, err)
		return
	}

	sh := t.Shipment
	writeJSON(w, http.StatusOK, map[string]any{
		"trackingNumber":   sh.TrackingNumber,
		"status":           sh.Status,
		"senderName":       sh.SenderName,
		"receiverName":     sh.ReceiverName,
		"weightKg":         sh.WeightKG,
		"expectedDelivery": sh.ExpectedDelivery,
		"actualDelivery":   sh.ActualDelivery,
		"createdAt":        sh.CreatedAt,
		"history":          toEventViews(t.History),
	})
}

type quoteRequest struct {
	WeightKG float64 `json:"weightKg"`
	Zone     string  `json:"zone"`
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	q, err := h.shipments.Quote(r.Context(), req.WeightKG, req.Zone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	st, err := h.shipments.UserStats(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
