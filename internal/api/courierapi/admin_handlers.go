package courierapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/BearBump/CourierDesk/internal/models"
)

type updateTrackingRequest struct {
	ShipmentID  uint64  `json:"shipmentId"`
	Status      string  `json:"status"`
	Location    *string `json:"location,omitempty"`
	Description string  `json:"description"`
}

func (h *Handler) updateTracking(w http.ResponseWriter, r *http.Request) {
	admin := userFrom(r.Context())

	var req updateTrackingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ev, err := h.shipments.UpdateTracking(r.Context(), req.ShipmentID, req.Status, req.Location, req.Description, &admin.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Tracking updated successfully",
		"event": eventView{
			ID:          ev.ID,
			Status:      ev.Status,
			Location:    ev.Location,
			Description: ev.Description,
			CreatedAt:   ev.CreatedAt,
		},
	})
}

func (h *Handler) listAllShipments(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	shs, err := h.shipments.ListShipments(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShipmentViews(shs))
}

func (h *Handler) getShipmentAdmin(w http.ResponseWriter, r *http.Request) {
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

type pricingRuleRequest struct {
	Zone       string  `json:"zone"`
	WeightFrom float64 `json:"weightFrom"`
	WeightTo   float64 `json:"weightTo"`
	PricePerKG float64 `json:"pricePerKg"`
}

type pricingRuleView struct {
	ID         uint64  `json:"id"`
	Zone       string  `json:"zone"`
	WeightFrom float64 `json:"weightFrom"`
	WeightTo   float64 `json:"weightTo"`
	PricePerKG float64 `json:"pricePerKg"`
}

func (h *Handler) listPricing(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rates.List(r.Context(), r.URL.Query().Get("zone"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]pricingRuleView, 0, len(rules))
	for _, rule := range rules {
		out = append(out, pricingRuleView{
			ID: rule.ID, Zone: rule.Zone, WeightFrom: rule.WeightFrom, WeightTo: rule.WeightTo, PricePerKG: rule.PricePerKG,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createPricing(w http.ResponseWriter, r *http.Request) {
	var req pricingRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	rule, err := h.rates.Create(r.Context(), models.PricingRule{
		Zone: req.Zone, WeightFrom: req.WeightFrom, WeightTo: req.WeightTo, PricePerKG: req.PricePerKG,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pricingRuleView{
		ID: rule.ID, Zone: rule.Zone, WeightFrom: rule.WeightFrom, WeightTo: rule.WeightTo, PricePerKG: rule.PricePerKG,
	})
}

func (h *Handler) updatePricing(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req pricingRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	err = h.rates.Update(r.Context(), models.PricingRule{
		ID: id, Zone: req.Zone, WeightFrom: req.WeightFrom, WeightTo: req.WeightTo, PricePerKG: req.PricePerKG,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Pricing rule updated"})
}

func (h *Handler) deletePricing(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.rates.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Pricing rule deleted"})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	us, err := h.users.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]userView, 0, len(us))
	for _, u := range us {
		out = append(out, toUserView(u))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateUserRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.SetUserStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User updated"})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (h *Handler) listActivity(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	entries, err := h.users.ListActivity(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	type activityView struct {
		ID          uint64    `json:"id"`
		ActorUserID *uint64   `json:"actorUserId,omitempty"`
		Action      string    `json:"action"`
		EntityType  string    `json:"entityType,omitempty"`
		EntityID    *uint64   `json:"entityId,omitempty"`
		Description string    `json:"description"`
		IP          string    `json:"ip,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
	}
	out := make([]activityView, 0, len(entries))
	for _, e := range entries {
		out = append(out, activityView{
			ID: e.ID, ActorUserID: e.ActorUserID, Action: e.Action, EntityType: e.EntityType,
			EntityID: e.EntityID, Description: e.Description, IP: e.IP, CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func pageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
