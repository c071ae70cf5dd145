package messages

import "time"

// Topic names for the domain events the API publishes and the
// notifier consumes.
const (
	TopicShipmentCreated       = "shipment.created"
	TopicShipmentStatusChanged = "shipment.status_changed"
	TopicUserRegistered        = "user.registered"
)

type ShipmentCreated struct {
	ShipmentID     uint64    `json:"shipment_id"`
	UserID         uint64    `json:"user_id"`
	TrackingNumber string    `json:"tracking_number"`
	Price          float64   `json:"price"`
	CreatedAt      time.Time `json:"created_at"`
}

type ShipmentStatusChanged struct {
	ShipmentID     uint64     `json:"shipment_id"`
	UserID         uint64     `json:"user_id"`
	TrackingNumber string     `json:"tracking_number"`
	Status         string     `json:"status"`
	Location       *string    `json:"location,omitempty"`
	Description    string     `json:"description,omitempty"`
	ActorUserID    *uint64    `json:"actor_user_id,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}

type UserRegistered struct {
	UserID       uint64    `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registered_at"`
}
