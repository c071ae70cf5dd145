package models

import "time"

type Shipment struct {
	ID             uint64
	UserID         uint64
	TrackingNumber string

	SenderName      string
	SenderEmail     string
	SenderPhone     string
	SenderAddress   string
	ReceiverName    string
	ReceiverEmail   string
	ReceiverPhone   string
	ReceiverAddress string

	WeightKG float64
	Price    float64
	ImageRef *string

	Status           string
	ExpectedDelivery time.Time
	ActualDelivery   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TrackingEvent is one immutable entry of a shipment's history.
// Events are append-only; the newest event defines the shipment's
// current status.
type TrackingEvent struct {
	ID          uint64
	ShipmentID  uint64
	Status      string
	Location    *string
	Description string
	CreatedAt   time.Time
}

type ShipmentCreateInput struct {
	UserID uint64

	SenderName      string
	SenderEmail     string
	SenderPhone     string
	SenderAddress   string
	ReceiverName    string
	ReceiverEmail   string
	ReceiverPhone   string
	ReceiverAddress string

	WeightKG float64
	ImageRef *string
}

// PricingRule maps a weight bracket within a zone to a per-kg rate.
// The bracket is inclusive on both ends; overlap between rules is
// allowed and resolved by the pricing engine's tie-break.
type PricingRule struct {
	ID         uint64
	Zone       string
	WeightFrom float64
	WeightTo   float64
	PricePerKG float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const ZoneDefault = "default"

// ShipmentStats is the per-user dashboard aggregate.
type ShipmentStats struct {
	Total      int64   `json:"total"`
	Pending    int64   `json:"pending"`
	InTransit  int64   `json:"inTransit"`
	Delivered  int64   `json:"delivered"`
	TotalSpent float64 `json:"totalSpent"`
}
