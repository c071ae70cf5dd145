package courierapi

import (
	"time"

	"github.com/BearBump/CourierDesk/internal/models"
)

type userView struct {
	ID           uint64     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Address      string     `json:"address"`
	ProfileImage *string    `json:"profileImage,omitempty"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func toUserView(u *models.User) userView {
	return userView{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Phone:        u.Phone,
		Address:      u.Address,
		ProfileImage: u.ProfileImage,
		Role:         u.Role,
		Status:       u.Status,
		LastLogin:    u.LastLogin,
		CreatedAt:    u.CreatedAt,
	}
}

type shipmentView struct {
	ID             uint64 `json:"id"`
	TrackingNumber string `json:"trackingNumber"`

	SenderName      string `json:"senderName"`
	SenderEmail     string `json:"senderEmail"`
	SenderPhone     string `json:"senderPhone"`
	SenderAddress   string `json:"senderAddress"`
	ReceiverName    string `json:"receiverName"`
	ReceiverEmail   string `json:"receiverEmail"`
	ReceiverPhone   string `json:"receiverPhone"`
	ReceiverAddress string `json:"receiverAddress"`

	WeightKG float64 `json:"weightKg"`
	Price    float64 `json:"price"`
	ImageRef *string `json:"imageRef,omitempty"`

	Status           string     `json:"status"`
	ExpectedDelivery time.Time  `json:"expectedDelivery"`
	ActualDelivery   *time.Time `json:"actualDelivery,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func toShipmentView(sh *models.Shipment) shipmentView {
	return shipmentView{
		ID:              sh.ID,
		TrackingNumber:  sh.TrackingNumber,
		SenderName:      sh.SenderName,
		SenderEmail:     sh.SenderEmail,
		SenderPhone:     sh.SenderPhone,
		SenderAddress:   sh.SenderAddress,
		ReceiverName:    sh.ReceiverName,
		ReceiverEmail:   sh.ReceiverEmail,
		ReceiverPhone:   sh.ReceiverPhone,
		ReceiverAddress: sh.ReceiverAddress,
		WeightKG:        sh.WeightKG,
		Price:           sh.Price,
		ImageRef:        sh.ImageRef,

		Status:           sh.Status,
		ExpectedDelivery: sh.ExpectedDelivery,
		ActualDelivery:   sh.ActualDelivery,
		CreatedAt:        sh.CreatedAt,
	}
}

func toShipmentViews(shs []*models.Shipment) []shipmentView {
	out := make([]shipmentView, 0, len(shs))
	for _, sh := range shs {
		out = append(out, toShipmentView(sh))
	}
	return out
}

type eventView struct {
	ID          uint64    `json:"id"`
	Status      string    `json:"status"`
	Location    *string   `json:"location,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toEventViews(events []*models.TrackingEvent) []eventView {
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		out = append(out, eventView{
			ID:          e.ID,
			Status:      e.Status,
			Location:    e.Location,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}
