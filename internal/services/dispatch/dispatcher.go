package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/BearBump/CourierDesk/internal/broker/messages"
	"github.com/BearBump/CourierDesk/internal/models"
)

type Repository interface {
	CreateNotification(ctx context.Context, n models.Notification) error
	CreateActivityEntry(ctx context.Context, e models.ActivityEntry) error
	GetUserByID(ctx context.Context, id uint64) (*models.User, error)
}

type Mailer interface {
	Send(to, subject, body string) error
}

// Dispatcher turns domain events into notification and activity-log
// rows. Row writes are the primary operation: a failure is returned
// so the consumer redelivers. Email is best-effort on top and never
// blocks redelivery.
type Dispatcher struct {
	repo   Repository
	mailer Mailer

	startedAt      time.Time
	totalHandled   atomic.Int64
	totalErrors    atomic.Int64
	totalMailsSent atomic.Int64
	lastErrorMu    sync.Mutex
	lastError      string
}

func New(repo Repository, mailer Mailer) *Dispatcher {
	return &Dispatcher{repo: repo, mailer: mailer, startedAt: time.Now().UTC()}
}

func (d *Dispatcher) Handle(ctx context.Context, topic string, value []byte) error {
	var err error
	switch topic {
	case messages.TopicShipmentCreated:
		err = d.handleShipmentCreated(ctx, value)
	case messages.TopicShipmentStatusChanged:
		err = d.handleStatusChanged(ctx, value)
	case messages.TopicUserRegistered:
		err = d.handleUserRegistered(ctx, value)
	default:
		slog.Warn("unknown topic, skipping", "topic", topic)
		return nil
	}

	if err != nil {
		d.totalErrors.Add(1)
		d.lastErrorMu.Lock()
		d.lastError = err.Error()
		d.lastErrorMu.Unlock()
		return err
	}
	d.totalHandled.Add(1)
	return nil
}

func (d *Dispatcher) handleShipmentCreated(ctx context.Context, value []byte) error {
	var m messages.ShipmentCreated
	if err := json.Unmarshal(value, &m); err != nil {
		// Malformed payloads are dropped, not redelivered forever.
		slog.Error("malformed shipment.created payload", "error", err.Error())
		return nil
	}

	if err := d.repo.CreateNotification(ctx, models.Notification{
		UserID:  m.UserID,
		Type:    "shipment",
		Title:   "Shipment Created",
		Message: fmt.Sprintf("Your shipment with tracking number %s has been created.", m.TrackingNumber),
	}); err != nil {
		return err
	}

	if err := d.repo.CreateActivityEntry(ctx, models.ActivityEntry{
		ActorUserID: &m.UserID,
		Action:      "create_shipment",
		EntityType:  "shipment",
		EntityID:    &m.ShipmentID,
		Description: fmt.Sprintf("Created shipment with tracking number %s", m.TrackingNumber),
	}); err != nil {
		return err
	}

	d.mailUser(ctx, m.UserID, "Shipment Created",
		fmt.Sprintf("Your shipment %s has been created. You can track it any time with this number.", m.TrackingNumber))
	return nil
}

func (d *Dispatcher) handleStatusChanged(ctx context.Context, value []byte) error {
	var m messages.ShipmentStatusChanged
	if err := json.Unmarshal(value, &m); err != nil {
		slog.Error("malformed shipment.status_changed payload", "error", err.Error())
		return nil
	}

	if err := d.repo.CreateNotification(ctx, models.Notification{
		UserID:  m.UserID,
		Type:    "shipment",
		Title:   "Shipment Status Updated",
		Message: fmt.Sprintf("Your shipment %s status has been updated to %s", m.TrackingNumber, m.Status),
	}); err != nil {
		return err
	}

	if err := d.repo.CreateActivityEntry(ctx, models.ActivityEntry{
		ActorUserID: m.ActorUserID,
		Action:      "update_tracking",
		EntityType:  "shipment",
		EntityID:    &m.ShipmentID,
		Description: fmt.Sprintf("Updated shipment status to %s", m.Status),
	}); err != nil {
		return err
	}

	d.mailUser(ctx, m.UserID, "Shipment Status Updated",
		fmt.Sprintf("Shipment %s is now %s.", m.TrackingNumber, m.Status))
	return nil
}

func (d *Dispatcher) handleUserRegistered(ctx context.Context, value []byte) error {
	var m messages.UserRegistered
	if err := json.Unmarshal(value, &m); err != nil {
		slog.Error("malformed user.registered payload", "error", err.Error())
		return nil
	}

	if err := d.repo.CreateNotification(ctx, models.Notification{
		UserID:  m.UserID,
		Type:    "welcome",
		Title:   "Welcome to CourierDesk",
		Message: "Thank you for registering with us!",
	}); err != nil {
		return err
	}

	if err := d.repo.CreateActivityEntry(ctx, models.ActivityEntry{
		ActorUserID: &m.UserID,
		Action:      "registration",
		EntityType:  "user",
		EntityID:    &m.UserID,
		Description: "New user registration",
	}); err != nil {
		return err
	}

	if d.mailer != nil && m.Email != "" {
		if err := d.mailer.Send(m.Email, "Welcome to CourierDesk", "Thank you for registering with us!"); err != nil {
			slog.Warn("send welcome mail", "error", err.Error())
		} else {
			d.totalMailsSent.Add(1)
		}
	}
	return nil
}

func (d *Dispatcher) mailUser(ctx context.Context, userID uint64, subject, body string) {
	if d.mailer == nil {
		return
	}
	u, err := d.repo.GetUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			slog.Warn("lookup user for mail", "userId", userID, "error", err.Error())
		}
		return
	}
	if err := d.mailer.Send(u.Email, subject, body); err != nil {
		slog.Warn("send mail", "userId", userID, "error", err.Error())
		return
	}
	d.totalMailsSent.Add(1)
}

type Stats struct {
	StartedAt      time.Time `json:"startedAt"`
	TotalHandled   int64     `json:"totalHandled"`
	TotalErrors    int64     `json:"totalErrors"`
	TotalMailsSent int64     `json:"totalMailsSent"`
	LastError      string    `json:"lastError,omitempty"`
}

func (d *Dispatcher) Stats() Stats {
	st := Stats{
		StartedAt:      d.startedAt,
		TotalHandled:   d.totalHandled.Load(),
		TotalErrors:    d.totalErrors.Load(),
		TotalMailsSent: d.totalMailsSent.Load(),
	}
	d.lastErrorMu.Lock()
	st.LastError = d.lastError
	d.lastErrorMu.Unlock()
	return st
}
