package shipments

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/BearBump/CourierDesk/internal/broker/messages"
	"github.com/BearBump/CourierDesk/internal/cache"
	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/BearBump/CourierDesk/internal/pricing"
)

// trackingNumberAttempts bounds the redraw loop when a generated
// number collides with an existing shipment.
const trackingNumberAttempts = 5

type Repository interface {
	CreateShipment(ctx context.Context, in models.ShipmentCreateInput, trackingNumber string, price float64, expectedDelivery time.Time) (*models.Shipment, error)
	GetShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error)
	GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	ListShipmentsByUser(ctx context.Context, userID uint64) ([]*models.Shipment, error)
	ListShipments(ctx context.Context, limit, offset int) ([]*models.Shipment, error)
	ListTrackingEvents(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error)
	AppendTrackingEvent(ctx context.Context, shipmentID uint64, status string, location *string, description string) (*models.TrackingEvent, error)
	ListPricingRules(ctx context.Context, zone string) ([]models.PricingRule, error)
	UserShipmentStats(ctx context.Context, userID uint64) (*models.ShipmentStats, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Rand interface {
	Intn(n int) int
}

// lockedRand serializes draws from one rand.Rand; creation requests
// run on concurrent handler goroutines and rand.Rand alone is not
// safe for that.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// TrackedShipment is the public tracking view: the shipment plus its
// full history, newest event first.
type TrackedShipment struct {
	Shipment *models.Shipment        `json:"shipment"`
	History  []*models.TrackingEvent `json:"history"`
}

type Service struct {
	repo     Repository
	cache    cache.BytesCache
	producer Producer
	rnd      Rand

	trackTTL time.Duration

	// strictTransitions rejects status updates outside the intended
	// lifecycle. Off by default: the operation teams rely on
	// out-of-order corrections.
	strictTransitions bool
}

func New(repo Repository, c cache.BytesCache, producer Producer, trackTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		cache:    c,
		producer: producer,
		rnd:      &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))},
		trackTTL: trackTTL,
	}
}

func (s *Service) WithStrictTransitions(on bool) *Service {
	s.strictTransitions = on
	return s
}

func (s *Service) withRand(r Rand) *Service {
	s.rnd = r
	return s
}

// CreateShipment validates the request, prices it against the current
// default-zone rule snapshot, allocates a unique 6-digit tracking
// number and persists the shipment with its seed Pending event. The
// creation notification is published after commit and never fails the
// call.
func (s *Service) CreateShipment(ctx context.Context, in models.ShipmentCreateInput) (*models.Shipment, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	rules, err := s.repo.ListPricingRules(ctx, models.ZoneDefault)
	if err != nil {
		return nil, err
	}
	price := pricing.Quote(rules, in.WeightKG, models.ZoneDefault)

	now := time.Now().UTC()
	expected := pricing.ExpectedDelivery(now, in.WeightKG)

	var sh *models.Shipment
	for attempt := 0; attempt < trackingNumberAttempts; attempt++ {
		number := s.newTrackingNumber()
		sh, err = s.repo.CreateShipment(ctx, in, number, price, expected)
		if err == nil {
			break
		}
		if errors.Is(err, models.ErrConflict) {
			continue
		}
		return nil, err
	}
	if sh == nil {
		return nil, errors.Wrap(models.ErrConflict, "tracking number space exhausted")
	}

	s.publish(ctx, messages.TopicShipmentCreated, sh.TrackingNumber, messages.ShipmentCreated{
		ShipmentID:     sh.ID,
		UserID:         sh.UserID,
		TrackingNumber: sh.TrackingNumber,
		Price:          sh.Price,
		CreatedAt:      sh.CreatedAt,
	})

	return sh, nil
}

// UpdateTracking appends one status event to the shipment's ledger.
// Delivered restamps actual_delivery each time it is posted.
func (s *Service) UpdateTracking(ctx context.Context, shipmentID uint64, status string, location *string, description string, actorUserID *uint64) (*models.TrackingEvent, error) {
	if !models.ValidStatus(status) {
		return nil, errors.Wrapf(models.ErrValidation, "unknown status %q", status)
	}

	sh, err := s.repo.GetShipmentByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	if s.strictTransitions && !models.CanTransition(sh.Status, status) {
		return nil, errors.Wrapf(models.ErrValidation, "transition %s -> %s not allowed", sh.Status, status)
	}

	ev, err := s.repo.AppendTrackingEvent(ctx, shipmentID, status, location, description)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, trackKey(sh.TrackingNumber))
	}

	msg := messages.ShipmentStatusChanged{
		ShipmentID:     sh.ID,
		UserID:         sh.UserID,
		TrackingNumber: sh.TrackingNumber,
		Status:         status,
		Location:       location,
		Description:    description,
		ActorUserID:    actorUserID,
		OccurredAt:     ev.CreatedAt,
	}
	if status == models.StatusDelivered {
		msg.DeliveredAt = &ev.CreatedAt
	}
	s.publish(ctx, messages.TopicShipmentStatusChanged, sh.TrackingNumber, msg)

	return ev, nil
}

// Track is the public lookup by tracking number. Responses are cached
// briefly; the cache is best-effort and invalidated on every update.
func (s *Service) Track(ctx context.Context, trackingNumber string) (*TrackedShipment, error) {
	if trackingNumber == "" {
		return nil, errors.Wrap(models.ErrValidation, "tracking number is required")
	}

	key := trackKey(trackingNumber)
	if s.cache != nil && s.trackTTL > 0 {
		if b, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var t TrackedShipment
			if json.Unmarshal(b, &t) == nil {
				return &t, nil
			}
		}
	}

	sh, err := s.repo.GetShipmentByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListTrackingEvents(ctx, sh.ID)
	if err != nil {
		return nil, err
	}

	t := &TrackedShipment{Shipment: sh, History: history}
	if s.cache != nil && s.trackTTL > 0 {
		b, _ := json.Marshal(t)
		_ = s.cache.Set(ctx, key, b, s.trackTTL)
	}
	return t, nil
}

// History returns the shipment's events, newest first.
func (s *Service) History(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error) {
	if _, err := s.repo.GetShipmentByID(ctx, shipmentID); err != nil {
		return nil, err
	}
	return s.repo.ListTrackingEvents(ctx, shipmentID)
}

// CurrentStatus derives the status from the newest ledger event.
func (s *Service) CurrentStatus(ctx context.Context, shipmentID uint64) (string, error) {
	sh, err := s.repo.GetShipmentByID(ctx, shipmentID)
	if err != nil {
		return "", err
	}
	events, err := s.repo.ListTrackingEvents(ctx, shipmentID)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return sh.Status, nil
	}
	return events[0].Status, nil
}

func (s *Service) GetShipment(ctx context.Context, id uint64) (*models.Shipment, error) {
	return s.repo.GetShipmentByID(ctx, id)
}

func (s *Service) ListUserShipments(ctx context.Context, userID uint64) ([]*models.Shipment, error) {
	return s.repo.ListShipmentsByUser(ctx, userID)
}

func (s *Service) ListShipments(ctx context.Context, limit, offset int) ([]*models.Shipment, error) {
	return s.repo.ListShipments(ctx, limit, offset)
}

func (s *Service) UserStats(ctx context.Context, userID uint64) (*models.ShipmentStats, error) {
	return s.repo.UserShipmentStats(ctx, userID)
}

// QuoteResult carries the authoritative price for the requested zone
// plus multiplier-based display estimates derived from the
// default-zone price. Only Price may ever be charged.
type QuoteResult struct {
	Zone      string             `json:"zone"`
	WeightKG  float64            `json:"weightKg"`
	Price     float64            `json:"price"`
	Estimates map[string]float64 `json:"estimates"`
}

// Quote prices a weight against the requested zone's rules without
// creating anything. Zones with no matching rule quote zero.
func (s *Service) Quote(ctx context.Context, weightKG float64, zone string) (*QuoteResult, error) {
	if weightKG <= 0 {
		return nil, errors.Wrap(models.ErrValidation, "weight must be positive")
	}
	if zone == "" {
		zone = models.ZoneDefault
	}

	rules, err := s.repo.ListPricingRules(ctx, "")
	if err != nil {
		return nil, err
	}

	defaultPrice := pricing.Quote(rules, weightKG, models.ZoneDefault)
	return &QuoteResult{
		Zone:     zone,
		WeightKG: weightKG,
		Price:    pricing.Quote(rules, weightKG, zone),
		Estimates: map[string]float64{
			models.ZoneDefault: defaultPrice,
			"express":          pricing.EstimateFromDefault(defaultPrice, "express"),
			"international":    pricing.EstimateFromDefault(defaultPrice, "international"),
		},
	}, nil
}

func (s *Service) newTrackingNumber() string {
	return fmt.Sprintf("%06d", 100000+s.rnd.Intn(900000))
}

func (s *Service) publish(ctx context.Context, topic, key string, payload any) {
	if s.producer == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("marshal event", "topic", topic, "error", err.Error())
		return
	}
	if err := s.producer.Publish(ctx, topic, []byte(key), b); err != nil {
		slog.Warn("publish event", "topic", topic, "error", err.Error())
	}
}

func trackKey(trackingNumber string) string {
	return fmt.Sprintf("track:%s", trackingNumber)
}
