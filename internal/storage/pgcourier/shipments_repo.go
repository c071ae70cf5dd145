package pgcourier

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/BearBump/CourierDesk/internal/models"
)

const seedEventDescription = "Shipment created"

const shipmentColumns = `
  id, user_id, tracking_number,
  sender_name, sender_email, sender_phone, sender_address,
  receiver_name, receiver_email, receiver_phone, receiver_address,
  weight_kg, price, image_ref,
  status, expected_delivery, actual_delivery,
  created_at, updated_at`

// CreateShipment persists the shipment together with its seed Pending
// event in one transaction; either both land or neither does. A taken
// tracking number comes back as ErrConflict so the caller can redraw.
func (s *Storage) CreateShipment(ctx context.Context, in models.ShipmentCreateInput, trackingNumber string, price float64, expectedDelivery time.Time) (*models.Shipment, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id uint64
	err = tx.QueryRow(ctx, `
INSERT INTO shipments (
  user_id, tracking_number,
  sender_name, sender_email, sender_phone, sender_address,
  receiver_name, receiver_email, receiver_phone, receiver_address,
  weight_kg, price, image_ref,
  status, expected_delivery, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$16)
RETURNING id
`, in.UserID, trackingNumber,
		in.SenderName, in.SenderEmail, in.SenderPhone, in.SenderAddress,
		in.ReceiverName, in.ReceiverEmail, in.ReceiverPhone, in.ReceiverAddress,
		in.WeightKG, price, in.ImageRef,
		models.StatusPending, expectedDelivery.UTC(), now,
	).Scan(&id)
	if err != nil {
		return nil, conflictOr(err, "insert shipment")
	}

	_, err = tx.Exec(ctx, `
INSERT INTO shipment_events (shipment_id, status, description, created_at)
VALUES ($1,$2,$3,$4)
`, id, models.StatusPending, seedEventDescription, now)
	if err != nil {
		return nil, errors.Wrap(err, "insert seed event")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}

	return s.GetShipmentByID(ctx, id)
}

func (s *Storage) GetShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error) {
	row := s.db.QueryRow(ctx, `SELECT`+shipmentColumns+` FROM shipments WHERE id = $1`, id)
	return scanShipment(row)
}

func (s *Storage) GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	row := s.db.QueryRow(ctx, `SELECT`+shipmentColumns+` FROM shipments WHERE tracking_number = $1`, trackingNumber)
	return scanShipment(row)
}

func (s *Storage) ListShipmentsByUser(ctx context.Context, userID uint64) ([]*models.Shipment, error) {
	rows, err := s.db.Query(ctx, `
SELECT`+shipmentColumns+`
FROM shipments
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "select user shipments")
	}
	defer rows.Close()
	return scanShipments(rows)
}

func (s *Storage) ListShipments(ctx context.Context, limit, offset int) ([]*models.Shipment, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.Query(ctx, `
SELECT`+shipmentColumns+`
FROM shipments
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "select shipments")
	}
	defer rows.Close()
	return scanShipments(rows)
}

func (s *Storage) UserShipmentStats(ctx context.Context, userID uint64) (*models.ShipmentStats, error) {
	var st models.ShipmentStats
	err := s.db.QueryRow(ctx, `
SELECT
  COUNT(*),
  COUNT(*) FILTER (WHERE status = $2),
  COUNT(*) FILTER (WHERE status = $3),
  COUNT(*) FILTER (WHERE status = $4),
  COALESCE(SUM(price), 0)
FROM shipments
WHERE user_id = $1
`, userID, models.StatusPending, models.StatusInTransit, models.StatusDelivered).
		Scan(&st.Total, &st.Pending, &st.InTransit, &st.Delivered, &st.TotalSpent)
	if err != nil {
		return nil, errors.Wrap(err, "select shipment stats")
	}
	return &st, nil
}

func scanShipment(row pgx.Row) (*models.Shipment, error) {
	var sh models.Shipment
	err := row.Scan(
		&sh.ID, &sh.UserID, &sh.TrackingNumber,
		&sh.SenderName, &sh.SenderEmail, &sh.SenderPhone, &sh.SenderAddress,
		&sh.ReceiverName, &sh.ReceiverEmail, &sh.ReceiverPhone, &sh.ReceiverAddress,
		&sh.WeightKG, &sh.Price, &sh.ImageRef,
		&sh.Status, &sh.ExpectedDelivery, &sh.ActualDelivery,
		&sh.CreatedAt, &sh.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.Wrap(models.ErrNotFound, "shipment")
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan shipment")
	}
	return &sh, nil
}

func scanShipments(rows pgx.Rows) ([]*models.Shipment, error) {
	var out []*models.Shipment
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
