package pgcourier

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/BearBump/CourierDesk/internal/models"
)

// AppendTrackingEvent records a status event and rolls the shipment's
// denormalized status forward in one transaction. The event timestamp
// is clamped to be >= the newest prior event, so history order never
// inverts even if the db clock steps back. A Delivered status stamps
// actual_delivery with the same clamped timestamp, each time it is
// posted.
func (s *Storage) AppendTrackingEvent(ctx context.Context, shipmentID uint64, status string, location *string, description string) (*models.TrackingEvent, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var eventAt time.Time
	err = tx.QueryRow(ctx, `
SELECT GREATEST(now(), COALESCE((SELECT MAX(created_at) FROM shipment_events WHERE shipment_id = $1), now()))
`, shipmentID).Scan(&eventAt)
	if err != nil {
		return nil, errors.Wrap(err, "clamp event time")
	}

	tag, err := tx.Exec(ctx, `
UPDATE shipments
SET
  status = $2,
  actual_delivery = CASE WHEN $2 = $3 THEN $4 ELSE actual_delivery END,
  updated_at = now()
WHERE id = $1
`, shipmentID, status, models.StatusDelivered, eventAt)
	if err != nil {
		return nil, errors.Wrap(err, "update shipment status")
	}
	if tag.RowsAffected() == 0 {
		return nil, errors.Wrap(models.ErrNotFound, "shipment")
	}

	loc := ""
	if location != nil {
		loc = *location
	}

	var ev models.TrackingEvent
	err = tx.QueryRow(ctx, `
INSERT INTO shipment_events (shipment_id, status, location, description, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at
`, shipmentID, status, loc, description, eventAt).Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "insert tracking event")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}

	ev.ShipmentID = shipmentID
	ev.Status = status
	ev.Location = location
	ev.Description = description
	return &ev, nil
}

// ListTrackingEvents returns a shipment's history, newest first.
func (s *Storage) ListTrackingEvents(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, shipment_id, status, location, description, created_at
FROM shipment_events
WHERE shipment_id = $1
ORDER BY created_at DESC, id DESC
`, shipmentID)
	if err != nil {
		return nil, errors.Wrap(err, "select events")
	}
	defer rows.Close()

	var out []*models.TrackingEvent
	for rows.Next() {
		var e models.TrackingEvent
		var location string
		if err := rows.Scan(&e.ID, &e.ShipmentID, &e.Status, &location, &e.Description, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		if location != "" {
			e.Location = &location
		}
		out = append(out, &e)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
