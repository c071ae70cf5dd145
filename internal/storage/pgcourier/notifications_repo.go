package pgcourier

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/BearBump/CourierDesk/internal/models"
)

func (s *Storage) CreateNotification(ctx context.Context, n models.Notification) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO notifications (user_id, type, title, message, created_at)
VALUES ($1,$2,$3,$4,$5)
`, n.UserID, n.Type, n.Title, n.Message, time.Now().UTC())
	return errors.Wrap(err, "insert notification")
}

func (s *Storage) ListNotificationsByUser(ctx context.Context, userID uint64, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
SELECT id, user_id, type, title, message, read, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select notifications")
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan notification")
		}
		out = append(out, &n)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

// MarkNotificationRead flips one notification owned by userID.
// Scoping by owner keeps one user from touching another's rows.
func (s *Storage) MarkNotificationRead(ctx context.Context, id, userID uint64) error {
	tag, err := s.db.Exec(ctx, `
UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2
`, id, userID)
	if err != nil {
		return errors.Wrap(err, "mark notification read")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(models.ErrNotFound, "notification")
	}
	return nil
}

func (s *Storage) CreateActivityEntry(ctx context.Context, e models.ActivityEntry) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO activity_log (actor_user_id, action, entity_type, entity_id, description, ip, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, e.ActorUserID, e.Action, e.EntityType, e.EntityID, e.Description, e.IP, time.Now().UTC())
	return errors.Wrap(err, "insert activity entry")
}

func (s *Storage) ListActivity(ctx context.Context, limit, offset int) ([]*models.ActivityEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.Query(ctx, `
SELECT id, actor_user_id, action, entity_type, entity_id, description, ip, created_at
FROM activity_log
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "select activity")
	}
	defer rows.Close()

	var out []*models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		if err := rows.Scan(&e.ID, &e.ActorUserID, &e.Action, &e.EntityType, &e.EntityID, &e.Description, &e.IP, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan activity entry")
		}
		out = append(out, &e)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
