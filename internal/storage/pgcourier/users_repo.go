package pgcourier

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/BearBump/CourierDesk/internal/models"
)

const userColumns = `
  id, email, password_hash, name, phone, address, profile_image,
  role, status, last_login, created_at, updated_at`

func (s *Storage) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	now := time.Now().UTC()
	err := s.db.QueryRow(ctx, `
INSERT INTO users (email, password_hash, name, phone, address, profile_image, role, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
RETURNING id
`, u.Email, u.PasswordHash, u.Name, u.Phone, u.Address, u.ProfileImage, u.Role, u.Status, now).Scan(&u.ID)
	if err != nil {
		return nil, conflictOr(err, "insert user")
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return &u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *Storage) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	row := s.db.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *Storage) TouchLastLogin(ctx context.Context, id uint64) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`, id)
	return errors.Wrap(err, "touch last login")
}

func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.Query(ctx, `
SELECT`+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "select users")
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) SetUserStatus(ctx context.Context, id uint64, status string) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return errors.Wrap(err, "update user status")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(models.ErrNotFound, "user")
	}
	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, id uint64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(models.ErrNotFound, "user")
	}
	return nil
}

func (s *Storage) CreateSession(ctx context.Context, sess models.Session) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO sessions (token, user_id, created_at, expires_at)
VALUES ($1,$2,$3,$4)
`, sess.Token, sess.UserID, sess.CreatedAt.UTC(), sess.ExpiresAt.UTC())
	return errors.Wrap(err, "insert session")
}

// GetSessionUser resolves a bearer token to its user, rejecting
// expired sessions. Expired rows are swept opportunistically.
func (s *Storage) GetSessionUser(ctx context.Context, token string) (*models.User, error) {
	row := s.db.QueryRow(ctx, `
SELECT`+userColumns+`
FROM users u
JOIN sessions s ON s.user_id = u.id
WHERE s.token = $1 AND s.expires_at > now()
`, token)
	u, err := scanUser(row)
	if errors.Is(err, models.ErrNotFound) {
		return nil, errors.Wrap(models.ErrNotFound, "session")
	}
	return u, err
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	return errors.Wrap(err, "delete expired sessions")
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &u.Address, &u.ProfileImage,
		&u.Role, &u.Status, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.Wrap(models.ErrNotFound, "user")
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan user")
	}
	return &u, nil
}
