package users

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/BearBump/CourierDesk/internal/broker/messages"
	"github.com/BearBump/CourierDesk/internal/models"
)

const (
	bcryptCost = 10

	loginAttemptLimit  = 10
	loginAttemptWindow = 15 * time.Minute
)

type Repository interface {
	CreateUser(ctx context.Context, u models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint64) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uint64) error
	CreateSession(ctx context.Context, sess models.Session) error
	GetSessionUser(ctx context.Context, token string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	SetUserStatus(ctx context.Context, id uint64, status string) error
	DeleteUser(ctx context.Context, id uint64) error
	ListNotificationsByUser(ctx context.Context, userID uint64, limit int) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID uint64) error
	ListActivity(ctx context.Context, limit, offset int) ([]*models.ActivityEntry, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Service issues opaque session tokens instead of the raw user id the
// legacy system handed out as a bearer token.
type Service struct {
	repo       Repository
	limiter    RateLimiter
	producer   Producer
	sessionTTL time.Duration
}

func New(repo Repository, limiter RateLimiter, producer Producer, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 30 * 24 * time.Hour
	}
	return &Service{repo: repo, limiter: limiter, producer: producer, sessionTTL: sessionTTL}
}

type RegisterInput struct {
	Email        string
	Password     string
	Name         string
	Phone        string
	Address      string
	ProfileImage *string
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if !emailRe.MatchString(in.Email) {
		return nil, errors.Wrap(models.ErrValidation, "email is invalid")
	}
	if len(in.Password) < 8 {
		return nil, errors.Wrap(models.ErrValidation, "password must be at least 8 characters")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.Wrap(models.ErrValidation, "name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, errors.Wrap(models.ErrValidation, "phone is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u, err := s.repo.CreateUser(ctx, models.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Phone:        in.Phone,
		Address:      in.Address,
		ProfileImage: in.ProfileImage,
		Role:         models.RoleCustomer,
		Status:       models.UserStatusActive,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, errors.Wrap(models.ErrConflict, "email already registered")
		}
		return nil, err
	}

	s.publish(ctx, messages.TopicUserRegistered, u.Email, messages.UserRegistered{
		UserID:       u.ID,
		Email:        u.Email,
		Name:         u.Name,
		RegisteredAt: u.CreatedAt,
	})

	return u, nil
}

// Login verifies credentials and mints an opaque session token.
// Attempts are throttled per email through a redis fixed window, when
// a limiter is wired.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, errors.Wrap(models.ErrValidation, "email and password are required")
	}

	if s.limiter != nil {
		ok, _, err := s.limiter.Allow(ctx, "login:"+email, loginAttemptLimit, loginAttemptWindow)
		if err != nil {
			slog.Warn("login ratelimit", "error", err.Error())
		} else if !ok {
			return nil, nil, errors.Wrap(models.ErrRateLimited, "too many login attempts")
		}
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, errors.Wrap(models.ErrUnauthorized, "invalid credentials")
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, errors.Wrap(models.ErrUnauthorized, "invalid credentials")
	}
	if u.Status != models.UserStatusActive {
		return nil, nil, errors.Wrap(models.ErrUnauthorized, "account is disabled")
	}

	now := time.Now().UTC()
	sess := models.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, nil, err
	}

	if err := s.repo.TouchLastLogin(ctx, u.ID); err != nil {
		slog.Warn("touch last login", "userId", u.ID, "error", err.Error())
	}

	return &sess, u, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, errors.Wrap(models.ErrUnauthorized, "malformed token")
	}
	u, err := s.repo.GetSessionUser(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, errors.Wrap(models.ErrUnauthorized, "session expired or unknown")
		}
		return nil, err
	}
	if u.Status != models.UserStatusActive {
		return nil, errors.Wrap(models.ErrUnauthorized, "account is disabled")
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.repo.ListUsers(ctx, limit, offset)
}

func (s *Service) SetUserStatus(ctx context.Context, id uint64, status string) error {
	if status != models.UserStatusActive && status != models.UserStatusInactive {
		return errors.Wrapf(models.ErrValidation, "unknown user status %q", status)
	}
	return s.repo.SetUserStatus(ctx, id, status)
}

func (s *Service) DeleteUser(ctx context.Context, id uint64) error {
	return s.repo.DeleteUser(ctx, id)
}

func (s *Service) ListNotifications(ctx context.Context, userID uint64, limit int) ([]*models.Notification, error) {
	return s.repo.ListNotificationsByUser(ctx, userID, limit)
}

func (s *Service) MarkNotificationRead(ctx context.Context, id, userID uint64) error {
	if id == 0 {
		return errors.Wrap(models.ErrValidation, "notification id is required")
	}
	return s.repo.MarkNotificationRead(ctx, id, userID)
}

func (s *Service) ListActivity(ctx context.Context, limit, offset int) ([]*models.ActivityEntry, error) {
	return s.repo.ListActivity(ctx, limit, offset)
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
