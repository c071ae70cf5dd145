package models

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Address      string
	ProfileImage *string
	Role         string
	Status       string
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session maps an opaque bearer token to a user. Tokens are random
// UUIDs, never derived from the user id.
type Session struct {
	Token     string
	UserID    uint64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Notification struct {
	ID        uint64
	UserID    uint64
	Type      string
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}

type ActivityEntry struct {
	ID          uint64
	ActorUserID *uint64
	Action      string
	EntityType  string
	EntityID    *uint64
	Description string
	IP          string
	CreatedAt   time.Time
}
