// Package auth provides user authentication and session management for
// Sovereign, plus the auth-state notification channel the orchestrator
// subscribes to so it can reload per-user state when identity changes.
package auth

import (
	"errors"
	"time"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName,omitempty"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session is an active login. The raw token is returned once at login; only
// its hash is stored.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event identifies an auth-state transition.
type Event string

const (
	EventSignedIn  Event = "signed_in"
	EventSignedOut Event = "signed_out"
)

// StateChange is delivered to subscribers on sign-in and sign-out.
type StateChange struct {
	Event Event
	User  *User // nil on sign-out
}

// Sentinel errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDisabled       = errors.New("user account is disabled")
	ErrSessionExpired     = errors.New("session expired or not found")
)

// Config tunes the auth service.
type Config struct {
	BcryptCost int
	SessionTTL time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BcryptCost: 12,
		SessionTTL: 30 * 24 * time.Hour,
	}
}
