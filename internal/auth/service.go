package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service provides authentication operations and publishes auth-state
// changes to subscribers.
type Service struct {
	store  *Store
	config *Config

	mu   sync.Mutex
	subs []chan StateChange
}

// NewService creates an auth service.
func NewService(store *Store, config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	return &Service{store: store, config: config}
}

// Register creates a new account. The display name defaults to the mailbox
// part of the email.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  mailboxName(email),
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates and opens a session. The returned token is shown to
// the caller exactly once; only its hash is stored.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if err == ErrUserNotFound {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", ErrUserDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	sess := &Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: hashToken(token),
		ExpiresAt: now.Add(s.config.SessionTTL),
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, "", err
	}

	s.publish(StateChange{Event: EventSignedIn, User: user})
	return user, token, nil
}

// Logout closes the session for token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.store.DeleteSession(ctx, hashToken(token)); err != nil {
		return err
	}
	s.publish(StateChange{Event: EventSignedOut})
	return nil
}

// SessionUser resolves a session token to its user.
func (s *Service) SessionUser(ctx context.Context, token string) (*User, error) {
	sess, err := s.store.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, sess.UserID)
}

// Subscribe returns a channel receiving auth-state changes. The channel is
// buffered; slow consumers drop events rather than block logins.
func (s *Service) Subscribe() <-chan StateChange {
	ch := make(chan StateChange, 8)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Service) publish(change StateChange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

// generateToken produces 32 bytes of entropy, base64url encoded.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashToken derives the storable digest of a raw session token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func mailboxName(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
