package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sovereignhq/sovereign/internal/data"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	store, err := data.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	// Low bcrypt cost keeps the test fast.
	return NewService(NewStore(store.DB()), &Config{BcryptCost: 4, SessionTTL: time.Hour})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	t.Run("register, login, resolve session", func(t *testing.T) {
		user, err := svc.Register(ctx, "ada@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, "ada", user.DisplayName)

		loggedIn, token, err := svc.Login(ctx, "ada@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, user.ID, loggedIn.ID)
		require.NotEmpty(t, token)

		resolved, err := svc.SessionUser(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resolved.ID)
	})

	t.Run("weak password rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, "bob@example.com", "short")
		require.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, "ada@example.com", "another pass")
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("wrong password is invalid credentials", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ada@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user is invalid credentials, not not-found", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ghost@example.com", "whatever")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("logout invalidates the session", func(t *testing.T) {
		_, token, err := svc.Login(ctx, "ada@example.com", "correct horse")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, token))
		_, err = svc.SessionUser(ctx, token)
		require.ErrorIs(t, err, ErrSessionExpired)
	})
}

func TestStateChangeNotifications(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	events := svc.Subscribe()

	_, token, err := svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	select {
	case change := <-events:
		assert.Equal(t, EventSignedIn, change.Event)
		require.NotNil(t, change.User)
		assert.Equal(t, "ada@example.com", change.User.Email)
	default:
		t.Fatal("expected a signed-in event")
	}

	require.NoError(t, svc.Logout(ctx, token))

	select {
	case change := <-events:
		assert.Equal(t, EventSignedOut, change.Event)
		assert.Nil(t, change.User)
	default:
		t.Fatal("expected a signed-out event")
	}
}
