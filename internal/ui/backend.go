package ui

import (
	"context"

	"github.com/sovereignhq/sovereign/internal/auth"
	"github.com/sovereignhq/sovereign/internal/orchestrator"
	"github.com/sovereignhq/sovereign/internal/payment"
	"github.com/sovereignhq/sovereign/internal/task"
)

// Backend is the TUI's view of the application. It exists so the model can
// be driven by a fake in tests.
type Backend interface {
	// Auth
	Register(ctx context.Context, email, password string) (*auth.User, error)
	Login(ctx context.Context, email, password string) (*auth.User, error)
	Logout(ctx context.Context) error

	// Task lifecycle
	Submit(ctx context.Context, rawInput string) (*task.Task, error)
	Approve(ctx context.Context, id string) (*task.Task, error)
	Reject(ctx context.Context, id string) error
	Retry(ctx context.Context, id string) (*task.Task, error)

	// State snapshots
	Tasks() []*task.Task
	WalletBalance() int
	Profile() task.UserProfile
	SetProfile(ctx context.Context, p task.UserProfile) error

	// Wallet funding
	FundWallet(ctx context.Context, email string, amount int) (funded bool, err error)
}

// AppBackend wires the auth service, the orchestrator, and the payment popup
// into the Backend contract.
type AppBackend struct {
	auth  *auth.Service
	orch  *orchestrator.Orchestrator
	popup payment.Popup

	token string
}

// NewAppBackend creates the production backend.
func NewAppBackend(authSvc *auth.Service, orch *orchestrator.Orchestrator, popup payment.Popup) *AppBackend {
	return &AppBackend{auth: authSvc, orch: orch, popup: popup}
}

func (b *AppBackend) Register(ctx context.Context, email, password string) (*auth.User, error) {
	if _, err := b.auth.Register(ctx, email, password); err != nil {
		return nil, err
	}
	return b.Login(ctx, email, password)
}

func (b *AppBackend) Login(ctx context.Context, email, password string) (*auth.User, error) {
	user, token, err := b.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	b.token = token
	if err := b.orch.SetUser(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (b *AppBackend) Logout(ctx context.Context) error {
	if b.token != "" {
		if err := b.auth.Logout(ctx, b.token); err != nil {
			return err
		}
		b.token = ""
	}
	return b.orch.SetUser(ctx, "")
}

func (b *AppBackend) Submit(ctx context.Context, rawInput string) (*task.Task, error) {
	return b.orch.Submit(ctx, rawInput)
}

func (b *AppBackend) Approve(ctx context.Context, id string) (*task.Task, error) {
	return b.orch.Approve(ctx, id)
}

func (b *AppBackend) Reject(ctx context.Context, id string) error {
	return b.orch.Reject(ctx, id)
}

func (b *AppBackend) Retry(ctx context.Context, id string) (*task.Task, error) {
	return b.orch.Retry(ctx, id)
}

func (b *AppBackend) Tasks() []*task.Task      { return b.orch.Tasks() }
func (b *AppBackend) WalletBalance() int       { return b.orch.WalletBalance() }
func (b *AppBackend) Profile() task.UserProfile { return b.orch.Profile() }

func (b *AppBackend) SetProfile(ctx context.Context, p task.UserProfile) error {
	return b.orch.SetProfile(ctx, p)
}

// FundWallet opens the checkout popup and credits the wallet when it
// succeeds. Returns false when the user cancelled.
func (b *AppBackend) FundWallet(ctx context.Context, email string, amount int) (bool, error) {
	var (
		funded  bool
		credErr error
	)
	b.popup.Open(email, amount,
		func(ref string) {
			credErr = b.orch.Credit(ctx, amount, ref)
			funded = credErr == nil
		},
		func() {},
	)
	return funded, credErr
}
