// Package payment provides the wallet funding collaborator. The production
// deployment fronts a hosted checkout; this package captures its contract
// (open a checkout, come back with a reference or a cancellation) behind a
// small interface so the UI and the simulated flow stay interchangeable.
package payment

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Popup is the checkout contract. Open begins a funding attempt for the given
// email and amount; exactly one of onSuccess or onClose fires. onSuccess
// receives the processor's transaction reference.
type Popup interface {
	Open(email string, amount int, onSuccess func(ref string), onClose func())
}

// SimulatedPopup resolves every checkout instantly, succeeding for positive
// amounts and cancelling otherwise. References follow the processor format
// PSK-<nanos>.
type SimulatedPopup struct {
	log zerolog.Logger
	now func() time.Time
}

// Option configures the SimulatedPopup.
type Option func(*SimulatedPopup)

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *SimulatedPopup) { p.log = log }
}

// withClock overrides the reference clock in tests.
func withClock(now func() time.Time) Option {
	return func(p *SimulatedPopup) { p.now = now }
}

// NewSimulatedPopup creates the simulated checkout flow.
func NewSimulatedPopup(opts ...Option) *SimulatedPopup {
	p := &SimulatedPopup{
		log: zerolog.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open resolves the checkout. A non-positive amount cancels; anything else
// succeeds with a fresh reference.
func (p *SimulatedPopup) Open(email string, amount int, onSuccess func(ref string), onClose func()) {
	if amount <= 0 {
		p.log.Debug().Str("email", email).Int("amount", amount).Msg("checkout cancelled")
		if onClose != nil {
			onClose()
		}
		return
	}

	ref := fmt.Sprintf("PSK-%d", p.now().UnixNano())
	p.log.Info().Str("email", email).Int("amount", amount).Str("reference", ref).Msg("checkout succeeded")
	if onSuccess != nil {
		onSuccess(ref)
	}
}
