// Package orchestrator drives tasks through the Sovereign state machine:
// ANALYZING → APPROVAL_REQUIRED → EXECUTING → COMPLETED/FAILED. It is the
// single owner of task, wallet, and profile state for the active user; every
// transition persists to the store before the in-memory view is committed,
// so a failed write never leaves the two diverged.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sovereignhq/sovereign/internal/auth"
	"github.com/sovereignhq/sovereign/internal/executor"
	"github.com/sovereignhq/sovereign/internal/logging"
	"github.com/sovereignhq/sovereign/internal/task"
)

// persistTimeout bounds detached persistence writes.
const persistTimeout = 5 * time.Second

// ErrBusy is returned when a Submit arrives while another one is still
// processing. A single in-flight submission is the concurrency discipline;
// there is no per-task lock.
var ErrBusy = errors.New("another task is being analyzed")

// ErrNoUser is returned for operations without a signed-in user.
var ErrNoUser = errors.New("no signed-in user")

// PlanGenerator produces an execution plan for raw user input.
type PlanGenerator interface {
	CreatePlan(ctx context.Context, rawInput string, profile task.UserProfile) (*task.ExecutionPlan, error)
}

// PlanExecutor resolves an approved plan into a result.
type PlanExecutor interface {
	Execute(ctx context.Context, plan *task.ExecutionPlan) (*task.Result, error)
}

// Store is the persistence collaborator.
type Store interface {
	SaveTask(ctx context.Context, t *task.Task) error
	UpdateTask(ctx context.Context, t *task.Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, userID string) ([]*task.Task, error)
	WalletBalance(ctx context.Context, userID string) (int, error)
	SetWalletBalance(ctx context.Context, userID string, balance int) error
	Profile(ctx context.Context, userID string) (task.UserProfile, error)
	SetProfile(ctx context.Context, userID string, profile task.UserProfile) error
}

// EventType identifies a state transition published to observers.
type EventType string

const (
	EventTaskCreated   EventType = "task_created"
	EventTaskUpdated   EventType = "task_updated"
	EventTaskDeleted   EventType = "task_deleted"
	EventWalletUpdated EventType = "wallet_updated"
)

// Event is delivered to observers after a transition has been persisted and
// committed.
type Event struct {
	Type    EventType  `json:"type"`
	Task    *task.Task `json:"task,omitempty"`
	TaskID  string     `json:"taskId,omitempty"`
	Balance int        `json:"balance,omitempty"`
}

// Observer receives transition events. Callbacks run on the transition's
// goroutine and must not block.
type Observer func(Event)

// Orchestrator is the state machine driving all tasks for the active user.
type Orchestrator struct {
	planner PlanGenerator
	exec    PlanExecutor
	store   Store
	log     zerolog.Logger

	mu         sync.Mutex
	userID     string
	tasks      []*task.Task
	balance    int
	profile    task.UserProfile
	processing bool
	observers  []Observer
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// New creates an orchestrator.
func New(planner PlanGenerator, exec PlanExecutor, store Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		planner: planner,
		exec:    exec,
		store:   store,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Subscribe registers an observer for transition events.
func (o *Orchestrator) Subscribe(fn Observer) {
	o.mu.Lock()
	o.observers = append(o.observers, fn)
	o.mu.Unlock()
}

func (o *Orchestrator) publish(ev Event) {
	o.mu.Lock()
	observers := make([]Observer, len(o.observers))
	copy(observers, o.observers)
	o.mu.Unlock()

	for _, fn := range observers {
		fn(ev)
	}
}

// ───────────────────────────────────────────────────────────────────────────────
// USER STATE
// ───────────────────────────────────────────────────────────────────────────────

// SetUser loads tasks, wallet, and profile for userID and makes it the
// active identity. An empty id clears all state (sign-out).
func (o *Orchestrator) SetUser(ctx context.Context, userID string) error {
	if userID == "" {
		o.mu.Lock()
		o.userID = ""
		o.tasks = nil
		o.balance = 0
		o.profile = task.UserProfile{}
		o.mu.Unlock()
		return nil
	}

	tasks, err := o.store.ListTasks(ctx, userID)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	balance, err := o.store.WalletBalance(ctx, userID)
	if err != nil {
		return fmt.Errorf("load wallet: %w", err)
	}
	profile, err := o.store.Profile(ctx, userID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	o.mu.Lock()
	o.userID = userID
	o.tasks = tasks
	o.balance = balance
	o.profile = profile
	o.mu.Unlock()

	o.log.Info().Str("user", userID).Int("tasks", len(tasks)).Msg("user state loaded")
	return nil
}

// Run consumes auth-state changes until ctx is done, reloading or clearing
// state as identity changes.
func (o *Orchestrator) Run(ctx context.Context, changes <-chan auth.StateChange) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			userID := ""
			if change.User != nil {
				userID = change.User.ID
			}
			if err := o.SetUser(ctx, userID); err != nil {
				o.log.Error().Err(err).Msg("reload on auth change failed")
			}
		}
	}
}

// Tasks returns a snapshot of the active user's tasks, newest first.
func (o *Orchestrator) Tasks() []*task.Task {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*task.Task, len(o.tasks))
	copy(out, o.tasks)
	return out
}

// WalletBalance returns the committed balance.
func (o *Orchestrator) WalletBalance() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.balance
}

// Profile returns the active user's profile.
func (o *Orchestrator) Profile() task.UserProfile {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.profile
}

// SetProfile persists and commits a profile update.
func (o *Orchestrator) SetProfile(ctx context.Context, profile task.UserProfile) error {
	o.mu.Lock()
	userID := o.userID
	o.mu.Unlock()
	if userID == "" {
		return ErrNoUser
	}

	if err := o.store.SetProfile(ctx, userID, profile); err != nil {
		return err
	}
	o.mu.Lock()
	o.profile = profile
	o.mu.Unlock()
	return nil
}

// Credit adds amount to the wallet after a successful funding flow. The
// reference is recorded in the log only; funding has no task linkage.
func (o *Orchestrator) Credit(ctx context.Context, amount int, reference string) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	o.mu.Lock()
	userID := o.userID
	balance := o.balance
	o.mu.Unlock()
	if userID == "" {
		return ErrNoUser
	}

	next := balance + amount
	if err := o.store.SetWalletBalance(ctx, userID, next); err != nil {
		return err
	}
	o.mu.Lock()
	o.balance = next
	o.mu.Unlock()

	o.log.Info().Int("amount", amount).Str("reference", reference).Msg("wallet funded")
	o.publish(Event{Type: EventWalletUpdated, Balance: next})
	return nil
}

// ───────────────────────────────────────────────────────────────────────────────
// TRANSITIONS
// ───────────────────────────────────────────────────────────────────────────────

// Submit creates a task from raw user input and runs the planning phase.
// On planning failure the task transitions to FAILED and the planning error
// is returned alongside the persisted task.
func (o *Orchestrator) Submit(ctx context.Context, rawInput string) (*task.Task, error) {
	o.mu.Lock()
	if o.userID == "" {
		o.mu.Unlock()
		return nil, ErrNoUser
	}
	if o.processing {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.processing = true
	userID := o.userID
	profile := o.profile
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.processing = false
		o.mu.Unlock()
	}()

	t := task.New(userID, rawInput)
	if err := o.store.SaveTask(ctx, t); err != nil {
		return nil, fmt.Errorf("persist task: %w", err)
	}
	o.commitNew(t)
	o.publish(Event{Type: EventTaskCreated, Task: t})

	plan, err := o.planner.CreatePlan(ctx, rawInput, profile)
	if err != nil {
		o.transition(ctx, t, func(t *task.Task) {
			t.Status = task.StatusFailed
		})
		return t, err
	}

	o.transition(ctx, t, func(t *task.Task) {
		t.Plan = plan
		t.Status = task.StatusApprovalRequired
	})
	return t, nil
}

// Approve confirms a plan awaiting approval and runs the execution phase.
// On success any cost incurred is deducted from the wallet, floored at zero.
func (o *Orchestrator) Approve(ctx context.Context, id string) (*task.Task, error) {
	t, err := o.taskByID(id)
	if err != nil {
		return nil, err
	}
	if t.Status != task.StatusApprovalRequired {
		return nil, fmt.Errorf("task %s is %s, not awaiting approval", id, t.Status)
	}
	if t.Plan == nil {
		return nil, fmt.Errorf("task %s has no plan", id)
	}

	o.transition(ctx, t, func(t *task.Task) {
		t.Status = task.StatusExecuting
	})

	result, err := o.exec.Execute(ctx, t.Plan)
	if err != nil {
		o.transition(ctx, t, func(t *task.Task) {
			t.Status = task.StatusFailed
		})
		return t, err
	}

	if result.CostIncurred != "" {
		if err := o.deduct(ctx, executor.ParseCost(result.CostIncurred)); err != nil {
			o.log.Error().Err(err).Msg("wallet deduction failed")
		}
	}

	o.transition(ctx, t, func(t *task.Task) {
		t.Result = result
		t.Status = task.StatusCompleted
	})
	return t, nil
}

// Reject deletes a task awaiting approval. Rejecting an id that no longer
// exists is a no-op.
func (o *Orchestrator) Reject(ctx context.Context, id string) error {
	if _, err := o.taskByID(id); err != nil {
		return nil
	}
	return o.remove(ctx, id)
}

// Retry discards a failed task and resubmits its raw input under a fresh
// identity.
func (o *Orchestrator) Retry(ctx context.Context, id string) (*task.Task, error) {
	t, err := o.taskByID(id)
	if err != nil {
		return nil, err
	}
	if t.Status != task.StatusFailed {
		return nil, fmt.Errorf("task %s is %s, only failed tasks can be retried", id, t.Status)
	}

	if err := o.remove(ctx, id); err != nil {
		return nil, err
	}
	return o.Submit(ctx, t.RawInput)
}

// ───────────────────────────────────────────────────────────────────────────────
// INTERNALS
// ───────────────────────────────────────────────────────────────────────────────

func (o *Orchestrator) taskByID(id string) (*task.Task, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, t := range o.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("task not found: %s", id)
}

// commitNew prepends a task to the in-memory view.
func (o *Orchestrator) commitNew(t *task.Task) {
	o.mu.Lock()
	o.tasks = append([]*task.Task{t}, o.tasks...)
	o.mu.Unlock()
}

// transition applies mutate to a copy, persists it, and commits on success.
// A failed persistence write leaves the in-memory view untouched. The write
// runs under a detached context so a cancelled UI action cannot leave a
// transition half-applied.
func (o *Orchestrator) transition(ctx context.Context, t *task.Task, mutate func(*task.Task)) {
	next := *t
	mutate(&next)

	dctx, cancel := logging.DetachContextWithTimeout(ctx, persistTimeout)
	defer cancel()

	if err := o.store.UpdateTask(dctx, &next); err != nil {
		o.log.Error().Err(err).Str("task", t.ID).Msg("persist transition failed")
		return
	}

	o.mu.Lock()
	*t = next
	o.mu.Unlock()
	o.publish(Event{Type: EventTaskUpdated, Task: t})
}

// remove deletes a task remotely then from the in-memory view.
func (o *Orchestrator) remove(ctx context.Context, id string) error {
	if err := o.store.DeleteTask(ctx, id); err != nil {
		return err
	}

	o.mu.Lock()
	for i, t := range o.tasks {
		if t.ID == id {
			o.tasks = append(o.tasks[:i], o.tasks[i+1:]...)
			break
		}
	}
	o.mu.Unlock()

	o.publish(Event{Type: EventTaskDeleted, TaskID: id})
	return nil
}

// deduct subtracts cost from the wallet, floored at zero so a cost larger
// than the balance can never drive it negative.
func (o *Orchestrator) deduct(ctx context.Context, cost int) error {
	if cost <= 0 {
		return nil
	}
	o.mu.Lock()
	userID := o.userID
	balance := o.balance
	o.mu.Unlock()

	next := balance - cost
	if next < 0 {
		next = 0
	}
	if err := o.store.SetWalletBalance(ctx, userID, next); err != nil {
		return err
	}

	o.mu.Lock()
	o.balance = next
	o.mu.Unlock()

	o.log.Info().Int("cost", cost).Int("balance", next).Msg("wallet debited")
	o.publish(Event{Type: EventWalletUpdated, Balance: next})
	return nil
}
