package ui

import (
	"github.com/sovereignhq/sovereign/internal/auth"
	"github.com/sovereignhq/sovereign/internal/task"
)

// Messages produced by backend commands. Every asynchronous operation
// resolves to exactly one of these.

// authDoneMsg carries the outcome of a login or registration attempt.
type authDoneMsg struct {
	user *auth.User
	err  error
}

// loggedOutMsg signals that the session ended.
type loggedOutMsg struct {
	err error
}

// taskPlannedMsg carries the outcome of a Submit: the task is either
// awaiting approval or failed.
type taskPlannedMsg struct {
	task *task.Task
	err  error
}

// taskExecutedMsg carries the outcome of an Approve.
type taskExecutedMsg struct {
	task *task.Task
	err  error
}

// taskRejectedMsg signals a completed rejection.
type taskRejectedMsg struct {
	id  string
	err error
}

// walletFundedMsg carries the outcome of a funding flow.
type walletFundedMsg struct {
	amount int
	funded bool
	err    error
}

// profileSavedMsg signals a persisted profile update.
type profileSavedMsg struct {
	err error
}
