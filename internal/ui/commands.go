package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sovereignhq/sovereign/internal/task"
)

// Commands bridge the backend into the Elm loop. Each returns a tea.Cmd
// that performs one blocking call and resolves to a message.

func loginCmd(b Backend, email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := b.Login(context.Background(), email, password)
		return authDoneMsg{user: user, err: err}
	}
}

func registerCmd(b Backend, email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := b.Register(context.Background(), email, password)
		return authDoneMsg{user: user, err: err}
	}
}

func logoutCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{err: b.Logout(context.Background())}
	}
}

func submitCmd(b Backend, rawInput string) tea.Cmd {
	return func() tea.Msg {
		t, err := b.Submit(context.Background(), rawInput)
		return taskPlannedMsg{task: t, err: err}
	}
}

func approveCmd(b Backend, id string) tea.Cmd {
	return func() tea.Msg {
		t, err := b.Approve(context.Background(), id)
		return taskExecutedMsg{task: t, err: err}
	}
}

func rejectCmd(b Backend, id string) tea.Cmd {
	return func() tea.Msg {
		return taskRejectedMsg{id: id, err: b.Reject(context.Background(), id)}
	}
}

func retryCmd(b Backend, id string) tea.Cmd {
	return func() tea.Msg {
		t, err := b.Retry(context.Background(), id)
		return taskPlannedMsg{task: t, err: err}
	}
}

func fundCmd(b Backend, email string, amount int) tea.Cmd {
	return func() tea.Msg {
		funded, err := b.FundWallet(context.Background(), email, amount)
		return walletFundedMsg{amount: amount, funded: funded, err: err}
	}
}

func saveProfileCmd(b Backend, p task.UserProfile) tea.Cmd {
	return func() tea.Msg {
		return profileSavedMsg{err: b.SetProfile(context.Background(), p)}
	}
}
