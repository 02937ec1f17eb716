package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sovereignhq/sovereign/internal/orchestrator"
	"github.com/sovereignhq/sovereign/internal/task"
)

// update is the single message router for the TUI.
func update(m Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.table = m.table.WithTargetWidth(msg.Width - 2)
		m.input.SetWidth(msg.Width - 4)
		m.statusbar.SetSize(msg.Width)
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.screen == screenAuth {
			return updateAuth(m, msg)
		}
		if m.modal != modalNone {
			return updateModal(m, msg)
		}
		return updateMain(m, msg)

	case authDoneMsg:
		return onAuthDone(m, msg)

	case loggedOutMsg:
		m.user = nil
		m.screen = screenAuth
		m.authErr = ""
		m.authInputs[authFieldEmail].SetValue("")
		m.authInputs[authFieldPassword].SetValue("")
		m.authFocus = authFieldEmail
		m.authInputs[authFieldEmail].Focus()
		m.authInputs[authFieldPassword].Blur()
		return m, textinput.Blink

	case taskPlannedMsg:
		m.busy = false
		m.refreshTable()
		if msg.err != nil {
			m.errText = orchestrator.UserMessage(msg.err)
			return m, nil
		}
		m.errText = ""
		if msg.task != nil && msg.task.Status == task.StatusApprovalRequired {
			m.approvalTask = msg.task
			m.modal = modalApproval
		}
		return m, nil

	case taskExecutedMsg:
		m.busy = false
		m.refreshTable()
		if msg.err != nil {
			m.errText = orchestrator.UserMessage(msg.err)
			return m, nil
		}
		m.errText = ""
		if msg.task != nil && msg.task.Result != nil {
			m.statusText = truncate(msg.task.Result.Summary, 80)
		}
		return m, nil

	case taskRejectedMsg:
		m.refreshTable()
		if msg.err != nil {
			m.errText = msg.err.Error()
		} else {
			m.statusText = "Plan rejected"
		}
		return m, nil

	case walletFundedMsg:
		switch {
		case msg.err != nil:
			m.errText = msg.err.Error()
		case msg.funded:
			m.statusText = "Wallet funded with " + FormatNaira(msg.amount)
		default:
			m.statusText = "Funding cancelled"
		}
		return m, nil

	case profileSavedMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
		} else {
			m.statusText = "Profile saved"
		}
		return m, nil
	}

	return m, nil
}

// ───────────────────────────────────────────────────────────────────────────────
// AUTH SCREEN
// ───────────────────────────────────────────────────────────────────────────────

func updateAuth(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.authInputs[m.authFocus].Blur()
		m.authFocus = (m.authFocus + 1) % len(m.authInputs)
		m.authInputs[m.authFocus].Focus()
		return m, textinput.Blink

	case "ctrl+r":
		m.registerMode = !m.registerMode
		m.authErr = ""
		return m, nil

	case "enter":
		email := strings.TrimSpace(m.authInputs[authFieldEmail].Value())
		password := m.authInputs[authFieldPassword].Value()
		if email == "" || password == "" {
			m.authErr = "Email and password are required"
			return m, nil
		}
		m.authErr = ""
		m.busy = true
		if m.registerMode {
			return m, registerCmd(m.backend, email, password)
		}
		return m, loginCmd(m.backend, email, password)
	}

	var cmd tea.Cmd
	m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	return m, cmd
}

func onAuthDone(m Model, msg authDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.authErr = msg.err.Error()
		return m, nil
	}
	m.user = msg.user
	m.screen = screenMain
	m.focus = focusInput
	m.input.Focus()
	m.refreshTable()
	m.statusText = "Signed in as " + msg.user.Email
	return m, nil
}

// ───────────────────────────────────────────────────────────────────────────────
// MAIN SCREEN
// ───────────────────────────────────────────────────────────────────────────────

func updateMain(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.modal = modalHelp
		return m, nil

	case key.Matches(msg, m.keys.Profile):
		p := m.backend.Profile()
		m.profileInputs[profileFieldName].SetValue(p.Name)
		m.profileInputs[profileFieldContext].SetValue(p.Context)
		m.profileFocus = profileFieldName
		m.profileInputs[profileFieldName].Focus()
		m.profileInputs[profileFieldContext].Blur()
		m.modal = modalProfile
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Fund):
		m.fundInput.SetValue("")
		m.fundErr = ""
		m.fundInput.Focus()
		m.modal = modalFund
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Logout):
		return m, logoutCmd(m.backend)

	case key.Matches(msg, m.keys.FocusNext):
		if m.focus == focusInput {
			m.focus = focusTable
			m.input.Blur()
			m.table = m.table.Focused(true)
		} else {
			m.focus = focusInput
			m.table = m.table.Focused(false)
			m.input.Focus()
		}
		return m, nil
	}

	if m.focus == focusInput {
		if msg.String() == "enter" {
			raw := strings.TrimSpace(m.input.Value())
			if raw == "" {
				return m, nil
			}
			if m.busy {
				m.errText = "Another task is being analyzed"
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			m.errText = ""
			m.statusText = ""
			return m, submitCmd(m.backend, raw)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	// Table focus: row actions first, then navigation.
	switch {
	case key.Matches(msg, m.keys.Approve):
		if t := m.selectedTask(); t != nil && t.Status == task.StatusApprovalRequired {
			m.approvalTask = t
			m.modal = modalApproval
		}
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		if t := m.selectedTask(); t != nil && t.Status == task.StatusFailed && !m.busy {
			m.busy = true
			m.errText = ""
			return m, retryCmd(m.backend, t.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Reject):
		if t := m.selectedTask(); t != nil && t.Status == task.StatusApprovalRequired {
			return m, rejectCmd(m.backend, t.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// ───────────────────────────────────────────────────────────────────────────────
// MODALS
// ───────────────────────────────────────────────────────────────────────────────

func updateModal(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalApproval:
		return updateApprovalModal(m, msg)
	case modalProfile:
		return updateProfileModal(m, msg)
	case modalFund:
		return updateFundModal(m, msg)
	case modalHelp:
		if key.Matches(msg, m.keys.Close) || key.Matches(msg, m.keys.Help) {
			m.modal = modalNone
		}
		return m, nil
	}
	return m, nil
}

// updateApprovalModal handles the approve/reject decision. Approving closes
// the modal before execution starts, so a second plan can never be approved
// while one is running.
func updateApprovalModal(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.approvalTask
	switch {
	case key.Matches(msg, m.keys.Approve):
		m.modal = modalNone
		m.approvalTask = nil
		m.busy = true
		m.errText = ""
		return m, approveCmd(m.backend, t.ID)

	case key.Matches(msg, m.keys.Reject), key.Matches(msg, m.keys.Close):
		m.modal = modalNone
		m.approvalTask = nil
		return m, rejectCmd(m.backend, t.ID)
	}
	return m, nil
}

func updateProfileModal(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		return m, nil

	case "tab", "shift+tab":
		m.profileInputs[m.profileFocus].Blur()
		m.profileFocus = (m.profileFocus + 1) % len(m.profileInputs)
		m.profileInputs[m.profileFocus].Focus()
		return m, textinput.Blink

	case "enter":
		p := task.UserProfile{
			Name:    strings.TrimSpace(m.profileInputs[profileFieldName].Value()),
			Context: strings.TrimSpace(m.profileInputs[profileFieldContext].Value()),
		}
		if m.user != nil {
			p.Email = m.user.Email
		}
		m.modal = modalNone
		return m, saveProfileCmd(m.backend, p)
	}

	var cmd tea.Cmd
	m.profileInputs[m.profileFocus], cmd = m.profileInputs[m.profileFocus].Update(msg)
	return m, cmd
}

func updateFundModal(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		return m, nil

	case "enter":
		amount, err := strconv.Atoi(strings.TrimSpace(m.fundInput.Value()))
		if err != nil || amount <= 0 {
			m.fundErr = "Enter a positive whole amount"
			return m, nil
		}
		email := ""
		if m.user != nil {
			email = m.user.Email
		}
		m.modal = modalNone
		return m, fundCmd(m.backend, email, amount)
	}

	var cmd tea.Cmd
	m.fundInput, cmd = m.fundInput.Update(msg)
	return m, cmd
}
