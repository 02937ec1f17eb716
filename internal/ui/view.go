package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"
)

// view renders the full screen for the current state.
func view(m Model) string {
	if !m.ready {
		return "Initializing..."
	}

	if m.screen == screenAuth {
		return viewAuth(m)
	}

	main := viewMain(m)
	if m.modal == modalNone {
		return main
	}

	var modal string
	switch m.modal {
	case modalApproval:
		modal = viewApprovalModal(m)
	case modalProfile:
		modal = viewProfileModal(m)
	case modalFund:
		modal = viewFundModal(m)
	case modalHelp:
		modal = viewHelpModal(m)
	}

	return overlay.New(
		staticModel(modal),
		staticModel(main),
		overlay.Center,
		overlay.Center,
		0, 0,
	).View()
}

// staticModel adapts a rendered string to tea.Model for overlay compositing.
type staticModel string

func (s staticModel) Init() tea.Cmd                       { return nil }
func (s staticModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return s, nil }
func (s staticModel) View() string                        { return string(s) }

// ───────────────────────────────────────────────────────────────────────────────
// AUTH SCREEN
// ───────────────────────────────────────────────────────────────────────────────

func viewAuth(m Model) string {
	var sb strings.Builder

	mode := "Sign in"
	hint := "ctrl+r to create an account"
	if m.registerMode {
		mode = "Create account"
		hint = "ctrl+r to sign in instead"
	}

	sb.WriteString(m.styles.Title.Render("SOVEREIGN"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Subtle.Render("Your autonomous task agent"))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Label.Render(mode))
	sb.WriteString("\n\n")
	sb.WriteString(m.authInputs[authFieldEmail].View())
	sb.WriteString("\n")
	sb.WriteString(m.authInputs[authFieldPassword].View())
	sb.WriteString("\n\n")

	if m.busy {
		sb.WriteString(m.spinner.View() + " working...")
	} else if m.authErr != "" {
		sb.WriteString(m.styles.Error.Render(m.authErr))
	} else {
		sb.WriteString(m.styles.Subtle.Render("enter to continue · tab to switch fields · " + hint))
	}

	box := m.styles.Modal.Width(54).Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// ───────────────────────────────────────────────────────────────────────────────
// MAIN SCREEN
// ───────────────────────────────────────────────────────────────────────────────

func viewMain(m Model) string {
	var sb strings.Builder

	header := m.styles.Title.Render("SOVEREIGN") + "  " +
		m.styles.Subtle.Render("describe it, approve it, done")
	sb.WriteString(header)
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.InputBox.Width(m.width - 4).Render(m.input.View()))
	sb.WriteString("\n\n")

	sb.WriteString(m.table.View())
	sb.WriteString("\n")

	if m.busy {
		sb.WriteString(m.spinner.View() + " " + m.styles.Subtle.Render("working..."))
	} else if m.errText != "" {
		sb.WriteString(m.styles.Error.Render(m.errText))
	} else if m.statusText != "" {
		sb.WriteString(m.styles.Success.Render(m.statusText))
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))

	body := sb.String()
	bar := renderStatusBar(m)

	gap := m.height - lipgloss.Height(body) - lipgloss.Height(bar)
	if gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return body + bar
}

func renderStatusBar(m Model) string {
	email := ""
	if m.user != nil {
		email = m.user.Email
	}

	state := "ready"
	if m.busy {
		state = "working"
	}

	m.statusbar.SetSize(m.width)
	m.statusbar.SetContent(
		"SOVEREIGN",
		email,
		FormatNaira(m.backend.WalletBalance()),
		state,
	)
	return m.statusbar.View()
}

// ───────────────────────────────────────────────────────────────────────────────
// MODALS
// ───────────────────────────────────────────────────────────────────────────────

func viewApprovalModal(m Model) string {
	t := m.approvalTask
	if t == nil || t.Plan == nil {
		return ""
	}
	plan := t.Plan

	width := m.width * 3 / 4
	if width > 90 {
		width = 90
	}
	if width < 40 {
		width = 40
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(plan.Title))
	sb.WriteString("  ")
	sb.WriteString(m.styles.RiskBadge(plan.RiskLevel))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Label.Render("Intent: "))
	sb.WriteString(plan.Intent)
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Label.Render("Steps"))
	sb.WriteString("\n")
	for i, step := range plan.Steps {
		sb.WriteString(fmt.Sprintf("  %d. %s", i+1, step.Description))
		if step.Tool != "" {
			sb.WriteString(m.styles.Subtle.Render("  [" + step.Tool + "]"))
		}
		sb.WriteString("\n")
	}

	if plan.EstimatedCost != "" {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Label.Render("Estimated cost: "))
		sb.WriteString(plan.EstimatedCost)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Label.Render("Reasoning"))
	sb.WriteString("\n")
	sb.WriteString(renderMarkdown(plan.Reasoning, width-6))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Subtle.Render("a approve · n reject · esc close"))

	return m.styles.Modal.Width(width).Render(sb.String())
}

// renderMarkdown renders text through glamour, falling back to the raw text
// when the renderer cannot be constructed.
func renderMarkdown(text string, width int) string {
	if width < 20 {
		width = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func viewProfileModal(m Model) string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Profile"))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Label.Render("Name"))
	sb.WriteString("\n")
	sb.WriteString(m.profileInputs[profileFieldName].View())
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Label.Render("Planner context"))
	sb.WriteString("\n")
	sb.WriteString(m.profileInputs[profileFieldContext].View())
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Subtle.Render("enter save · tab switch · esc cancel"))
	return m.styles.Modal.Width(60).Render(sb.String())
}

func viewFundModal(m Model) string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Fund wallet"))
	sb.WriteString("\n\n")
	sb.WriteString("Balance: " + FormatNaira(m.backend.WalletBalance()))
	sb.WriteString("\n\n")
	sb.WriteString(m.fundInput.View())
	sb.WriteString("\n\n")
	if m.fundErr != "" {
		sb.WriteString(m.styles.Error.Render(m.fundErr))
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.Subtle.Render("enter to pay · esc cancel"))
	return m.styles.Modal.Width(46).Render(sb.String())
}

func viewHelpModal(m Model) string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Keys"))
	sb.WriteString("\n\n")

	groups := m.keys.FullHelp()
	for _, group := range groups {
		for _, binding := range group {
			h := binding.Help()
			sb.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.Subtle.Render("esc to close"))
	return m.styles.Modal.Width(44).Render(sb.String())
}
