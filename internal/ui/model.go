// Package ui is the Sovereign terminal client: an auth gate, a task table
// with a submission input, and modal flows for plan approval, profile
// editing, and wallet funding.
package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/mistakenelf/teacup/statusbar"
	"github.com/rs/zerolog"

	"github.com/sovereignhq/sovereign/internal/auth"
	"github.com/sovereignhq/sovereign/internal/task"
)

// screen selects the top-level view.
type screen int

const (
	screenAuth screen = iota
	screenMain
)

// modalType selects the active modal overlay.
type modalType int

const (
	modalNone modalType = iota
	modalApproval
	modalProfile
	modalFund
	modalHelp
)

// focusArea tracks which main-view component receives keystrokes.
type focusArea int

const (
	focusInput focusArea = iota
	focusTable
)

// Table column keys.
const (
	colKeyID     = "id"
	colKeyTitle  = "title"
	colKeyStatus = "status"
	colKeyRisk   = "risk"
	colKeyCost   = "cost"
)

// Model is the root Bubble Tea model.
type Model struct {
	backend Backend
	log     zerolog.Logger

	width  int
	height int
	ready  bool

	styles Styles
	keys   KeyMap

	screen screen
	modal  modalType
	focus  focusArea

	// Auth form
	authInputs   []textinput.Model
	authFocus    int
	registerMode bool
	authErr      string

	user *auth.User

	// Main view
	table     table.Model
	input     textarea.Model
	spinner   spinner.Model
	statusbar statusbar.Model
	help      help.Model

	busy       bool
	statusText string
	errText    string

	// Approval modal
	approvalTask *task.Task

	// Profile modal
	profileInputs []textinput.Model
	profileFocus  int

	// Fund modal
	fundInput textinput.Model
	fundErr   string
}

const (
	authFieldEmail = iota
	authFieldPassword
)

const (
	profileFieldName = iota
	profileFieldContext
)

// New creates the root model.
func New(backend Backend, log zerolog.Logger) Model {
	styles := DefaultStyles()

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 120
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	input := textarea.New()
	input.Placeholder = "Describe a task, e.g. \"Pay my IKEDC bill of 5,000 NGN\""
	input.SetHeight(3)
	input.CharLimit = 2000
	input.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	sb := statusbar.New(
		statusbar.ColorConfig{Foreground: styles.StatusBarFirst.Foreground, Background: styles.StatusBarFirst.Background},
		statusbar.ColorConfig{Foreground: styles.StatusBarSecond.Foreground, Background: styles.StatusBarSecond.Background},
		statusbar.ColorConfig{Foreground: styles.StatusBarThird.Foreground, Background: styles.StatusBarThird.Background},
		statusbar.ColorConfig{Foreground: styles.StatusBarFourth.Foreground, Background: styles.StatusBarFourth.Background},
	)

	name := textinput.New()
	name.Placeholder = "name"
	name.CharLimit = 120

	userContext := textinput.New()
	userContext.Placeholder = "context the planner should know (address, plan, ...)"
	userContext.CharLimit = 500

	fund := textinput.New()
	fund.Placeholder = "amount in Naira, e.g. 10000"
	fund.CharLimit = 12

	return Model{
		backend:       backend,
		log:           log,
		styles:        styles,
		keys:          DefaultKeyMap(),
		screen:        screenAuth,
		authInputs:    []textinput.Model{email, password},
		table:         newTaskTable(styles, nil, 0),
		input:         input,
		spinner:       sp,
		statusbar:     sb,
		help:          help.New(),
		profileInputs: []textinput.Model{name, userContext},
		fundInput:     fund,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update implements tea.Model, delegating to update.go.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return update(m, msg)
}

// View implements tea.Model, delegating to view.go.
func (m Model) View() string {
	return view(m)
}

// newTaskTable builds the task table for the given snapshot.
func newTaskTable(styles Styles, tasks []*task.Task, width int) table.Model {
	cols := []table.Column{
		table.NewFlexColumn(colKeyTitle, "Task", 3),
		table.NewColumn(colKeyStatus, "Status", 19),
		table.NewColumn(colKeyRisk, "Risk", 8),
		table.NewColumn(colKeyCost, "Cost", 11),
	}

	t := table.New(cols).
		WithRows(taskRows(tasks)).
		WithBaseStyle(lipgloss.NewStyle().
			BorderForeground(lipgloss.Color("#4B5563")).
			Align(lipgloss.Left)).
		HighlightStyle(lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(lipgloss.Color("#F9FAFB")))

	if width > 0 {
		t = t.WithTargetWidth(width)
	}
	return t
}

// taskRows converts the task snapshot into table rows, newest first.
func taskRows(tasks []*task.Task) []table.Row {
	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		title := t.RawInput
		risk := "-"
		cost := "-"
		if t.Plan != nil {
			title = t.Plan.Title
			risk = string(t.Plan.RiskLevel)
			if t.Plan.EstimatedCost != "" {
				cost = t.Plan.EstimatedCost
			}
		}
		if t.Result != nil && t.Result.CostIncurred != "" {
			cost = t.Result.CostIncurred
		}
		rows = append(rows, table.NewRow(table.RowData{
			colKeyID:     t.ID,
			colKeyTitle:  truncate(title, 60),
			colKeyStatus: string(t.Status),
			colKeyRisk:   risk,
			colKeyCost:   cost,
		}))
	}
	return rows
}

// selectedTask resolves the highlighted table row back to a task.
func (m Model) selectedTask() *task.Task {
	row := m.table.HighlightedRow()
	id, ok := row.Data[colKeyID].(string)
	if !ok {
		return nil
	}
	for _, t := range m.backend.Tasks() {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// refreshTable rebuilds table rows from the backend snapshot.
func (m *Model) refreshTable() {
	m.table = m.table.WithRows(taskRows(m.backend.Tasks()))
}
