package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sovereignhq/sovereign/internal/task"
)

// Styles holds all lipgloss styles used by the TUI.
type Styles struct {
	Title    lipgloss.Style
	Subtle   lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	InputBox lipgloss.Style
	Modal    lipgloss.Style
	Label    lipgloss.Style

	RiskLow    lipgloss.Style
	RiskMedium lipgloss.Style
	RiskHigh   lipgloss.Style

	StatusBarFirst  statusColors
	StatusBarSecond statusColors
	StatusBarThird  statusColors
	StatusBarFourth statusColors
}

type statusColors struct {
	Foreground lipgloss.AdaptiveColor
	Background lipgloss.AdaptiveColor
}

// DefaultStyles returns the dark theme styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")),
		Subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")),
		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4B5563")).
			Padding(0, 1),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(1, 2),
		Label: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#D1D5DB")),

		RiskLow: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#064E3B")).
			Background(lipgloss.Color("#6EE7B7")).
			Padding(0, 1),
		RiskMedium: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#78350F")).
			Background(lipgloss.Color("#FCD34D")).
			Padding(0, 1),
		RiskHigh: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7F1D1D")).
			Background(lipgloss.Color("#FCA5A5")).
			Padding(0, 1),

		StatusBarFirst: statusColors{
			Foreground: lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"},
			Background: lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#7C3AED"},
		},
		StatusBarSecond: statusColors{
			Foreground: lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#E5E7EB"},
			Background: lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#1F2937"},
		},
		StatusBarThird: statusColors{
			Foreground: lipgloss.AdaptiveColor{Light: "#064E3B", Dark: "#064E3B"},
			Background: lipgloss.AdaptiveColor{Light: "#6EE7B7", Dark: "#6EE7B7"},
		},
		StatusBarFourth: statusColors{
			Foreground: lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#E5E7EB"},
			Background: lipgloss.AdaptiveColor{Light: "#374151", Dark: "#374151"},
		},
	}
}

// RiskBadge renders a colored badge for a risk level.
func (s Styles) RiskBadge(level task.RiskLevel) string {
	switch level {
	case task.RiskLow:
		return s.RiskLow.Render("LOW RISK")
	case task.RiskMedium:
		return s.RiskMedium.Render("MEDIUM RISK")
	case task.RiskHigh:
		return s.RiskHigh.Render("HIGH RISK")
	default:
		return s.Subtle.Render("UNKNOWN")
	}
}
