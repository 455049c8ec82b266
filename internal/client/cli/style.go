package cli

import "github.com/charmbracelet/lipgloss"

var (
	iris   = lipgloss.Color("#8B5CF6")
	slate  = lipgloss.Color("#667085")
	green  = lipgloss.Color("#22A06B")
	red    = lipgloss.Color("#D93025")
	yellow = lipgloss.Color("#F59E0B")

	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(iris)
	subtleStyle  = lipgloss.NewStyle().Foreground(slate)
	okStyle      = lipgloss.NewStyle().Foreground(green)
	errStyle     = lipgloss.NewStyle().Foreground(red)
	warnStyle    = lipgloss.NewStyle().Foreground(yellow)
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

const (
	iconCheck = "✓"
	iconCross = "✗"
	iconDot   = "●"
)
