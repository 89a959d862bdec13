package cli

import "github.com/charmbracelet/lipgloss"

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

func okMark() string   { return okStyle.Render("✓") }
func failMark() string { return failStyle.Render("✗") }
func warnMark() string { return warnStyle.Render("⚠") }
