package tui

import "github.com/charmbracelet/lipgloss"

var panel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#444466")).
	Padding(0, 1)

var title = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#00ffff"))

var selected = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#ff00ff"))

var (
	label = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	value = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Bold(true)
	ok    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88")).Bold(true)
	warn  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true)
	hint  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")).Italic(true)
)
