package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Status colors
	GreenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	RedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	YellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	CyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	MagentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// Progress states
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	ActiveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	PendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	SpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true).
			Padding(0, 1)

	// Selected row in the upload queue
	SelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)

	// Toast-style notices (paused, rejected, batch done)
	NoticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Padding(0, 1)

	// Secondary details such as sizes and timestamps
	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246"))
)

// Gradient ends of the progress bars.
const (
	ProgressStartColor = "#7C3AED"
	ProgressEndColor   = "#06B6D4"
)
