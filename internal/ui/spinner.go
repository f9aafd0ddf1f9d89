package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dropzone/dropzone/internal/upload"
)

// SpinnerModel animates work in progress and marks upload rows by status.
type SpinnerModel struct {
	spinner spinner.Model
}

func NewSpinner() *SpinnerModel {
	return &SpinnerModel{spinner: spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(SpinnerStyle),
	)}
}

func (m *SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update only reacts to this spinner's tick messages.
func (m *SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *SpinnerModel) View() string {
	return m.spinner.View()
}

// StatusIcon is the one-cell marker in front of an upload row. Only
// uploading rows animate.
func (m *SpinnerModel) StatusIcon(status upload.Status) string {
	switch status {
	case upload.StatusUploading:
		return m.spinner.View()
	case upload.StatusCompleted:
		return SuccessStyle.Render("✓")
	case upload.StatusError:
		return ErrorStyle.Render("✗")
	case upload.StatusPaused:
		return WarningStyle.Render("‖")
	case upload.StatusQueued:
		return PendingStyle.Render("·")
	default:
		return " "
	}
}
