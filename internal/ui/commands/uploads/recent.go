package uploads

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dropzone/dropzone/internal/clock"
	"github.com/dropzone/dropzone/internal/ui"
	"github.com/dropzone/dropzone/internal/upload"
	"github.com/dropzone/dropzone/pkg/format"
)

// RecentStore is what the recent view reads and edits.
type RecentStore interface {
	ListRecent(ctx context.Context) ([]upload.Item, error)
	Delete(ctx context.Context, id string) error
}

type RecentConfig struct {
	ui.DisplayConfig

	Store RecentStore
	Clock clock.Clock
}

// RecentView is the Bubbletea model for listing recent uploads
type RecentView struct {
	ctx context.Context

	// State
	items   []upload.Item
	loading bool
	spinner *ui.SpinnerModel
	table   table.Model
	notice  string
	err     error

	conf RecentConfig
}

// NewRecentView creates a new recent uploads view
func NewRecentView(ctx context.Context, conf RecentConfig) *RecentView {
	if conf.Clock == nil {
		conf.Clock = clock.Real{}
	}
	return &RecentView{
		ctx:     ctx,
		loading: true,
		spinner: ui.NewSpinner(),
		conf:    conf,
	}
}

// Error returns the error if any occurred during execution
func (m *RecentView) Error() error {
	return m.err
}

func (m *RecentView) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), m.fetchRecent)
}

func (m *RecentView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SignalCancelMsg:
		return m, tea.Quit

	case recentLoadedMsg:
		return m.onLoaded(msg.items)

	case deletedMsg:
		m.notice = fmt.Sprintf("Deleted %s", msg.name)
		m.loading = true
		return m, m.fetchRecent

	case *ui.UIError:
		msg.SilentExit = true
		m.err = msg
		m.loading = false

		if m.conf.SimpleOutput() {
			fmt.Printf("Error: %s\n", msg.Error())
		}
		return m, tea.Quit

	case tea.KeyMsg:
		return m.onKey(msg)

	default:
		if !m.conf.SimpleOutput() && m.loading {
			spinnerModel, cmd := m.spinner.Update(msg)
			m.spinner = spinnerModel.(*ui.SpinnerModel) //nolint:errcheck // Type assertion guaranteed by SpinnerModel structure
			return m, cmd
		}
	}

	return m, nil
}

// View renders the output
func (m *RecentView) View() string {
	if m.conf.SimpleOutput() {
		return ""
	}

	if m.loading {
		return m.spinner.View() + " Loading recent uploads..."
	}

	if m.err != nil {
		return ui.FormatError(m.err)
	}

	if len(m.items) == 0 {
		return ui.WarningStyle.Render("No uploads in the last 24 hours") + "\n"
	}

	var output strings.Builder
	output.WriteString(ui.TitleStyle.Render("Recent uploads"))
	output.WriteString("\n\n")
	output.WriteString(m.table.View())
	output.WriteString("\n\n")

	if m.notice != "" {
		output.WriteString(ui.NoticeStyle.Render(m.notice))
		output.WriteString("\n")
	}

	help := "↑/↓ select • d delete • <esc> or q to quit"
	if ui.TableBiggerThanView(m.table) {
		help = "j/k scroll • J/K scroll to bottom/top • ctrl+d/ctrl+u page up/down • d delete • <esc> or q to quit"
	}
	output.WriteString(ui.HelpStyle.Render(help))
	output.WriteString("\n")
	return output.String()
}

// formatRecentTable formats uploads for non-TTY output
func (m *RecentView) formatRecentTable() string {
	var output strings.Builder
	now := m.conf.Clock.Now()

	output.WriteString(fmt.Sprintf("%-38s %-32s %-10s %-12s %-10s %s\n", "ID", "NAME", "TYPE", "SIZE", "STATUS", "UPLOADED"))
	for _, it := range m.items {
		output.WriteString(fmt.Sprintf("%-38s %-32s %-10s %-12s %-10s %s\n",
			it.ID,
			it.Name,
			it.Kind(),
			format.ByteSize(it.Size),
			it.Status,
			uploadedAgo(it, now),
		))
	}
	return output.String()
}

// Messages

type recentLoadedMsg struct {
	items []upload.Item
}

type deletedMsg struct {
	name string
}

// Commands (async operations)

func (m *RecentView) fetchRecent() tea.Msg {
	items, err := m.conf.Store.ListRecent(m.ctx)
	if err != nil {
		return ui.NewTransferError(err)
	}
	return recentLoadedMsg{items}
}

func (m *RecentView) deleteSelected() tea.Cmd {
	i := m.table.Cursor()
	if m.loading || i < 0 || i >= len(m.items) {
		return nil
	}
	it := m.items[i]
	return func() tea.Msg {
		if err := m.conf.Store.Delete(m.ctx, it.ID); err != nil {
			return ui.NewTransferError(err)
		}
		return deletedMsg{name: it.Name}
	}
}

func (m *RecentView) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.conf.SimpleOutput() {
		return m, nil
	}
	slog.Debug("key pressed", "key", msg.String())

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "d":
		return m, m.deleteSelected()
	case "J":
		if !m.loading && len(m.table.Rows()) > 0 {
			m.table.GotoBottom()
		}
		return m, nil
	case "K":
		if !m.loading && len(m.table.Rows()) > 0 {
			m.table.GotoTop()
		}
		return m, nil
	}

	if !m.loading && len(m.table.Rows()) > 0 {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *RecentView) onLoaded(items []upload.Item) (tea.Model, tea.Cmd) {
	m.items = items
	m.loading = false

	if m.conf.SimpleOutput() {
		if len(m.items) == 0 {
			fmt.Println("No uploads in the last 24 hours")
		} else {
			fmt.Print(m.formatRecentTable())
		}
		return m, tea.Quit
	}

	now := m.conf.Clock.Now()
	var rows []table.Row
	for _, it := range m.items {
		rows = append(rows, table.Row{
			it.Name,
			it.Kind(),
			format.ByteSize(it.Size),
			strings.TrimSpace(ui.ColorizeStatus(it.Status)),
			uploadedAgo(it, now),
		})
	}
	m.table = newTable(rows)
	return m, nil
}

func uploadedAgo(it upload.Item, now time.Time) string {
	if it.UploadedAt == nil {
		return "-"
	}
	return ui.FormatAgo(*it.UploadedAt, now)
}

// Utils

func newTable(rows []table.Row) table.Model {
	const padding = 4

	headers := []string{"Name", "Type", "Size", "Status", "Uploaded"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		columns[i] = table.Column{Title: h, Width: widths[i] + padding}
	}

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("11")).
		BorderBottom(true).
		Bold(true).
		Padding(0, 1)
	s.Selected = s.Selected.Bold(true)

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(min(len(rows)+1, ui.MAX_TABLE_HEIGHT)),
		table.WithFocused(true),
	)
	t.SetStyles(s)
	return t
}
