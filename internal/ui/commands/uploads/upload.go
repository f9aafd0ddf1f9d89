package uploads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dropzone/dropzone/internal/clock"
	"github.com/dropzone/dropzone/internal/ui"
	"github.com/dropzone/dropzone/internal/upload"
	"github.com/dropzone/dropzone/pkg/format"
)

// maxNotices is how many toast lines stay on screen.
const maxNotices = 4

// Controller is the part of the orchestrator the upload view drives. The
// caller owns its lifetime and closes it once the program has exited.
type Controller interface {
	Submit(ctx context.Context, files []upload.File) (upload.Submission, error)
	Pause(ctx context.Context, id string) error
	Resume(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
}

type UploadConfig struct {
	ui.DisplayConfig

	Controller Controller
	Files      []upload.File

	// Events carries the orchestrator's events into the program. The view
	// stops listening when it is closed.
	Events <-chan upload.Event

	Clock        clock.Clock
	ShowPreviews bool
}

// UploadState represents the phase of the upload view
type UploadState int

const (
	UploadStateSubmitting UploadState = iota
	UploadStateUploading
	UploadStateDone
	UploadStateCancelled
	UploadStateFailed
)

// UploadView is the Bubbletea model for an upload session
type UploadView struct {
	ctx context.Context

	state    UploadState
	items    []upload.Item
	selected int
	session  upload.Progress
	notices  []string
	failures int

	completed []upload.Item
	recent    []upload.Item

	spinner *ui.SpinnerModel
	bar     progress.Model
	err     error

	conf UploadConfig
}

func NewUploadView(ctx context.Context, conf UploadConfig) *UploadView {
	if conf.Clock == nil {
		conf.Clock = clock.Real{}
	}
	return &UploadView{
		ctx:     ctx,
		state:   UploadStateSubmitting,
		spinner: ui.NewSpinner(),
		bar:     ui.NewProgressBar(),
		conf:    conf,
	}
}

// Error returns the error if any occurred during execution
func (m *UploadView) Error() error {
	return m.err
}

func (m *UploadView) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), m.submit, m.waitForEvent)
}

func (m *UploadView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SignalCancelMsg:
		return m.abort()

	case submittedMsg:
		return m.onSubmitted(msg.submission)

	case eventMsg:
		model, cmd := m.onEvent(msg.event)
		if m.finished() {
			return model, cmd
		}
		return model, tea.Batch(cmd, m.waitForEvent)

	case eventsClosedMsg:
		return m, nil

	case actionFailedMsg:
		m.addNotice(ui.ErrorStyle.Render(msg.err.Error()))
		return m, nil

	case *ui.UIError:
		msg.SilentExit = true
		m.err = msg
		m.state = UploadStateFailed
		if m.conf.SimpleOutput() {
			fmt.Printf("Error: %s\n", msg.Error())
		}
		return m, tea.Quit

	case tea.KeyMsg:
		return m.onKey(msg)

	default:
		if !m.conf.SimpleOutput() && !m.finished() {
			spinnerModel, cmd := m.spinner.Update(msg)
			m.spinner = spinnerModel.(*ui.SpinnerModel) //nolint:errcheck // Type assertion guaranteed by SpinnerModel structure
			return m, cmd
		}
	}

	return m, nil
}

func (m *UploadView) finished() bool {
	return m.state == UploadStateDone || m.state == UploadStateCancelled || m.state == UploadStateFailed
}

func (m *UploadView) onSubmitted(sub upload.Submission) (tea.Model, tea.Cmd) {
	if m.finished() {
		return m, nil
	}
	if len(sub.Accepted) == 0 {
		m.state = UploadStateFailed
		uiErr := ui.NewValidationError(upload.ErrNoFilesAccepted)
		uiErr.SilentExit = true
		m.err = uiErr
		if m.conf.SimpleOutput() {
			fmt.Printf("Error: %s\n", upload.ErrNoFilesAccepted)
		}
		return m, tea.Quit
	}

	if m.state == UploadStateSubmitting {
		m.state = UploadStateUploading
	}
	if m.conf.SimpleOutput() {
		fmt.Printf("Uploading %s (%s)...\n", ui.FormatFileCount(len(sub.Accepted)), format.ByteSize(totalSize(sub.Accepted)))
	}
	return m, nil
}

func (m *UploadView) onEvent(ev upload.Event) (tea.Model, tea.Cmd) {
	switch ev := ev.(type) {
	case upload.ItemUpdated:
		m.upsert(ev.Item)

	case upload.ItemRemoved:
		m.remove(ev.ID)
		if m.conf.SimpleOutput() {
			fmt.Printf("- %s cancelled\n", ev.Name)
		}

	case upload.FileRejected:
		m.addNotice(ui.WarningStyle.Render(ev.Err.Error()))
		if m.conf.SimpleOutput() {
			fmt.Printf("! %s\n", ev.Err.Error())
		}

	case upload.UploadFailed:
		m.failures++
		m.addNotice(ui.ErrorStyle.Render(fmt.Sprintf("Failed to upload %s: %s", ev.Item.Name, ev.Item.Error)))

	case upload.Notice:
		m.addNotice(ui.NoticeStyle.Render(ev.Message))

	case upload.SessionUpdated:
		m.session = ev.Progress
		if m.state == UploadStateUploading && ev.Progress.TotalFiles == 0 && len(m.items) == 0 {
			return m.onAllCancelled()
		}

	case upload.BatchCompleted:
		return m.onBatchCompleted(ev)
	}

	return m, nil
}

func (m *UploadView) onAllCancelled() (tea.Model, tea.Cmd) {
	m.state = UploadStateCancelled
	m.err = ui.NewUserCancelledError()
	if m.conf.SimpleOutput() {
		fmt.Println("All uploads cancelled")
	}
	return m, tea.Quit
}

func (m *UploadView) onBatchCompleted(ev upload.BatchCompleted) (tea.Model, tea.Cmd) {
	m.state = UploadStateDone
	m.completed = ev.Completed
	m.recent = ev.Recent
	m.items = nil

	if m.failures > 0 {
		uiErr := ui.NewTransferError(fmt.Errorf("%d of %d uploads failed", m.failures, m.failures+len(m.completed)))
		uiErr.SilentExit = true
		m.err = uiErr
	}

	if m.conf.SimpleOutput() {
		fmt.Print(m.formatSummary())
	}
	return m, tea.Quit
}

func (m *UploadView) upsert(it upload.Item) {
	i := slices.IndexFunc(m.items, func(x upload.Item) bool { return x.ID == it.ID })
	if i < 0 {
		m.items = append(m.items, it)
		return
	}

	prev := m.items[i].Status
	m.items[i] = it
	if m.conf.SimpleOutput() && prev != it.Status {
		switch it.Status {
		case upload.StatusCompleted:
			fmt.Printf("✓ %s (%s)\n", it.Name, format.ByteSize(it.Size))
		case upload.StatusError:
			fmt.Printf("✗ %s: %s\n", it.Name, it.Error)
		case upload.StatusPaused:
			fmt.Printf("  %s paused\n", it.Name)
		}
	}
}

func (m *UploadView) remove(id string) {
	m.items = slices.DeleteFunc(m.items, func(x upload.Item) bool { return x.ID == id })
	if m.selected >= len(m.items) {
		m.selected = max(len(m.items)-1, 0)
	}
}

func (m *UploadView) addNotice(s string) {
	m.notices = append(m.notices, s)
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
}

func (m *UploadView) abort() (tea.Model, tea.Cmd) {
	slog.Debug("upload view aborted", "active", len(m.items))
	m.state = UploadStateCancelled
	m.err = ui.NewUserCancelledError()
	if m.conf.SimpleOutput() {
		fmt.Println("\nCancelled")
	}
	return m, tea.Quit
}

func (m *UploadView) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.conf.SimpleOutput() {
		return m, nil
	}
	slog.Debug("key pressed", "key", msg.String())

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		if m.finished() {
			return m, tea.Quit
		}
		return m.abort()
	case "up", "k":
		m.selected = max(m.selected-1, 0)
	case "down", "j":
		m.selected = min(m.selected+1, max(len(m.items)-1, 0))
	case "p":
		return m, m.onSelected(m.conf.Controller.Pause)
	case "r":
		return m, m.onSelected(m.conf.Controller.Resume)
	case "x", "c":
		return m, m.onSelected(m.conf.Controller.Cancel)
	}
	return m, nil
}

// onSelected runs action against the selected item.
func (m *UploadView) onSelected(action func(context.Context, string) error) tea.Cmd {
	if m.state != UploadStateUploading || len(m.items) == 0 {
		return nil
	}
	id := m.items[m.selected].ID
	return func() tea.Msg {
		if err := action(m.ctx, id); err != nil {
			if errors.Is(err, upload.ErrInvalidTransition) {
				return actionFailedMsg{err: errors.New("that action is not available for this file")}
			}
			return actionFailedMsg{err: err}
		}
		return nil
	}
}

// View renders the output
func (m *UploadView) View() string {
	if m.conf.SimpleOutput() {
		return ""
	}

	var b strings.Builder
	switch m.state {
	case UploadStateSubmitting:
		b.WriteString(fmt.Sprintf("%s Preparing %s...\n", m.spinner.View(), ui.FormatFileCount(len(m.conf.Files))))

	case UploadStateUploading:
		b.WriteString(ui.TitleStyle.Render(fmt.Sprintf("Uploading %s", ui.FormatFileCount(m.session.TotalFiles))))
		b.WriteString("\n\n")
		b.WriteString(m.renderSession())
		b.WriteString("\n\n")
		for i, it := range m.items {
			b.WriteString(m.renderItem(it, i == m.selected))
			b.WriteString("\n")
		}

	case UploadStateDone:
		b.WriteString(m.formatSummary())

	case UploadStateCancelled:
		b.WriteString(ui.WarningStyle.Render("Upload cancelled") + "\n")

	case UploadStateFailed:
		if m.err != nil {
			b.WriteString(ui.FormatError(m.err))
		}
	}

	if len(m.notices) > 0 && m.state != UploadStateDone {
		b.WriteString("\n")
		for _, n := range m.notices {
			b.WriteString("• " + n + "\n")
		}
	}

	if m.state == UploadStateUploading {
		b.WriteString("\n")
		b.WriteString(ui.HelpStyle.Render("↑/↓ select • p pause • r resume • x cancel • q quit"))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *UploadView) renderSession() string {
	p := m.session
	parts := []string{
		fmt.Sprintf("%s / %s", format.ByteSize(p.UploadedBytes), format.ByteSize(p.TotalBytes)),
	}
	if p.Rate > 0 {
		parts = append(parts, format.ByteRate(p.BytesPerSecond()))
	}
	if p.EstimatedTimeRemaining > 0 {
		parts = append(parts, "ETA "+format.Duration(p.EstimatedTimeRemaining))
	}

	return fmt.Sprintf("%s %3.0f%%  %s",
		m.bar.ViewAs(p.Percent/100),
		p.Percent,
		ui.MutedStyle.Render(strings.Join(parts, " • ")),
	)
}

var (
	nameColumn = lipgloss.NewStyle().Width(28)
	kindColumn = lipgloss.NewStyle().Width(10)
	sizeColumn = lipgloss.NewStyle().Width(10)
)

func (m *UploadView) renderItem(it upload.Item, selected bool) string {
	cursor := "  "
	name := it.Name
	if selected {
		cursor = ui.SelectedStyle.Render("> ")
		name = ui.SelectedStyle.Render(name)
	}

	line := cursor + m.spinner.StatusIcon(it.Status) + " " +
		nameColumn.Render(name) +
		kindColumn.Render(it.Kind()) +
		sizeColumn.Render(format.ByteSize(it.Size))

	switch it.Status {
	case upload.StatusError:
		line += ui.ColorizeStatus(it.Status) + " " + ui.MutedStyle.Render(it.Error)
	case upload.StatusQueued:
		line += ui.ColorizeStatus(it.Status)
	default:
		line += fmt.Sprintf("%s %3.0f%% %s", m.bar.ViewAs(it.Progress/100), it.Progress, ui.ColorizeStatus(it.Status))
	}

	if m.conf.ShowPreviews && it.Preview != "" {
		line += " " + ui.MutedStyle.Render("[preview]")
	}
	return line
}

// formatSummary is the closing report shared by both output modes.
func (m *UploadView) formatSummary() string {
	var b strings.Builder

	if n := len(m.completed); n > 0 {
		b.WriteString(ui.SuccessStyle.Render(fmt.Sprintf("✓ Successfully uploaded %s!", ui.FormatFileCount(n))))
		b.WriteString("\n")
	}
	if m.failures > 0 {
		b.WriteString(ui.ErrorStyle.Render(fmt.Sprintf("✗ %d %s failed", m.failures, pluralUpload(m.failures))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatRecent(m.recent, m.conf.Clock.Now()))
	return b.String()
}

func pluralUpload(n int) string {
	if n == 1 {
		return "upload"
	}
	return "uploads"
}

// formatRecent renders the recent-upload list as plain aligned lines.
func formatRecent(items []upload.Item, now time.Time) string {
	if len(items) == 0 {
		return "No recent uploads\n"
	}

	var b strings.Builder
	b.WriteString(ui.BoldStyle.Render("Recent uploads (last 24 hours)"))
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString(fmt.Sprintf("  %-32s %-10s %-10s %s\n", it.Name, it.Kind(), format.ByteSize(it.Size), uploadedAgo(it, now)))
	}
	return b.String()
}

func totalSize(items []upload.Item) int64 {
	var total int64
	for _, it := range items {
		total += it.Size
	}
	return total
}

// Messages

type submittedMsg struct {
	submission upload.Submission
}

type eventMsg struct {
	event upload.Event
}

type eventsClosedMsg struct{}

type actionFailedMsg struct {
	err error
}

// Commands (async operations)

func (m *UploadView) submit() tea.Msg {
	sub, err := m.conf.Controller.Submit(m.ctx, m.conf.Files)
	if err != nil {
		return ui.Classify(err)
	}
	return submittedMsg{submission: sub}
}

func (m *UploadView) waitForEvent() tea.Msg {
	if m.conf.Events == nil {
		return eventsClosedMsg{}
	}
	select {
	case ev, ok := <-m.conf.Events:
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: ev}
	case <-m.ctx.Done():
		return eventsClosedMsg{}
	}
}
