package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dropzone/dropzone/internal/clock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultCompletionDelay is how long a finished batch stays visible
	// before it is swept.
	DefaultCompletionDelay = time.Second

	defaultPreviewConcurrency = 4

	refreshAttempts   = 3
	refreshRetryDelay = 200 * time.Millisecond
)

// Config wires the orchestrator to its collaborators.
type Config struct {
	Backend   Backend
	Previewer Previewer // optional
	Rules     Rules
	Clock     clock.Clock
	Listener  Listener

	CompletionDelay    time.Duration
	PreviewConcurrency int
}

// Submission is the outcome of validating a set of files.
type Submission struct {
	Accepted []Item
	Rejected []*ValidationError
}

type entry struct {
	item    Item
	file    File
	attempt int
	cancel  context.CancelFunc
}

// Orchestrator owns the active set of uploads and the session built over it.
//
// Every upload attempt runs in its own goroutine. All item and session state
// is guarded by mu and every change is keyed by item ID. Each attempt carries
// a number; reports from an attempt that has since been paused, resumed or
// cancelled are dropped.
type Orchestrator struct {
	ctx   context.Context
	stop  context.CancelFunc
	conf  Config
	group errgroup.Group

	mu       sync.Mutex
	entries  map[string]*entry
	order    []string
	session  Session
	batch    int
	sweeping bool
	closed   bool

	// emitMu is taken before mu is released so listeners see events in the
	// order the state changed.
	emitMu sync.Mutex
}

// New creates an orchestrator. Uploads it dispatches stop when ctx is done
// or when Close is called.
func New(ctx context.Context, conf Config) *Orchestrator {
	if conf.Clock == nil {
		conf.Clock = clock.Real{}
	}
	if conf.Listener == nil {
		conf.Listener = func(Event) {}
	}
	if conf.CompletionDelay < 0 {
		conf.CompletionDelay = 0
	}
	if conf.PreviewConcurrency <= 0 {
		conf.PreviewConcurrency = defaultPreviewConcurrency
	}
	if conf.Rules.MaxFileSize == 0 && len(conf.Rules.AllowedTypes) == 0 {
		conf.Rules = DefaultRules()
	}

	ctx, stop := context.WithCancel(ctx)
	return &Orchestrator{
		ctx:     ctx,
		stop:    stop,
		conf:    conf,
		entries: make(map[string]*entry),
	}
}

// Submit validates files, creates queued items for the accepted ones and
// starts all of them at once. Rejected files are reported in the returned
// Submission and as FileRejected events; they never reach the backend.
func (o *Orchestrator) Submit(ctx context.Context, files []File) (Submission, error) {
	var sub Submission
	var events []Event
	var accepted []*entry

	for _, f := range files {
		if err := o.conf.Rules.Validate(f); err != nil {
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				return sub, fmt.Errorf("failed to validate %s: %w", f.Name, err)
			}
			slog.Info("Rejected file", "name", f.Name, "type", f.MIMEType, "size", f.Size, "reason", vErr.Reason)
			sub.Rejected = append(sub.Rejected, vErr)
			events = append(events, FileRejected{Err: vErr})
			continue
		}

		accepted = append(accepted, &entry{
			file: f,
			item: Item{
				ID:       uuid.NewString(),
				Name:     f.Name,
				Size:     f.Size,
				MIMEType: f.MIMEType,
				Status:   StatusQueued,
			},
		})
	}

	if len(accepted) == 0 {
		o.publish(events...)
		return sub, nil
	}

	o.attachPreviews(ctx, accepted)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return sub, ErrClosed
	}

	if !o.session.Active() {
		o.session = Session{StartedAt: o.conf.Clock.Now()}
	}
	o.batch++

	for _, e := range accepted {
		o.session.TotalFiles++
		o.session.TotalBytes += e.item.Size
		o.entries[e.item.ID] = e
		o.order = append(o.order, e.item.ID)

		sub.Accepted = append(sub.Accepted, e.item)
		events = append(events, ItemUpdated{Item: e.item})
	}
	events = append(events, SessionUpdated{Progress: o.progressLocked()})
	o.unlockAndPublish(events...)

	slog.Debug("Submitted files", "accepted", len(sub.Accepted), "rejected", len(sub.Rejected))

	for _, it := range sub.Accepted {
		o.dispatch(it.ID)
	}

	return sub, nil
}

// attachPreviews fills in previews for image files. Failures are logged and
// otherwise ignored.
func (o *Orchestrator) attachPreviews(ctx context.Context, entries []*entry) {
	if o.conf.Previewer == nil {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.conf.PreviewConcurrency)

	for _, e := range entries {
		if !e.file.IsImage() {
			continue
		}
		g.Go(func() error {
			data, err := o.conf.Previewer.Preview(gctx, e.file)
			if err != nil {
				slog.Warn("Failed to generate preview", "error", &PreviewError{Name: e.file.Name, Err: err})
				return nil
			}
			e.item.Preview = data
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // Preview goroutines never return errors
}

// dispatch starts a new attempt for an item that is queued or was just
// resumed.
func (o *Orchestrator) dispatch(id string) {
	o.mu.Lock()
	e, ok := o.entries[id]
	if !ok || o.closed {
		o.mu.Unlock()
		return
	}

	if e.item.Status == StatusQueued {
		if err := e.item.Start(); err != nil {
			o.mu.Unlock()
			slog.Error("Failed to start upload", "id", id, "error", err)
			return
		}
	}
	if e.item.Status != StatusUploading {
		o.mu.Unlock()
		return
	}

	e.attempt++
	attempt := e.attempt
	ctx, cancel := context.WithCancel(o.ctx)
	e.cancel = cancel

	req := Request{
		ID:       e.item.ID,
		Name:     e.item.Name,
		Size:     e.item.Size,
		MIMEType: e.item.MIMEType,
		Path:     e.file.Path,
	}
	o.group.Go(func() error {
		o.run(ctx, cancel, id, attempt, req)
		return nil
	})

	slog.Debug("Dispatched upload", "id", id, "name", req.Name, "attempt", attempt)

	item := e.item
	progress := o.progressLocked()
	o.unlockAndPublish(ItemUpdated{Item: item}, SessionUpdated{Progress: progress})
}

// run performs one attempt against the backend and applies its outcome.
func (o *Orchestrator) run(ctx context.Context, cancel context.CancelFunc, id string, attempt int, req Request) {
	defer cancel()

	result, err := o.conf.Backend.Upload(ctx, req, func(percent float64) {
		o.onProgress(id, attempt, percent)
	})
	if ctx.Err() != nil {
		// Paused, cancelled or shut down: the outcome is no longer wanted.
		return
	}

	o.mu.Lock()
	e, ok := o.entries[id]
	if !ok || e.attempt != attempt || e.item.Status != StatusUploading {
		o.mu.Unlock()
		return
	}
	e.cancel = nil

	var events []Event
	if err != nil {
		var tErr *TransferError
		if !errors.As(err, &tErr) {
			tErr = &TransferError{ID: id, Name: req.Name, Err: err}
		}
		if failErr := e.item.Fail(tErr); failErr != nil {
			o.mu.Unlock()
			slog.Error("Failed to record upload failure", "id", id, "error", failErr)
			return
		}
		slog.Info("Upload failed", "id", id, "name", req.Name, "error", tErr)
		events = append(events, ItemUpdated{Item: e.item}, UploadFailed{Item: e.item, Err: tErr})
	} else {
		at := o.conf.Clock.Now()
		if result != nil && result.UploadedAt != nil {
			at = *result.UploadedAt
		}
		if doneErr := e.item.Complete(at); doneErr != nil {
			o.mu.Unlock()
			slog.Error("Failed to record upload completion", "id", id, "error", doneErr)
			return
		}
		slog.Debug("Upload completed", "id", id, "name", req.Name)
		events = append(events, ItemUpdated{Item: e.item})
	}

	events = append(events, SessionUpdated{Progress: o.progressLocked()})
	o.scheduleSweepLocked()
	o.unlockAndPublish(events...)
}

func (o *Orchestrator) onProgress(id string, attempt int, percent float64) {
	o.mu.Lock()
	e, ok := o.entries[id]
	if !ok || e.attempt != attempt || !e.item.Advance(percent) {
		o.mu.Unlock()
		return
	}

	item := e.item
	progress := o.progressLocked()
	o.unlockAndPublish(ItemUpdated{Item: item}, SessionUpdated{Progress: progress})
}

// Pause stops reflecting the item's in-flight attempt. The attempt's context
// is cancelled, but a backend may keep running it.
func (o *Orchestrator) Pause(ctx context.Context, id string) error {
	o.mu.Lock()
	e, ok := o.entries[id]
	if !ok {
		o.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := e.item.Pause(); err != nil {
		o.mu.Unlock()
		return err
	}
	o.abandonLocked(e)

	item := e.item
	progress := o.progressLocked()
	o.unlockAndPublish(ItemUpdated{Item: item}, SessionUpdated{Progress: progress}, Notice{Message: "Upload paused"})

	if _, err := o.conf.Backend.Pause(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to pause upload: %w", err)
	}
	return nil
}

// Resume restarts a paused item from zero.
func (o *Orchestrator) Resume(ctx context.Context, id string) error {
	o.mu.Lock()
	e, ok := o.entries[id]
	if !ok {
		o.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := e.item.Resume(); err != nil {
		o.mu.Unlock()
		return err
	}
	o.mu.Unlock()

	if _, err := o.conf.Backend.Resume(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		slog.Warn("Backend failed to resume upload", "id", id, "error", err)
	}

	o.dispatch(id)
	o.publish(Notice{Message: "Upload resumed"})
	return nil
}

// Cancel removes a non-terminal item from the active set and from the
// backend. The session totals keep the item's bytes.
func (o *Orchestrator) Cancel(ctx context.Context, id string) error {
	o.mu.Lock()
	e, ok := o.entries[id]
	if !ok {
		o.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := e.item.Cancel(); err != nil {
		o.mu.Unlock()
		return err
	}
	o.abandonLocked(e)

	delete(o.entries, id)
	o.order = slices.DeleteFunc(o.order, func(v string) bool { return v == id })

	if len(o.order) == 0 {
		o.session = Session{}
	} else {
		o.scheduleSweepLocked()
	}

	progress := o.progressLocked()
	o.unlockAndPublish(
		ItemRemoved{ID: id, Name: e.item.Name},
		SessionUpdated{Progress: progress},
		Notice{Message: "Upload cancelled"},
	)

	if err := o.conf.Backend.Cancel(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to cancel upload: %w", err)
	}
	return nil
}

// Items returns a copy of the active set in submission order.
func (o *Orchestrator) Items() []Item {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.itemsLocked()
}

// Progress returns the current session summary.
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progressLocked()
}

// Close cancels every attempt and waits for in-flight work to return.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	for _, e := range o.entries {
		o.abandonLocked(e)
	}
	o.mu.Unlock()

	o.stop()
	return o.group.Wait()
}

func (o *Orchestrator) abandonLocked(e *entry) {
	e.attempt++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (o *Orchestrator) itemsLocked() []Item {
	items := make([]Item, 0, len(o.order))
	for _, id := range o.order {
		items = append(items, o.entries[id].item)
	}
	return items
}

func (o *Orchestrator) progressLocked() Progress {
	return Aggregate(o.session, o.itemsLocked(), o.conf.Clock.Now())
}

func (o *Orchestrator) allTerminalLocked() bool {
	if len(o.order) == 0 {
		return false
	}
	for _, id := range o.order {
		if !o.entries[id].item.Status.IsTerminal() {
			return false
		}
	}
	return true
}

func (o *Orchestrator) scheduleSweepLocked() {
	if o.sweeping || o.closed || !o.allTerminalLocked() {
		return
	}
	o.sweeping = true
	batch := o.batch
	o.group.Go(func() error {
		o.sweep(batch)
		return nil
	})
}

// sweep waits out the completion delay, then reports the batch and clears
// the active set. Files submitted during the delay postpone the sweep until
// they are terminal as well.
func (o *Orchestrator) sweep(batch int) {
	if err := o.conf.Clock.Sleep(o.ctx, o.conf.CompletionDelay); err != nil {
		o.mu.Lock()
		o.sweeping = false
		o.mu.Unlock()
		return
	}

	recent := o.refreshRecent()

	o.mu.Lock()
	o.sweeping = false
	if batch != o.batch || !o.allTerminalLocked() {
		o.scheduleSweepLocked()
		o.mu.Unlock()
		return
	}

	var completed []Item
	for _, it := range o.itemsLocked() {
		if it.Status == StatusCompleted {
			completed = append(completed, it)
		}
	}

	o.entries = make(map[string]*entry)
	o.order = nil
	o.session = Session{}

	slog.Debug("Batch completed", "completed", len(completed))
	o.unlockAndPublish(
		BatchCompleted{Completed: completed, Recent: recent},
		SessionUpdated{Progress: Progress{}},
	)
}

func (o *Orchestrator) refreshRecent() []Item {
	var recent []Item
	err := retry.Do(
		func() error {
			var err error
			recent, err = o.conf.Backend.ListRecent(o.ctx)
			return err
		},
		retry.Context(o.ctx),
		retry.Attempts(refreshAttempts),
		retry.Delay(refreshRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
	)
	if err != nil {
		slog.Warn("Failed to refresh recent uploads", "error", err)
		return nil
	}
	return recent
}

// unlockAndPublish releases mu and delivers events while still holding the
// emit lock, so ordering matches the state changes.
func (o *Orchestrator) unlockAndPublish(events ...Event) {
	o.emitMu.Lock()
	o.mu.Unlock()
	defer o.emitMu.Unlock()
	for _, ev := range events {
		o.conf.Listener(ev)
	}
}

func (o *Orchestrator) publish(events ...Event) {
	if len(events) == 0 {
		return
	}
	o.emitMu.Lock()
	defer o.emitMu.Unlock()
	for _, ev := range events {
		o.conf.Listener(ev)
	}
}
