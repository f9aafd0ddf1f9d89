package backend

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dropzone/dropzone/internal/clock"
	"github.com/dropzone/dropzone/internal/upload"
	"github.com/google/uuid"
)

// RecentWindow is how far back ListRecent looks.
const RecentWindow = 24 * time.Hour

// Options configures a Memory store. Zero values select the defaults.
type Options struct {
	Clock      clock.Clock
	Rand       Randomizer
	Simulation *Simulation
	Latency    *Latency
	Records    []upload.Item
}

// Memory is an in-process upload service. Transfers are simulated and the
// records live only as long as the store.
type Memory struct {
	clock   clock.Clock
	sim     Simulation
	latency Latency

	mu      sync.Mutex
	rand    Randomizer
	records []upload.Item // newest first
}

var _ upload.Backend = (*Memory)(nil)

// NewMemory creates a store holding a copy of opts.Records.
func NewMemory(opts Options) *Memory {
	m := &Memory{
		clock:   opts.Clock,
		rand:    opts.Rand,
		sim:     DefaultSimulation(),
		latency: DefaultLatency(),
	}
	if m.clock == nil {
		m.clock = clock.Real{}
	}
	if m.rand == nil {
		m.rand = mathRand{}
	}
	if opts.Simulation != nil {
		m.sim = *opts.Simulation
	}
	if opts.Latency != nil {
		m.latency = *opts.Latency
	}
	m.records = slices.Clone(opts.Records)
	return m
}

func (m *Memory) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	return m.clock.Sleep(ctx, d)
}

func (m *Memory) roll() plan {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := plan{interval: between(m.rand, m.sim.MinStep, m.sim.MaxStep)}
	if m.rand.Float64() < m.sim.FailureRate {
		p.fails = true
		p.failAt = between(m.rand, m.sim.MinFailAfter, m.sim.MaxFailAfter)
	}
	return p
}

// Upload simulates a transfer, reporting progress after every tick. On
// success the record is stored as completed and returned.
func (m *Memory) Upload(ctx context.Context, req upload.Request, onProgress upload.ProgressFunc) (*upload.Item, error) {
	if err := m.wait(ctx, m.sim.InitialDelay); err != nil {
		return nil, err
	}

	p := m.roll()
	slog.Debug("Simulating upload", "id", req.ID, "name", req.Name, "interval", p.interval, "fails", p.fails, "failAt", p.failAt)

	var elapsed time.Duration
	for step := 1; step <= m.sim.Steps; step++ {
		next := time.Duration(step) * p.interval
		if p.fails && p.failAt <= next {
			if err := m.wait(ctx, p.failAt-elapsed); err != nil {
				return nil, err
			}
			slog.Debug("Simulated upload failure", "id", req.ID, "step", step)
			return nil, ErrNetwork
		}

		if err := m.wait(ctx, next-elapsed); err != nil {
			return nil, err
		}
		elapsed = next

		if onProgress != nil {
			onProgress(min(float64(step)/float64(m.sim.Steps)*100, 100))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// A cancelled attempt never lands in the store.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := m.clock.Now()
	record := upload.Item{
		ID:         id,
		Name:       req.Name,
		Size:       req.Size,
		MIMEType:   req.MIMEType,
		Status:     upload.StatusCompleted,
		Progress:   100,
		UploadedAt: &now,
	}
	m.records = slices.DeleteFunc(m.records, func(it upload.Item) bool { return it.ID == id })
	m.records = slices.Insert(m.records, 0, record)

	return &record, nil
}

// ListRecent returns completed records from the last 24 hours, newest
// first.
func (m *Memory) ListRecent(ctx context.Context) ([]upload.Item, error) {
	if err := m.wait(ctx, m.latency.List); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.clock.Now().Add(-RecentWindow)
	var recent []upload.Item
	for _, it := range m.records {
		if it.Status == upload.StatusCompleted && it.UploadedAt != nil && it.UploadedAt.After(cutoff) {
			recent = append(recent, it)
		}
	}
	slices.SortStableFunc(recent, func(a, b upload.Item) int {
		return b.UploadedAt.Compare(*a.UploadedAt)
	})
	return recent, nil
}

func (m *Memory) Pause(ctx context.Context, id string) (*upload.Item, error) {
	return m.setStatus(ctx, m.latency.Pause, id, upload.StatusPaused)
}

func (m *Memory) Resume(ctx context.Context, id string) (*upload.Item, error) {
	return m.setStatus(ctx, m.latency.Resume, id, upload.StatusUploading)
}

// setStatus only relabels a stored record. In-flight transfers are not
// records yet, so pausing one reports ErrNotFound.
func (m *Memory) setStatus(ctx context.Context, latency time.Duration, id string, status upload.Status) (*upload.Item, error) {
	if err := m.wait(ctx, latency); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", upload.ErrNotFound, id)
	}
	m.records[i].Status = status
	it := m.records[i]
	return &it, nil
}

// Cancel drops the record if there is one.
func (m *Memory) Cancel(ctx context.Context, id string) error {
	return m.remove(ctx, m.latency.Cancel, id)
}

// Delete drops the record if there is one.
func (m *Memory) Delete(ctx context.Context, id string) error {
	return m.remove(ctx, m.latency.Delete, id)
}

func (m *Memory) remove(ctx context.Context, latency time.Duration, id string) error {
	if err := m.wait(ctx, latency); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = slices.DeleteFunc(m.records, func(it upload.Item) bool { return it.ID == id })
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*upload.Item, error) {
	if err := m.wait(ctx, m.latency.Get); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", upload.ErrNotFound, id)
	}
	it := m.records[i]
	return &it, nil
}

// Stats summarises every stored record. The success rate is the share of
// completed records, in percent.
func (m *Memory) Stats(ctx context.Context) (upload.Stats, error) {
	if err := m.wait(ctx, m.latency.Stats); err != nil {
		return upload.Stats{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var s upload.Stats
	for _, it := range m.records {
		if it.Status != upload.StatusCompleted {
			continue
		}
		s.TotalUploads++
		s.TotalSize += it.Size
	}
	if len(m.records) > 0 {
		s.SuccessRate = float64(s.TotalUploads) / float64(len(m.records)) * 100
	}
	if s.TotalUploads > 0 {
		s.AverageSize = float64(s.TotalSize) / float64(s.TotalUploads)
	}
	return s, nil
}

func (m *Memory) indexLocked(id string) int {
	return slices.IndexFunc(m.records, func(it upload.Item) bool { return it.ID == id })
}
