package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/fashion-etl/internal/etl"
)

var (
	ErrRunNotFound   = errors.New("run not found")
	ErrRunInProgress = errors.New("a run is already in progress")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Executor performs one pipeline run.
type Executor interface {
	Run(ctx context.Context, opts etl.RunOptions) (*etl.Report, error)
}

// Run is a snapshot of one pipeline run.
type Run struct {
	ID          string      `json:"id"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Error       string      `json:"error,omitempty"`
	Report      *etl.Report `json:"report,omitempty"`
}

// Manager executes runs in the background, one at a time, and keeps their
// history in memory.
type Manager struct {
	mu       sync.Mutex
	runs     map[string]*Run
	order    []string
	active   string
	executor Executor
	ctx      context.Context
	wg       sync.WaitGroup
	logger   *slog.Logger
}

// NewManager creates a manager whose runs are cancelled when ctx is done.
func NewManager(ctx context.Context, executor Executor, logger *slog.Logger) *Manager {
	return &Manager{
		runs:     make(map[string]*Run),
		executor: executor,
		ctx:      ctx,
		logger:   logger.With("component", "run_manager"),
	}
}

// Start schedules a new run and returns immediately.
func (m *Manager) Start() (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != "" {
		return nil, ErrRunInProgress
	}

	run := &Run{
		ID:        uuid.New().String(),
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	m.runs[run.ID] = run
	m.order = append(m.order, run.ID)
	m.active = run.ID

	m.wg.Add(1)
	go m.execute(run.ID)

	m.logger.Info("run created", "id", run.ID)
	snapshot := *run
	return &snapshot, nil
}

func (m *Manager) execute(id string) {
	defer m.wg.Done()

	m.update(id, func(r *Run) {
		now := time.Now()
		r.Status = StatusRunning
		r.StartedAt = &now
	})

	report, err := m.executor.Run(m.ctx, etl.RunOptions{RunID: id})

	// Terminal status and the active slot change together.
	m.update(id, func(r *Run) {
		now := time.Now()
		r.CompletedAt = &now
		r.Report = report
		m.active = ""
		if err != nil {
			r.Status = StatusFailed
			r.Error = err.Error()
			return
		}
		r.Status = StatusCompleted
	})

	if err != nil {
		m.logger.Error("run failed", "id", id, "error", err)
		return
	}
	m.logger.Info("run completed", "id", id)
}

func (m *Manager) update(id string, fn func(*Run)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.runs[id]; ok {
		fn(r)
	}
}

// Get returns a snapshot of the run.
func (m *Manager) Get(id string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	snapshot := *r
	return &snapshot, nil
}

// List returns every run, newest first.
func (m *Manager) List() []*Run {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Run, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		snapshot := *m.runs[m.order[i]]
		out = append(out, &snapshot)
	}
	return out
}

// Wait blocks until every started run has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}
