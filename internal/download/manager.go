package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/handiism/tubetunes/internal/model"
	"golang.org/x/sync/errgroup"
)

// Default monitor intervals.
const (
	DefaultTimeoutCheckInterval = 10 * time.Second
	DefaultStatisticsInterval   = time.Second
)

const persistTimeout = 30 * time.Second

// AdmissionOutcome tells what AddTask did with an identifier.
type AdmissionOutcome int

const (
	// Admitted means a new Pending task was created.
	Admitted AdmissionOutcome = iota

	// Duplicate means an unfinished task for the identifier already
	// existed; its id is returned instead of creating a new one.
	Duplicate

	// Skipped means the catalog already holds the identifier. No task was
	// created and no event was emitted.
	Skipped
)

// String returns the lowercase outcome name.
func (o AdmissionOutcome) String() string {
	switch o {
	case Admitted:
		return "admitted"
	case Duplicate:
		return "duplicate"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Admission is the result of AddTask.
type Admission struct {
	TaskID  string
	Outcome AdmissionOutcome
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore sets the catalog used for admission checks and persistence.
func WithStore(s Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithPostProcessor appends a post-processor run after each successful download.
func WithPostProcessor(p PostProcessor) Option {
	return func(m *Manager) { m.postProcessors = append(m.postProcessors, p) }
}

// WithLogger sets the structured logger. slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithIdentifierNormalizer maps identifiers to a canonical form before the
// duplicate and catalog checks, so different URLs of one video match.
func WithIdentifierNormalizer(fn func(string) string) Option {
	return func(m *Manager) { m.normalize = fn }
}

// WithTimeoutCheckInterval sets how often running tasks are checked
// against the task timeout.
func WithTimeoutCheckInterval(d time.Duration) Option {
	return func(m *Manager) { m.timeoutInterval = d }
}

// WithStatisticsInterval sets how often statisticsUpdated is emitted.
func WithStatisticsInterval(d time.Duration) Option {
	return func(m *Manager) { m.statsInterval = d }
}

// WithObserver registers fn to see every event synchronously, before bus
// subscribers and without drops. fn may be called concurrently and while
// the Manager holds its lock, so it must be quick and must not call back
// into the Manager.
func WithObserver(fn func(Event)) Option {
	return func(m *Manager) { m.observers = append(m.observers, fn) }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager coordinates download tasks.
//
// Any number of tasks can be added. At most Config.MaxConcurrent of them
// run at once, the rest wait in a FIFO queue. Failed and timed out tasks
// are retried up to Config.MaxRetries times, each retry going to the back
// of the queue after Config.RetryDelay.
//
// Nothing is dispatched until Run is called. All methods are safe for
// concurrent use.
//
// Example:
//
//	m, err := download.NewManager(download.DefaultConfig("/music"), downloader,
//	    download.WithStore(catalog))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	events, unsubscribe := m.Subscribe(64)
//	defer unsubscribe()
//	go m.Run(ctx)
//
//	m.AddTask(ctx, "dQw4w9WgXcQ", opts)
//	for e := range events {
//	    fmt.Println(e.Describe())
//	}
type Manager struct {
	downloader     Downloader
	store          Store
	postProcessors []PostProcessor
	normalize      func(string) string
	logger         *slog.Logger
	now            func() time.Time

	timeoutInterval time.Duration
	statsInterval   time.Duration

	registry  *Registry
	queue     *Queue
	events    *Bus
	observers []func(Event)

	cfgMu sync.RWMutex
	cfg   Config

	// mu guards the fields below and serializes every status transition
	// that involves the queue, workers or retry timers.
	mu       sync.Mutex
	workers  map[string]*Worker
	retries  map[string]*time.Timer
	paused   bool
	busy     bool
	running  bool
	stopping bool

	wake chan struct{}
	wg   sync.WaitGroup
}

// NewManager creates a Manager. cfg must pass Validate.
func NewManager(cfg Config, downloader Downloader, opts ...Option) (*Manager, error) {
	if downloader == nil {
		return nil, errors.New("downloader is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		downloader:      downloader,
		logger:          slog.Default(),
		now:             time.Now,
		timeoutInterval: DefaultTimeoutCheckInterval,
		statsInterval:   DefaultStatisticsInterval,
		registry:        NewRegistry(),
		queue:           NewQueue(),
		events:          NewBus(),
		cfg:             cfg,
		workers:         make(map[string]*Worker),
		retries:         make(map[string]*time.Timer),
		wake:            make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.timeoutInterval <= 0 || m.statsInterval <= 0 {
		return nil, fmt.Errorf("%w: monitor intervals must be positive", ErrInvalidConfig)
	}
	return m, nil
}

// Run dispatches tasks and runs the timeout and statistics monitors until
// ctx is cancelled. Workers still running at that point are stopped with
// ErrShutdown and waited for; their tasks go back to the queue as Pending
// for a later Run.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.running = true
	m.stopping = false
	m.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.dispatchLoop(gctx) })
	g.Go(func() error { return m.timeoutLoop(gctx) })
	g.Go(func() error { return m.statisticsLoop(gctx) })

	m.kick()
	err := g.Wait()
	m.shutdown()
	return err
}

// shutdown cancels running workers, stops retry timers and waits.
func (m *Manager) shutdown() {
	m.mu.Lock()
	m.stopping = true
	for _, w := range m.workers {
		w.Cancel(ErrShutdown)
	}
	for id, timer := range m.retries {
		timer.Stop()
		delete(m.retries, id)
		// The task stays Retrying; put it back so a later Run picks it up.
		m.requeueLocked(id)
	}
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
}

// AddTask admits identifier for download.
//
// An unfinished task for the same identifier is returned as Duplicate. An
// identifier already in the catalog is Skipped. Otherwise a new Pending
// task is queued and taskAdded is emitted. Catalog lookup errors are
// logged and do not prevent admission.
func (m *Manager) AddTask(ctx context.Context, identifier string, opts model.Options) (Admission, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Admission{}, ErrEmptyIdentifier
	}
	if m.normalize != nil {
		identifier = m.normalize(identifier)
	}

	if existing, ok := m.registry.FindActive(identifier); ok {
		return Admission{TaskID: existing.ID, Outcome: Duplicate}, nil
	}

	if m.store != nil {
		exists, err := m.store.ExistsByIdentifier(ctx, identifier)
		switch {
		case err != nil:
			m.logger.Warn("catalog lookup failed", "identifier", identifier, "error", err)
		case exists:
			m.logger.Debug("identifier already in catalog", "identifier", identifier)
			return Admission{Outcome: Skipped}, nil
		}
	}

	task := model.Task{
		ID:         newTaskID(),
		Identifier: identifier,
		Options:    opts,
		Status:     model.StatusPending,
		CreatedAt:  m.now(),
	}

	m.mu.Lock()
	existing, inserted := m.registry.InsertUnlessActive(task)
	if !inserted {
		m.mu.Unlock()
		return Admission{TaskID: existing.ID, Outcome: Duplicate}, nil
	}
	m.queue.Push(task.ID)
	m.busy = true
	m.publish(EventTaskAdded, task)
	m.mu.Unlock()

	m.logger.Info("task added", "task_id", task.ID, "identifier", identifier)
	m.kick()
	return Admission{TaskID: task.ID, Outcome: Admitted}, nil
}

// AddBatchTasks adds every identifier in order and returns the ids of the
// newly created tasks. Skipped, duplicate and invalid identifiers are left
// out. The batch is not atomic.
func (m *Manager) AddBatchTasks(ctx context.Context, identifiers []string, opts model.Options) []string {
	var ids []string
	for _, identifier := range identifiers {
		adm, err := m.AddTask(ctx, identifier, opts)
		if err != nil {
			m.logger.Debug("identifier rejected", "identifier", identifier, "error", err)
			continue
		}
		if adm.Outcome == Admitted {
			ids = append(ids, adm.TaskID)
		}
	}
	return ids
}

// CancelTask cancels an unfinished task. Pending and retrying tasks become
// Cancelled at once; a running task is asked to stop and becomes Cancelled
// when its worker returns. It reports false for unknown or finished tasks.
func (m *Manager) CancelTask(id string) bool {
	m.mu.Lock()
	defer m.kick()
	defer m.mu.Unlock()
	return m.cancelLocked(id)
}

// CancelAllTasks cancels every unfinished task and returns how many were
// cancelled or asked to stop. Nothing is dispatched while it runs.
func (m *Manager) CancelAllTasks() int {
	m.mu.Lock()
	defer m.kick()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.registry.All() {
		if t.Status.IsTerminal() {
			continue
		}
		if m.cancelLocked(t.ID) {
			n++
		}
	}
	if n > 0 {
		m.logger.Info("all tasks cancelled", "count", n)
	}
	return n
}

func (m *Manager) cancelLocked(id string) bool {
	task, err := m.registry.Get(id)
	if err != nil {
		return false
	}

	switch task.Status {
	case model.StatusPending:
		m.queue.Remove(id)
	case model.StatusRetrying:
		if timer, ok := m.retries[id]; ok {
			timer.Stop()
			delete(m.retries, id)
		}
		// A timer that already fired may have requeued it.
		m.queue.Remove(id)
	case model.StatusRunning:
		if w, ok := m.workers[id]; ok {
			w.Cancel(ErrCancelledByUser)
			m.logger.Info("cancellation requested", "task_id", id)
			return true
		}
		return false
	default:
		return false
	}

	now := m.now()
	task, err = m.registry.Update(id, func(t *model.Task) error {
		t.Status = model.StatusCancelled
		t.FinishedAt = now
		return nil
	})
	if err != nil {
		return false
	}
	m.publish(EventTaskCancelled, task)
	m.logger.Info("task cancelled", "task_id", id)
	return true
}

// Pause stops dispatching new tasks. Running tasks continue and the queue
// is kept.
func (m *Manager) Pause() {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
	m.logger.Info("dispatch paused")
}

// Resume restarts dispatching after Pause.
func (m *Manager) Resume() {
	m.mu.Lock()
	m.paused = false
	m.mu.Unlock()
	m.logger.Info("dispatch resumed")
	m.kick()
}

// Paused reports whether dispatching is paused.
func (m *Manager) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// SetConfig replaces the configuration. An invalid cfg is rejected with
// an error wrapping ErrInvalidConfig and the previous one stays in force.
func (m *Manager) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.cfgMu.Lock()
	m.cfg = cfg
	m.cfgMu.Unlock()

	m.logger.Info("config updated",
		"max_concurrent", cfg.MaxConcurrent,
		"max_retries", cfg.MaxRetries,
		"retry_delay", cfg.RetryDelay,
		"task_timeout", cfg.TaskTimeout,
		"auto_retry", cfg.AutoRetry)
	m.kick()
	return nil
}

// Config returns the current configuration.
func (m *Manager) Config() Config {
	m.cfgMu.RLock()
	defer m.cfgMu.RUnlock()
	return m.cfg
}

// GetTask returns a snapshot of the task with the given id.
func (m *Manager) GetTask(id string) (model.Task, error) {
	return m.registry.Get(id)
}

// GetAllTasks returns snapshots of all tasks in the order they were added.
func (m *Manager) GetAllTasks() []model.Task {
	return m.registry.All()
}

// GetTasksByStatus returns snapshots of the tasks in any of the statuses.
func (m *Manager) GetTasksByStatus(statuses ...model.TaskStatus) []model.Task {
	return m.registry.AllByStatus(statuses...)
}

// GetStatistics computes a fresh statistics snapshot.
func (m *Manager) GetStatistics() Statistics {
	return ComputeStatistics(m.registry.All(), m.now())
}

// ClearFinished forgets all finished tasks and returns how many were removed.
func (m *Manager) ClearFinished() int {
	return m.registry.RemoveFinished()
}

// Subscribe returns a channel receiving every event published from now on.
// Events are dropped for a subscriber whose buffer is full. Call the
// returned function to unsubscribe.
func (m *Manager) Subscribe(buffer int) (<-chan Event, func()) {
	return m.events.Subscribe(buffer)
}

// handleProgress records worker progress. Reports for tasks that are no
// longer running are dropped.
func (m *Manager) handleProgress(id string, p Progress) {
	fraction := p.Fraction
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	task, err := m.registry.Update(id, func(t *model.Task) error {
		if t.Status != model.StatusRunning {
			return errNotRunning
		}
		t.Progress = fraction
		if p.Message != "" {
			t.Message = p.Message
		}
		return nil
	})
	if err != nil {
		return
	}
	m.emit(Event{
		Type:     EventTaskProgress,
		TaskID:   id,
		Task:     task,
		Progress: task.Progress,
		Message:  task.Message,
		Time:     m.now(),
	})
}

// finish applies a worker outcome to its task.
func (m *Manager) finish(out outcome) {
	if out.err == nil && m.store != nil {
		m.persist(out.taskID, *out.artifact)
	}

	cfg := m.Config()

	m.mu.Lock()
	defer m.kick()
	defer m.mu.Unlock()

	delete(m.workers, out.taskID)

	now := m.now()
	task, err := m.registry.Update(out.taskID, func(t *model.Task) error {
		switch {
		case out.err == nil:
			t.Status = model.StatusCompleted
			t.Progress = 1
			t.Artifact = out.artifact
			t.ErrorMessage = ""
			t.FinishedAt = now
		case out.shutdown:
			t.Status = model.StatusPending
			t.Progress = 0
			t.Message = ""
		case out.cancelled:
			t.Status = model.StatusCancelled
			t.FinishedAt = now
		default:
			t.Status = model.StatusFailed
			t.ErrorMessage = out.err.Error()
			if out.timedOut {
				t.Status = model.StatusTimeout
				t.ErrorMessage = fmt.Sprintf("timed out after %s", cfg.TaskTimeout)
			}
			if !m.stopping && retryEligible(cfg, *t) {
				t.RetryCount++
				t.Status = model.StatusRetrying
			} else {
				t.Status = model.StatusFailed
				t.FinishedAt = now
			}
		}
		return nil
	})
	if err != nil {
		m.logger.Error("finished task vanished", "task_id", out.taskID, "error", err)
		return
	}

	switch task.Status {
	case model.StatusCompleted:
		m.logger.Info("task completed", "task_id", task.ID, "path", task.Artifact.Path)
		m.publish(EventTaskCompleted, task)
	case model.StatusPending:
		// Interrupted by shutdown; the next Run starts it again.
		m.queue.Push(task.ID)
		m.logger.Info("task requeued after shutdown", "task_id", task.ID)
	case model.StatusCancelled:
		m.logger.Info("task cancelled", "task_id", task.ID, "cause", out.err)
		m.publish(EventTaskCancelled, task)
	case model.StatusRetrying:
		m.logger.Warn("task failed, retrying",
			"task_id", task.ID, "attempt", task.RetryCount, "delay", cfg.RetryDelay, "error", task.ErrorMessage)
		m.scheduleRetryLocked(task.ID, cfg.RetryDelay)
		m.publish(EventTaskRetrying, task)
	case model.StatusFailed:
		m.logger.Error("task failed", "task_id", task.ID, "retries", task.RetryCount, "error", task.ErrorMessage)
		m.publish(EventTaskFailed, task)
	}

	if cfg.MaxFinishedTasks > 0 {
		m.registry.EvictFinished(cfg.MaxFinishedTasks)
	}
}

// persist commits an artifact to the store. Failures are logged and do
// not change the task outcome.
func (m *Manager) persist(taskID string, artifact model.Artifact) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := m.store.Save(ctx, artifact); err != nil {
		m.logger.Error("failed to persist artifact",
			"task_id", taskID, "identifier", artifact.Identifier, "error", err)
	}
}

// publish emits a task event. Callers hold m.mu so events of one task
// leave in transition order.
func (m *Manager) publish(typ EventType, task model.Task) {
	m.emit(Event{
		Type:     typ,
		TaskID:   task.ID,
		Task:     task,
		Progress: task.Progress,
		Message:  task.Message,
		Time:     m.now(),
	})
}

func (m *Manager) emit(e Event) {
	for _, fn := range m.observers {
		fn(e)
	}
	m.events.Publish(e)
}

var errNotRunning = errors.New("task not running")

func newTaskID() string {
	return "task-" + uuid.NewString()
}
