package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"reelvault/internal/config"
	"reelvault/internal/logging"
	"reelvault/internal/media/ffprobe"
	"reelvault/internal/notifications"
	"reelvault/internal/queue"
	"reelvault/internal/retry"
	"reelvault/internal/services/recordstore"
)

// SnapshotListener receives the full queue after every state change.
type SnapshotListener func(items []*queue.Item)

// Manager drains the queue with a single background goroutine.
type Manager struct {
	cfg        *config.Config
	store      *queue.Store
	logger     *slog.Logger
	notifier   notifications.Service
	records    recordstore.Client
	primary    Uploader
	backup     Uploader
	compressor Compressor
	transcrib  Transcriber
	probe      ProbeFunc

	pollInterval time.Duration
	retryPolicy  retry.Policy
	kick         chan struct{}

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	snapshot SnapshotListener

	queueActive bool
	queueStart  time.Time
	processed   int
	failed      int
}

// Deps bundles the manager's collaborators. Backup may be nil when the
// secondary destination is disabled.
type Deps struct {
	Store       *queue.Store
	Notifier    notifications.Service
	RecordStore recordstore.Client
	Primary     Uploader
	Backup      Uploader
	Compressor  Compressor
	Transcriber Transcriber
	Probe       ProbeFunc
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, deps Deps, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	probe := deps.Probe
	if probe == nil {
		binary := cfg.FFprobeBinary()
		probe = func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, binary, path)
		}
	}
	pollInterval := time.Duration(cfg.Workflow.QueuePollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Manager{
		cfg:          cfg,
		store:        deps.Store,
		logger:       logger.With(logging.String(logging.FieldComponent, "workflow")),
		notifier:     deps.Notifier,
		records:      deps.RecordStore,
		primary:      deps.Primary,
		backup:       deps.Backup,
		compressor:   deps.Compressor,
		transcrib:    deps.Transcriber,
		probe:        probe,
		pollInterval: pollInterval,
		retryPolicy: retry.Policy{
			Attempts: cfg.Workflow.RetryAttempts,
			Delay:    time.Duration(cfg.Workflow.RetryDelaySeconds) * time.Second,
		},
		kick: make(chan struct{}, 1),
	}
}

// SetSnapshotListener registers the callback invoked with the full queue
// after every state change.
func (m *Manager) SetSnapshotListener(listener SnapshotListener) {
	m.mu.Lock()
	m.snapshot = listener
	m.mu.Unlock()
}

// Kick wakes the processing loop without waiting for the poll interval.
func (m *Manager) Kick() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// Start begins background processing. Items stranded in a processing status
// by an unclean shutdown are reset to waiting first.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	if reset, err := m.store.ResetStuckProcessing(runCtx); err != nil {
		m.logger.Warn("could not reset stuck items", logging.Error(err))
	} else if reset > 0 {
		m.logger.Info("reset stuck items to waiting", logging.Int64("count", reset))
	}

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for the in-flight item.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// LastError returns the most recent loop-level error.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := m.store.NextWaiting(ctx)
		if err != nil {
			m.handleFetchError(ctx, err)
			continue
		}
		if item == nil {
			m.noteQueueDrained(ctx)
			m.waitForWork(ctx)
			continue
		}

		m.noteQueueActive()
		if err := m.processItem(ctx, item); err != nil {
			// Shutdown kills in-flight children, which surfaces as
			// "signal: killed" rather than context.Canceled. The item
			// stays in its processing status and is reset to waiting
			// on the next start.
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			m.markFailed(ctx, item, err)
		} else {
			m.mu.Lock()
			m.processed++
			m.mu.Unlock()
		}
	}
}

func (m *Manager) handleFetchError(ctx context.Context, err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
	m.logger.Error("failed to fetch next queue item",
		logging.Error(err),
		logging.String(logging.FieldEventType, "queue_fetch_failed"),
		logging.String(logging.FieldErrorHint, "check queue database access"))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second):
	}
}

func (m *Manager) waitForWork(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-m.kick:
	case <-time.After(m.pollInterval):
	}
}

func (m *Manager) noteQueueActive() {
	m.mu.Lock()
	if !m.queueActive {
		m.queueActive = true
		m.queueStart = time.Now()
		m.processed = 0
		m.failed = 0
	}
	m.mu.Unlock()
}

func (m *Manager) noteQueueDrained(ctx context.Context) {
	m.mu.Lock()
	active := m.queueActive
	processed := m.processed
	failed := m.failed
	start := m.queueStart
	m.queueActive = false
	m.mu.Unlock()

	if !active || m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyQueueCompleted(ctx, processed, failed, time.Since(start)); err != nil {
		m.logger.Warn("queue notification failed", logging.Error(err))
	}
}

func (m *Manager) markFailed(ctx context.Context, item *queue.Item, cause error) {
	m.mu.Lock()
	m.failed++
	m.lastErr = cause
	m.mu.Unlock()

	item.SetFailed(cause.Error())
	if err := m.store.Update(ctx, item); err != nil {
		m.logger.Error("could not persist failure",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err))
	}
	m.publishSnapshot(ctx)

	m.logger.Error("archive failed",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("source", item.SourceName),
		logging.Error(cause),
		logging.String(logging.FieldEventType, "archive_failed"))

	if m.notifier != nil {
		if err := m.notifier.NotifyArchiveFailed(ctx, item.OutputName, cause); err != nil {
			m.logger.Warn("failure notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) publishSnapshot(ctx context.Context) {
	m.mu.RLock()
	listener := m.snapshot
	m.mu.RUnlock()
	if listener == nil {
		return
	}
	items, err := m.store.List(ctx)
	if err != nil {
		m.logger.Warn("could not list queue for snapshot", logging.Error(err))
		return
	}
	listener(items)
}
