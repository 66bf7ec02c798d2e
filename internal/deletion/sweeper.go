// Package deletion removes archived source files once their retention window
// lapses. Deletion records live in the queue database; the sweeper runs once
// at daemon start and then on a fixed interval.
package deletion

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"reelvault/internal/config"
	"reelvault/internal/logging"
	"reelvault/internal/queue"
)

// Sweeper deletes expired source files and their records.
type Sweeper struct {
	store    *queue.Store
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewSweeper builds a sweeper from configuration.
func NewSweeper(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Sweeper {
	interval := time.Duration(cfg.Deletion.SweepIntervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Sweeper{
		store:    store,
		logger:   logger.With(logging.String(logging.FieldComponent, "deletion-sweeper")),
		interval: interval,
	}
}

// Start launches the sweep loop: one eager pass, then one per interval.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = true

	go func() {
		defer close(s.done)
		s.sweep(runCtx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.sweep(runCtx)
			}
		}
	}()
}

// Stop halts the loop and waits for any in-flight sweep.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.started = false
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.SweepOnce(ctx, time.Now())
	if err != nil {
		s.logger.Error("sweep failed", logging.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("sweep removed expired sources", logging.Int("removed", removed))
	}
}

// SweepOnce deletes every file whose retention lapsed before now. Records are
// removed even when the file is already gone, so repeated sweeps are
// idempotent. Returns the number of records cleared.
func (s *Sweeper) SweepOnce(ctx context.Context, now time.Time) (int, error) {
	due, err := s.store.DueDeletions(ctx, now)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, record := range due {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := os.Remove(record.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("could not remove source file",
				logging.String("path", record.Path),
				logging.Error(err))
			continue
		}
		if err := s.store.RemoveDeletion(ctx, record.Path); err != nil {
			s.logger.Warn("could not clear deletion record",
				logging.String("path", record.Path),
				logging.Error(err))
			continue
		}
		removed++
		s.logger.Info("removed expired source",
			logging.String("path", record.Path),
			logging.String("scheduled", record.DeleteAfter.Format(time.RFC3339)))
	}
	return removed, nil
}
