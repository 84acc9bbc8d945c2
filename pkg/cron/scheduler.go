// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nuttakit-v/transcript-audit/internal/domain/session"
	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript/service"
	"github.com/nuttakit-v/transcript-audit/pkg/storage"
)

// Scheduler runs the retention cleanup on a fixed schedule. Analyses expire
// from the in-memory cache lazily; the sweep here reclaims the memory of
// entries nobody asked for again, and prunes the upload directories that
// outlived their cached analysis.
type Scheduler struct {
	cron      *cron.Cron
	cache     *session.Cache[*service.Analysis]
	store     storage.Storage
	retention time.Duration
	logger    *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(cache *session.Cache[*service.Analysis], store storage.Storage, retention time.Duration, logger *slog.Logger) *Scheduler {
	// Standard 5-field cron format, seconds disabled
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:      c,
		cache:     cache,
		store:     store,
		retention: retention,
		logger:    logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Retention cleanup: runs daily at 2:00 AM
	_, err := s.cron.AddFunc("0 2 * * *", s.cleanup)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the retention cleanup (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.cleanup()
}

func (s *Scheduler) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	swept := s.cache.Sweep()

	pruned, err := s.store.Prune(ctx, s.retention)
	if err != nil {
		s.logger.Error("failed to prune stored uploads", slog.Any("error", err))
	}

	s.logger.Info("retention cleanup completed",
		slog.Int("analyses_swept", swept),
		slog.Int("uploads_pruned", pruned),
	)
}
