package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nuttakit-v/transcript-audit/internal/domain/session"
	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript/handler"
	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript/service"
	"github.com/nuttakit-v/transcript-audit/pkg/config"
	"github.com/nuttakit-v/transcript-audit/pkg/cron"
	"github.com/nuttakit-v/transcript-audit/pkg/metrics"
	"github.com/nuttakit-v/transcript-audit/pkg/storage"
)

// analysisTTL bounds how long a processed transcript stays downloadable
// before the client has to re-upload.
const analysisTTL = 24 * time.Hour

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	FileStorage storage.Storage
	Cache       *session.Cache[*service.Analysis]

	AnalysisService *service.AnalysisService
	Scheduler       *cron.Scheduler

	TranscriptHandler *handler.TranscriptHandler
}

// InitDependencies wires the application graph
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := storage.NewLocalStorage(cfg.Storage.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	m := metrics.New()
	cache := session.New[*service.Analysis](analysisTTL)

	analysisSvc := service.NewAnalysisService(store, cache, m, cfg, logger)

	retention := time.Duration(cfg.Storage.RetentionDays) * 24 * time.Hour

	return &Dependencies{
		Config:            cfg,
		Logger:            logger,
		Metrics:           m,
		FileStorage:       store,
		Cache:             cache,
		AnalysisService:   analysisSvc,
		Scheduler:         cron.NewScheduler(cache, store, retention, logger),
		TranscriptHandler: handler.NewTranscriptHandler(analysisSvc, cfg.Server.MaxUploadBytes, logger),
	}, nil
}
