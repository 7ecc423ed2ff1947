package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/examdocs/internal/config"
	"github.com/kirillkom/examdocs/internal/core/ports"
	"github.com/kirillkom/examdocs/internal/core/usecase"
	"github.com/kirillkom/examdocs/internal/infrastructure/catalog"
	"github.com/kirillkom/examdocs/internal/infrastructure/classifier"
	"github.com/kirillkom/examdocs/internal/infrastructure/engine"
	"github.com/kirillkom/examdocs/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/examdocs/internal/infrastructure/extractor/doctext"
	"github.com/kirillkom/examdocs/internal/infrastructure/progress"
	"github.com/kirillkom/examdocs/internal/infrastructure/progress/natsbus"
	"github.com/kirillkom/examdocs/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/examdocs/internal/infrastructure/resilience"
	"github.com/kirillkom/examdocs/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/examdocs/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Catalog  *catalog.Catalog
	BatchUC  ports.BatchConverter
	Outcomes ports.OutcomeRepository
	Store    ports.OutputStore
	Reports  ports.ReportExporter

	ConvertMetrics *metrics.ConvertMetrics
	HTTPMetrics    *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	profiles, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	store, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init output storage: %w", err)
	}

	var closers []func()

	var outcomes ports.OutcomeRepository
	if cfg.PersistOutcomes {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewOutcomeRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		outcomes = repo
		closers = append(closers, func() { _ = db.Close() })
	}

	var sink ports.ProgressSink = progress.NopSink{}
	if cfg.ProgressEnabled {
		bus, err := natsbus.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsbus.Options{
			ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig(), logger),
		})
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("init progress bus: %w", err)
		}
		sink = bus
		closers = append(closers, bus.Close)
	}

	forceBaseline := strings.EqualFold(cfg.Engine, "baseline")
	decoder := engine.ProbeDecoder(forceBaseline, logger)
	converter := engine.New(decoder, logger)
	logger.Info("conversion engine selected", "kind", converter.Kind())

	convertMetrics := metrics.NewConvertMetrics("examdocs")

	fileUC := usecase.NewConvertFileUseCase(
		classifier.New(),
		profiles,
		converter,
		doctext.NewExtractor(),
		sink,
		logger,
	)
	batchUC := usecase.NewConvertBatchUseCase(fileUC, cfg.WorkerPoolSize, convertMetrics, logger)

	return &App{
		Config:         cfg,
		Logger:         logger,
		Catalog:        profiles,
		BatchUC:        batchUC,
		Outcomes:       outcomes,
		Store:          store,
		Reports:        xlsx.NewExporter(logger),
		ConvertMetrics: convertMetrics,
		HTTPMetrics:    metrics.NewHTTPServerMetrics("examdocs"),
		closeFn:        func() { closeAll(closers) },
	}, nil
}

func closeAll(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
