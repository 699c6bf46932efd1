package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"BillSync/internal/config"
	"BillSync/internal/domain"
	"BillSync/internal/httpapi"
	"BillSync/internal/infrastructure/airtable"
	"BillSync/internal/infrastructure/openstates"
	"BillSync/internal/infrastructure/scheduler"
	"BillSync/internal/infrastructure/storage"
	"BillSync/internal/logging"
	"BillSync/internal/normalize"
	"BillSync/internal/ports"
	"BillSync/internal/reconcile"
	"BillSync/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configuration to the sync pipeline and its drivers.
type Application struct {
	cfg       config.Config
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	db        *sql.DB
	logger    *slog.Logger
}

// New opens the configured backends and builds the pipeline.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	a := &Application{cfg: cfg, logger: baseLogger.With("component", "app")}

	if cfg.Store.Backend == config.BackendSQL || cfg.Sync.Watermarks {
		db, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.db = db
	}

	tables := usecase.Tables{
		Bills:       cfg.Store.Tables.Bills,
		Legislators: cfg.Store.Tables.Legislators,
		Subjects:    cfg.Store.Tables.Subjects,
		States:      cfg.Store.Tables.States,
	}

	var store ports.RecordStore
	switch cfg.Store.Backend {
	case config.BackendSQL:
		store = storage.NewRecordStore(a.db, cfg.Database.Driver, tables.KeyFields())
	default:
		store = airtable.NewStore(cfg.Store.Airtable, nil, baseLogger.With("component", "store.airtable"))
	}

	var watermarks ports.WatermarkStore
	if cfg.Sync.Watermarks {
		watermarks = storage.NewWatermarkStore(a.db, cfg.Database.Driver)
	}

	source := openstates.NewClient(cfg.Source, nil, baseLogger.With("component", "source.openstates"))

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Reconciler: reconcile.New(store, baseLogger.With("component", "reconciler")),
		Watermarks: watermarks,
		Subjects:   normalize.NewSubjectCanonicalizer(cfg.Subjects.Overrides),
		Tables:     tables,
		Options: usecase.Options{
			DefaultLimit: cfg.Sync.DefaultLimit,
			BatchSize:    cfg.Sync.BatchSize,
			BatchDelay:   cfg.Sync.BatchDelay,
			States:       cfg.Sync.States,
		},
		Logger: baseLogger.With("component", "pipeline"),
	})

	if cfg.Scheduler.Enabled {
		driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval, false)
		a.scheduler = usecase.NewScheduler(driver, a.pipeline)
	}
	return a, nil
}

func validate(cfg config.Config) error {
	var errs []error
	if cfg.Source.APIKey == "" {
		errs = append(errs, errors.New("source api key is required (OPENSTATES_API_KEY)"))
	}
	switch cfg.Store.Backend {
	case config.BackendAirtable:
		if cfg.Store.Airtable.APIKey == "" || cfg.Store.Airtable.BaseID == "" {
			errs = append(errs, errors.New("airtable backend needs AIRTABLE_API_KEY and AIRTABLE_BASE_ID"))
		}
	case config.BackendSQL:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", cfg.Store.Backend))
	}
	if (cfg.Store.Backend == config.BackendSQL || cfg.Sync.Watermarks) && cfg.Database.DSN == "" {
		errs = append(errs, errors.New("database dsn is required for the sql backend and watermarks"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SyncStates runs a one-shot sync of the given jurisdictions.
func (a *Application) SyncStates(ctx context.Context, codes []string, limit int, full bool) domain.BatchSummary {
	return a.pipeline.SyncStates(ctx, codes, limit, full)
}

// SyncScheduled runs the batched walk over the configured state list once.
func (a *Application) SyncScheduled(ctx context.Context) domain.ScheduledSummary {
	return a.pipeline.SyncScheduled(ctx)
}

// DefaultLimit is the bill limit used when a caller gives none.
func (a *Application) DefaultLimit() int {
	return a.pipeline.DefaultLimit()
}

// Serve runs the HTTP triggers and, when enabled, the interval scheduler until
// ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	router := httpapi.NewRouter(ctx, a.pipeline, a.cfg.Auth, a.logger.With("component", "http"))
	server := httpapi.NewServer(a.cfg.HTTP, router, a.logger.With("component", "http"))

	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if a.scheduler != nil {
			errs = append(errs, a.scheduler.Stop(shutdownCtx))
		}
		errs = append(errs, server.Shutdown(shutdownCtx))
		return errors.Join(errs...)
	})
	return g.Wait()
}

// Close releases the database handle, if one was opened.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
