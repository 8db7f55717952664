package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/blakecrosley/941analytics/internal/config"
	"github.com/blakecrosley/941analytics/internal/database"
	"github.com/blakecrosley/941analytics/internal/funnels"
	"github.com/blakecrosley/941analytics/internal/geo"
	"github.com/blakecrosley/941analytics/internal/goals"
	"github.com/blakecrosley/941analytics/internal/jobs"
	"github.com/blakecrosley/941analytics/internal/logging"
	"github.com/blakecrosley/941analytics/internal/sites"
)

// Application owns every long-lived component of the analytics server.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	DBManager *database.Manager
	Fiber     *fiber.App
	Scheduler *jobs.Scheduler
}

// NewApp builds the application from the ambient configuration. The database
// is opened but not migrated; callers run Migrate before StartAsync.
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	logger := logging.NewLogger(cfg)

	dbManager := database.NewManager(cfg, logger)
	if _, err := dbManager.Connect(); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	geo.InitLogger(logger)

	fiberApp := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: cfg.IsProduction(),
	})
	MountRoutes(fiberApp, dbManager.GetConnection(), logger)

	return &Application{
		Config:    cfg,
		Logger:    logger,
		DBManager: dbManager,
		Fiber:     fiberApp,
		Scheduler: jobs.NewScheduler(dbManager, logger, cfg),
	}, nil
}

// Migrate runs schema migrations and seeds preset funnels and goals for
// every registered site.
func (a *Application) Migrate() error {
	if err := a.DBManager.Migrate(); err != nil {
		return err
	}

	db := a.DBManager.GetConnection()
	all, err := sites.List(db)
	if err != nil {
		return err
	}
	for _, site := range all {
		if err := funnels.EnsurePresets(db, site.ID); err != nil {
			a.Logger.Warn("Failed to seed preset funnels",
				slog.Uint64("site_id", uint64(site.ID)), slog.Any("error", err))
		}
		if err := goals.EnsurePresets(db, site.ID); err != nil {
			a.Logger.Warn("Failed to seed preset goals",
				slog.Uint64("site_id", uint64(site.ID)), slog.Any("error", err))
		}
	}
	return nil
}

// StartAsync launches the background jobs and the HTTP listener. The
// listener runs on its own goroutine; fatal listen errors are logged, not
// returned.
func (a *Application) StartAsync() error {
	a.Scheduler.Start()

	addr := ":" + a.Config.AppPort
	a.Logger.Info("Starting HTTP server", slog.String("addr", addr))

	go func() {
		if err := a.Fiber.Listen(addr); err != nil {
			a.Logger.Error("HTTP server stopped", slog.Any("error", err))
		}
	}()

	return nil
}

// Shutdown stops the jobs, drains the HTTP server, flushes the WAL, and
// closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	a.Scheduler.Stop()

	if err := a.Fiber.ShutdownWithContext(ctx); err != nil {
		a.Logger.Error("Error shutting down HTTP server", slog.Any("error", err))
	}

	if err := a.DBManager.CheckpointWAL("TRUNCATE"); err != nil {
		a.Logger.Warn("Final WAL checkpoint failed", slog.Any("error", err))
	}

	return a.DBManager.Close()
}
