package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/blakecrosley/941analytics/internal/config"
	"github.com/blakecrosley/941analytics/internal/database"
)

// Scheduler runs the background maintenance jobs on their own tickers. Jobs
// never overlap: a tick that fires while another job is still running is
// skipped, not queued.
type Scheduler struct {
	dbManager *database.Manager
	logger    *slog.Logger
	cfg       *config.Config
	ctx       context.Context
	cancel    context.CancelFunc
	isRunning bool

	processingMutex sync.Mutex
	isProcessing    bool

	checkpointJob *CheckpointJob
	cleanupJob    *CleanupJob

	checkpointTicker *time.Ticker
	cleanupTicker    *time.Ticker
}

func NewScheduler(dbManager *database.Manager, logger *slog.Logger, cfg *config.Config) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		dbManager:     dbManager,
		logger:        logger,
		cfg:           cfg,
		ctx:           ctx,
		cancel:        cancel,
		checkpointJob: NewCheckpointJob(dbManager, logger),
		cleanupJob:    NewCleanupJob(dbManager, logger, cfg),
	}
}

// executeJobSafely runs a job unless another one is already executing, and
// keeps a panicking job from taking the process down.
func (s *Scheduler) executeJobSafely(jobName string, jobFunc func() error) {
	s.processingMutex.Lock()
	if s.isProcessing {
		s.logger.Debug("Skipping job execution - previous job still running", slog.String("job", jobName))
		s.processingMutex.Unlock()
		return
	}
	s.isProcessing = true
	s.processingMutex.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic recovered in background job",
				slog.String("job", jobName),
				slog.Any("panic", r))
		}

		s.processingMutex.Lock()
		s.isProcessing = false
		s.processingMutex.Unlock()
	}()

	if err := jobFunc(); err != nil {
		s.logger.Error("Error executing job", slog.String("job", jobName), slog.Any("error", err))
	}
}

// Start launches the background jobs. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start() {
	if s.isRunning {
		s.logger.Info("Background jobs already running")
		return
	}
	s.isRunning = true

	s.startCheckpointJob()
	s.startCleanupJob()

	s.logger.Info("Background jobs started")
}

func (s *Scheduler) startCheckpointJob() {
	interval := time.Duration(s.cfg.JobIntervalSeconds) * time.Second
	s.logger.Info("Starting WAL checkpoint job", slog.Duration("interval", interval))
	s.checkpointTicker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.checkpointTicker.C:
				s.executeJobSafely("wal_checkpoint", s.checkpointJob.Run)
			case <-s.ctx.Done():
				s.logger.Info("WAL checkpoint job stopped")
				return
			}
		}
	}()
}

func (s *Scheduler) startCleanupJob() {
	interval := 24 * time.Hour
	s.logger.Info("Starting bot visit cleanup job", slog.Duration("interval", interval))
	s.cleanupTicker = time.NewTicker(interval)

	go func() {
		s.executeJobSafely("bot_visit_cleanup", s.cleanupJob.Run)

		for {
			select {
			case <-s.cleanupTicker.C:
				s.executeJobSafely("bot_visit_cleanup", s.cleanupJob.Run)
			case <-s.ctx.Done():
				s.logger.Info("Cleanup job stopped")
				return
			}
		}
	}()
}

// Stop halts all background jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background jobs...")

	if s.checkpointTicker != nil {
		s.checkpointTicker.Stop()
	}
	if s.cleanupTicker != nil {
		s.cleanupTicker.Stop()
	}

	s.cancel()
	s.isRunning = false
	s.logger.Info("Background jobs stopped")
}

// IsRunning reports whether jobs are currently scheduled.
func (s *Scheduler) IsRunning() bool {
	return s.isRunning
}
