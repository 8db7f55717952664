package jobs

import (
	"log/slog"
	"time"

	"github.com/blakecrosley/941analytics/internal/config"
	"github.com/blakecrosley/941analytics/internal/database"
	"github.com/blakecrosley/941analytics/internal/visits"
)

// CleanupJob prunes old bot traffic. Bot visits are kept for a while so the
// bot breakdown stays useful, then dropped: they never feed visitor counts,
// funnels, or goals, so holding them forever is pure storage cost.
type CleanupJob struct {
	dbManager *database.Manager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewCleanupJob(dbManager *database.Manager, logger *slog.Logger, cfg *config.Config) *CleanupJob {
	return &CleanupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run deletes bot visits older than the retention window.
func (j *CleanupJob) Run() error {
	retentionDays := j.cfg.BotVisitsRetentionDays
	if retentionDays <= 0 {
		j.logger.Debug("Bot visit cleanup disabled", slog.Int("retention_days", retentionDays))
		return nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	db := j.dbManager.GetConnection()

	deleted, err := visits.DeleteBotVisitsBefore(db, cutoff)
	if err != nil {
		j.logger.Error("Failed to clean up old bot visits", slog.Any("error", err))
		return err
	}

	if deleted > 0 {
		j.logger.Info("Cleaned up old bot visits",
			slog.Int64("deleted", deleted),
			slog.Time("cutoff", cutoff),
			slog.Int("retention_days", retentionDays))
	}
	return nil
}
