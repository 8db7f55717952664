package jobs

import (
	"log/slog"

	"github.com/blakecrosley/941analytics/internal/database"
)

// CheckpointJob periodically flushes the SQLite write-ahead log so the WAL
// file does not grow without bound under a steady collection load.
type CheckpointJob struct {
	dbManager *database.Manager
	logger    *slog.Logger
}

func NewCheckpointJob(dbManager *database.Manager, logger *slog.Logger) *CheckpointJob {
	return &CheckpointJob{dbManager: dbManager, logger: logger}
}

// Run performs a passive checkpoint, which never blocks writers.
func (j *CheckpointJob) Run() error {
	if err := j.dbManager.CheckpointWAL("PASSIVE"); err != nil {
		j.logger.Error("WAL checkpoint failed", slog.Any("error", err))
		return err
	}
	j.logger.Debug("WAL checkpoint completed")
	return nil
}
