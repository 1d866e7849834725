package scheduler

import (
	"context"
	"time"

	"github.com/aristath/analytics/internal/database"
	"github.com/rs/zerolog"
)

// WALCheckpointJob truncates the analytics database WAL on a schedule so the
// log never grows unbounded under steady write traffic.
type WALCheckpointJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewWALCheckpointJob creates a WAL checkpoint job.
func NewWALCheckpointJob(db *database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		db:  db,
		log: log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run executes the checkpoint
func (j *WALCheckpointJob) Run() error {
	start := time.Now()
	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		return err
	}
	j.log.Debug().Dur("duration", time.Since(start)).Msg("WAL checkpoint completed")
	return nil
}

// IntegrityCheckJob runs the engine's integrity check periodically. Corruption
// is only reported; recovery is a manual operation.
type IntegrityCheckJob struct {
	db      *database.DB
	timeout time.Duration
	log     zerolog.Logger
}

// NewIntegrityCheckJob creates an integrity check job.
func NewIntegrityCheckJob(db *database.DB, log zerolog.Logger) *IntegrityCheckJob {
	return &IntegrityCheckJob{
		db:      db,
		timeout: 30 * time.Second,
		log:     log.With().Str("job", "integrity_check").Logger(),
	}
}

// Name returns the job name
func (j *IntegrityCheckJob) Name() string {
	return "integrity_check"
}

// Run executes the integrity check
func (j *IntegrityCheckJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.db.HealthCheck(ctx); err != nil {
		j.log.Error().Err(err).Str("database", j.db.Name()).Msg("Database integrity check failed")
		return err
	}

	j.log.Debug().Str("database", j.db.Name()).Msg("Database integrity OK")
	return nil
}
