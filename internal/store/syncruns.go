package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
)

// SyncRuns records one row per sync run in sync_runs.
type SyncRuns struct {
	db DBTX
}

// NewSyncRuns constructs a SyncRuns store.
func NewSyncRuns(db DBTX) *SyncRuns {
	return &SyncRuns{db: db}
}

// Start inserts run with outcome "running".
func (s *SyncRuns) Start(ctx context.Context, run model.SyncRun) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO sync_runs (id, trigger, category, started_at, outcome)
		 VALUES ($1, $2, $3, $4, $5)`,
		run.ID, string(run.Trigger), string(run.Category), run.StartedAt, string(model.OutcomeRunning),
	)
	if err != nil {
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

// Finish stores the outcome and counts of a run.
func (s *SyncRuns) Finish(ctx context.Context, id uuid.UUID, outcome model.RunOutcome, report model.SyncReport, runErr string, finishedAt time.Time) error {
	var errText *string
	if runErr != "" {
		errText = &runErr
	}
	_, err := s.db.Exec(ctx,
		`UPDATE sync_runs
		 SET finished_at = $2, outcome = $3, fetched = $4, saved = $5,
		     skipped = $6, errors = $7, deleted_expired = $8, error = $9
		 WHERE id = $1`,
		id, finishedAt, string(outcome), report.Fetched, report.Saved,
		report.Skipped, report.Errors, report.DeletedExpired, errText,
	)
	if err != nil {
		return fmt.Errorf("update sync run: %w", err)
	}
	return nil
}

// LastSucceededAt returns the start time of the newest succeeded run, or nil
// when no run has succeeded yet.
func (s *SyncRuns) LastSucceededAt(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	err := s.db.QueryRow(ctx,
		`SELECT MAX(started_at) FROM sync_runs WHERE outcome = $1`,
		string(model.OutcomeSucceeded),
	).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("select last sync run: %w", err)
	}
	return last, nil
}
