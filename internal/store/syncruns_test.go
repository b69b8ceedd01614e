package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/store"
)

func TestSyncRuns_StartAndFinish(t *testing.T) {
	mock := newMock(t)
	s := store.NewSyncRuns(mock)
	ctx := context.Background()

	id := uuid.New()
	started := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	finished := started.Add(2 * time.Minute)
	report := model.SyncReport{Fetched: 4, Saved: 3, Skipped: 1, DeletedExpired: 2}

	mock.ExpectExec(`INSERT INTO sync_runs`).
		WithArgs(id, "scheduled", "mixed", started, "running").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE sync_runs`).
		WithArgs(id, finished, "succeeded", 4, 3, 1, 0, int64(2), (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.Start(ctx, model.SyncRun{
		ID: id, Trigger: model.TriggerScheduled, Category: model.CategoryMixed, StartedAt: started,
	}))
	require.NoError(t, s.Finish(ctx, id, model.OutcomeSucceeded, report, "", finished))
}

func TestSyncRuns_LastSucceededAt(t *testing.T) {
	mock := newMock(t)
	s := store.NewSyncRuns(mock)
	ts := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT MAX\(started_at\) FROM sync_runs WHERE outcome = \$1`).
		WithArgs("succeeded").
		WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow(&ts))

	last, err := s.LastSucceededAt(context.Background())
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(ts))
}
