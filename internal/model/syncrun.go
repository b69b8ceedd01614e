package model

import (
	"time"

	"github.com/google/uuid"
)

// Trigger records what started a sync run.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
	TriggerCLI       Trigger = "cli"
)

// RunOutcome values mirror the sync_runs.outcome column.
type RunOutcome string

const (
	OutcomeRunning   RunOutcome = "running"
	OutcomeSucceeded RunOutcome = "succeeded"
	OutcomeEmpty     RunOutcome = "empty" // finished without structuring anything
	OutcomeFailed    RunOutcome = "failed"
)

// SyncRun mirrors a row of the sync_runs table. The scheduler's 24 hour gate
// reads the most recent succeeded run; empty runs do not count.
type SyncRun struct {
	ID         uuid.UUID
	Trigger    Trigger
	Category   Category
	StartedAt  time.Time
	FinishedAt *time.Time
	Outcome    RunOutcome
	Report     SyncReport
	Error      string
}
