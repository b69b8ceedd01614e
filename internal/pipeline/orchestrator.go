package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/events"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/metrics"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/search"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/structurer"
)

// Report messages.
const (
	MsgNoSearchResults   = "No search results found"
	MsgNothingStructured = "No opportunities structured from search results"
	MsgSynced            = "Opportunities synced successfully"
)

// Structurer turns raw results into candidate records.
type Structurer interface {
	Structure(ctx context.Context, results []model.RawSearchResult, category model.Category) structurer.ParseResult
}

// RunLog persists sync run bookkeeping.
type RunLog interface {
	Start(ctx context.Context, run model.SyncRun) error
	Finish(ctx context.Context, id uuid.UUID, outcome model.RunOutcome, report model.SyncReport, runErr string, finishedAt time.Time) error
}

// EventPublisher announces finished runs.
type EventPublisher interface {
	PublishSynced(ctx context.Context, ev events.Synced) error
}

// Deps wires an Orchestrator.
type Deps struct {
	Searcher          search.Searcher
	SearchConcurrency int
	TargetYear        int
	Structurer        Structurer
	Writer            *Writer
	Sweeper           *Sweeper
	Runs              RunLog
	Events            EventPublisher
	Metrics           *metrics.Metrics
	Log               *zap.Logger
}

// Orchestrator runs one sync cycle end to end.
type Orchestrator struct {
	searcher    search.Searcher
	concurrency int
	year        int
	structurer  Structurer
	writer      *Writer
	sweeper     *Sweeper
	runs        RunLog
	events      EventPublisher
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         func() time.Time
}

func NewOrchestrator(d Deps) *Orchestrator {
	return &Orchestrator{
		searcher:    d.Searcher,
		concurrency: d.SearchConcurrency,
		year:        d.TargetYear,
		structurer:  d.Structurer,
		writer:      d.Writer,
		sweeper:     d.Sweeper,
		runs:        d.Runs,
		events:      d.Events,
		metrics:     d.Metrics,
		log:         d.Log.Named("sync"),
		now:         time.Now,
	}
}

// WithClock overrides the clock used to stamp sync runs.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// RunSync sweeps expired rows, then searches, structures and saves
// opportunities for category. Upstream failures shrink the report instead of
// failing the run; only an unreachable store returns an error.
func (o *Orchestrator) RunSync(ctx context.Context, category model.Category, trigger model.Trigger) (report model.SyncReport, err error) {
	run := model.SyncRun{
		ID:        uuid.New(),
		Trigger:   trigger,
		Category:  category,
		StartedAt: o.now().UTC(),
		Outcome:   model.OutcomeRunning,
	}
	log := o.log.With(
		zap.String("run_id", run.ID.String()),
		zap.String("trigger", string(trigger)),
		zap.String("category", string(category)),
	)
	log.Info("sync started")

	if startErr := o.runs.Start(ctx, run); startErr != nil {
		log.Warn("could not record sync run", zap.Error(startErr))
	}

	defer func() { o.finish(ctx, log, run, report, err) }()

	return o.run(ctx, category, log)
}

func (o *Orchestrator) run(ctx context.Context, category model.Category, log *zap.Logger) (model.SyncReport, error) {
	var report model.SyncReport

	// ── Step 1: retention sweep ───────────────────────────
	deleted, err := o.sweeper.Sweep(ctx)
	if err != nil {
		log.Error("retention sweep failed, continuing", zap.Error(err))
		deleted = 0
	}
	report.DeletedExpired = deleted

	// ── Step 2: search ────────────────────────────────────
	queries := search.BuildQueries(category, o.year)
	results := search.SearchAll(ctx, o.searcher, queries, o.concurrency)
	log.Info("search finished", zap.Int("queries", len(queries)), zap.Int("results", len(results)))
	if len(results) == 0 {
		report.Message = MsgNoSearchResults
		return report, nil
	}

	// ── Step 3: structure ─────────────────────────────────
	parsed := o.structurer.Structure(ctx, results, category)
	if len(parsed.Opportunities) == 0 {
		report.Message = MsgNothingStructured
		return report, nil
	}
	report.Fetched = len(parsed.Opportunities)

	// ── Step 4: dedup + save ──────────────────────────────
	saved, err := o.writer.Save(ctx, parsed.Opportunities)
	report.Saved, report.Skipped, report.Errors = saved.Saved, saved.Skipped, saved.Errors
	if err != nil {
		return report, fmt.Errorf("save opportunities: %w", err)
	}

	report.Message = MsgSynced
	return report, nil
}

func (o *Orchestrator) finish(ctx context.Context, log *zap.Logger, run model.SyncRun, report model.SyncReport, runErr error) {
	finished := o.now().UTC()
	outcome := model.OutcomeSucceeded
	errText := ""
	switch {
	case runErr != nil:
		outcome = model.OutcomeFailed
		errText = runErr.Error()
	case report.Fetched == 0:
		outcome = model.OutcomeEmpty
	}

	// Bookkeeping still lands when the run itself was cancelled.
	ctx = context.WithoutCancel(ctx)

	if err := o.runs.Finish(ctx, run.ID, outcome, report, errText, finished); err != nil {
		log.Warn("could not record sync run outcome", zap.Error(err))
	}

	ev := events.Synced{
		RunID:          run.ID.String(),
		Trigger:        string(run.Trigger),
		Category:       string(run.Category),
		Outcome:        string(outcome),
		Fetched:        report.Fetched,
		Saved:          report.Saved,
		Skipped:        report.Skipped,
		Errors:         report.Errors,
		DeletedExpired: report.DeletedExpired,
		At:             finished,
	}
	if err := o.events.PublishSynced(ctx, ev); err != nil {
		log.Warn("publish sync event failed", zap.Error(err))
	}

	o.metrics.ObserveSync(string(run.Trigger), string(outcome), run.StartedAt, finished.Sub(run.StartedAt))

	fields := []zap.Field{
		zap.String("outcome", string(outcome)),
		zap.Int("fetched", report.Fetched),
		zap.Int("saved", report.Saved),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
		zap.Int64("deleted_expired", report.DeletedExpired),
		zap.Duration("elapsed", finished.Sub(run.StartedAt)),
	}
	if runErr != nil {
		log.Error("sync failed", append(fields, zap.Error(runErr))...)
		return
	}
	log.Info("sync finished", fields...)
}
