// Package scheduler runs the hourly gated sync: every tick checks when the
// last successful sync happened and starts a new one once the interval has
// passed.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/metrics"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
)

// Decision is the outcome of one Check.
type Decision string

const (
	DecisionSync  Decision = "sync"
	DecisionSkip  Decision = "skip"
	DecisionError Decision = "error"
	DecisionBusy  Decision = "busy" // a previous check is still running
)

// Syncer runs one sync cycle.
type Syncer interface {
	RunSync(ctx context.Context, category model.Category, trigger model.Trigger) (model.SyncReport, error)
}

// RunHistory reports when the last sync succeeded.
type RunHistory interface {
	LastSucceededAt(ctx context.Context) (*time.Time, error)
}

// DataHistory reports the newest stored opportunity, used before any sync
// run has been recorded.
type DataHistory interface {
	LatestCreatedAt(ctx context.Context) (*time.Time, error)
}

// HealthSetter receives storage reachability after every check.
type HealthSetter interface {
	SetServing(serving bool)
}

// Options configures a Scheduler.
type Options struct {
	Spec       string        // cron spec, e.g. "0 * * * *"
	Interval   time.Duration // minimum time between scheduled syncs
	RunOnStart bool
	Syncer     Syncer
	Runs       RunHistory
	Data       DataHistory
	Health     HealthSetter // optional
	Metrics    *metrics.Metrics
	Log        *zap.Logger
}

// Scheduler wraps robfig/cron and gates each tick on the last sync time.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	interval   time.Duration
	runOnStart bool
	syncer     Syncer
	runs       RunHistory
	data       DataHistory
	health     HealthSetter
	metrics    *metrics.Metrics
	log        *zap.Logger
	now        func() time.Time

	mu    sync.Mutex
	state State

	startup sync.WaitGroup // the RunOnStart check, which cron does not track
}

func New(opts Options) *Scheduler {
	log := opts.Log.Named("scheduler")
	cl := cronLogger{log.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:       opts.Spec,
		interval:   opts.Interval,
		runOnStart: opts.RunOnStart,
		syncer:     opts.Syncer,
		runs:       opts.Runs,
		data:       opts.Data,
		health:     opts.Health,
		metrics:    opts.Metrics,
		log:        log,
		now:        time.Now,
		state:      StateIdle,
	}
}

// WithClock overrides the clock used for the gate.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Start registers the job and starts the cron loop. When RunOnStart is set
// one check also runs immediately, so a fresh deployment does not wait for
// the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.Check(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}
	s.cron.Start()
	s.log.Info("cron started", zap.String("spec", s.spec), zap.Duration("interval", s.interval))

	if s.runOnStart {
		s.startup.Add(1)
		go func() {
			defer s.startup.Done()
			s.Check(ctx)
		}()
	}
	return nil
}

// Stop halts the cron loop and returns a context that is done once any
// running check, including the startup one, has finished.
func (s *Scheduler) Stop() context.Context {
	cronDone := s.cron.Stop()
	s.log.Info("cron stopped")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer cancel()
		<-cronDone.Done()
		s.startup.Wait()
	}()
	return ctx
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) transition(to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !IsTransitionAllowed(s.state, to) {
		return false
	}
	s.state = to
	return true
}

// Check runs one gate evaluation and, when due, a full mixed sync.
func (s *Scheduler) Check(ctx context.Context) Decision {
	if !s.transition(StateChecking) {
		s.log.Info("previous check still running, skipping tick", zap.String("state", string(s.State())))
		return DecisionBusy
	}

	defer s.transition(StateIdle)

	d := s.check(ctx)
	s.metrics.SchedulerChecksTotal.WithLabelValues(string(d)).Inc()
	return d
}

func (s *Scheduler) check(ctx context.Context) Decision {
	last, source, err := s.lastSync(ctx)
	if s.health != nil {
		s.health.SetServing(err == nil)
	}
	if err != nil {
		s.log.Error("could not read last sync time, retrying next tick", zap.Error(err))
		return DecisionError
	}

	now := s.now()
	if last != nil {
		if age := now.Sub(*last); age < s.interval {
			s.transition(StateSkipping)
			s.log.Info("last sync is recent, skipping",
				zap.Time("last_sync", *last),
				zap.String("source", source),
				zap.Duration("age", age.Round(time.Minute)),
				zap.Duration("next_in", (s.interval-age).Round(time.Minute)),
			)
			return DecisionSkip
		}
	}

	s.transition(StateSyncing)
	if last == nil {
		s.log.Info("no stored opportunities, syncing now")
	} else {
		s.log.Info("last sync is stale, syncing now", zap.Time("last_sync", *last), zap.String("source", source))
	}

	if _, err := s.syncer.RunSync(ctx, model.CategoryMixed, model.TriggerScheduled); err != nil {
		s.log.Error("scheduled sync failed", zap.Error(err))
	}
	return DecisionSync
}

// lastSync returns nil while the opportunities table is empty, so an empty
// table always syncs. Otherwise it prefers the sync run log and falls back to
// the newest stored row.
func (s *Scheduler) lastSync(ctx context.Context) (*time.Time, string, error) {
	latest, err := s.data.LatestCreatedAt(ctx)
	if err != nil {
		return nil, "", err
	}
	if latest == nil {
		return nil, "opportunities", nil
	}

	last, err := s.runs.LastSucceededAt(ctx)
	if err != nil {
		return nil, "", err
	}
	if last != nil {
		return last, "sync_runs", nil
	}
	return latest, "opportunities", nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
