package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/events"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/structurer"
)

// memStore mimics the opportunities table, including its unique indexes.
type memStore struct {
	mu         sync.Mutex
	rows       []model.Opportunity
	now        func() time.Time
	lookupErr  error
	insertErrs map[string]error // by title
	deleteErr  error
	// raceTitle makes the existence checks miss a row that Insert then hits,
	// as if another run stored it in between.
	raceTitle string
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{now: now, insertErrs: map[string]error{}}
}

func (s *memStore) ExistsByExternalID(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	for _, r := range s.rows {
		if r.ExternalID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) ExistsByTitleOrganization(_ context.Context, title, org string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	if title == s.raceTitle {
		return false, nil
	}
	for _, r := range s.rows {
		if strings.EqualFold(r.Title, title) && (org == "" || strings.EqualFold(r.Organization, org)) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Insert(_ context.Context, opp model.Opportunity) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.insertErrs[opp.Title]; err != nil {
		return false, err
	}
	if opp.Title == s.raceTitle {
		return false, nil
	}
	for _, r := range s.rows {
		if r.ExternalID == opp.ExternalID {
			return false, nil
		}
		if opp.Organization != "" && strings.EqualFold(r.Title, opp.Title) && strings.EqualFold(r.Organization, opp.Organization) {
			return false, nil
		}
	}
	opp.ID = uuid.NewString()
	opp.CreatedAt = s.now()
	s.rows = append(s.rows, opp)
	return true, nil
}

func (s *memStore) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	kept := s.rows[:0]
	var n int64
	for _, r := range s.rows {
		if r.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return n, nil
}

func (s *memStore) seed(title, org, typ string, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, model.Opportunity{
		NormalizedOpportunity: model.NormalizedOpportunity{Title: title, Organization: org, OpportunityType: typ},
		ID:                    uuid.NewString(),
		ExternalID:            "seed-" + uuid.NewString(),
		CreatedAt:             createdAt,
	})
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// fakeRuns records sync_runs calls.
type fakeRuns struct {
	mu       sync.Mutex
	started  []model.SyncRun
	outcomes []model.RunOutcome
	errs     []string
	failAll  bool
}

func (f *fakeRuns) Start(_ context.Context, run model.SyncRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("sync_runs unavailable")
	}
	f.started = append(f.started, run)
	return nil
}

func (f *fakeRuns) Finish(_ context.Context, _ uuid.UUID, outcome model.RunOutcome, _ model.SyncReport, runErr string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("sync_runs unavailable")
	}
	f.outcomes = append(f.outcomes, outcome)
	f.errs = append(f.errs, runErr)
	return nil
}

type fakeEvents struct {
	mu   sync.Mutex
	sent []events.Synced
}

func (f *fakeEvents) PublishSynced(_ context.Context, ev events.Synced) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, ev)
	return nil
}

// stubSearcher returns the same results for every query.
type stubSearcher struct {
	mu      sync.Mutex
	results []model.RawSearchResult
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, q string) []model.RawSearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	return s.results
}

// stubStructurer returns a fixed parse result.
type stubStructurer struct {
	result structurer.ParseResult
	calls  int
}

func (s *stubStructurer) Structure(context.Context, []model.RawSearchResult, model.Category) structurer.ParseResult {
	s.calls++
	return s.result
}

func structured(title, org, typ, desc string) model.StructuredOpportunity {
	return model.StructuredOpportunity{
		Title: title, Organization: org, OpportunityType: typ, Description: desc,
		Deadline: "Not specified", RequiredSkills: []any{"Go"},
	}
}
