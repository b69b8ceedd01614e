package structurer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/metrics"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/structurer"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}
func (f *fakeGenerator) Provider() string { return "fake" }
func (f *fakeGenerator) Model() string    { return "fake-1" }

var fixedNow = func() time.Time { return time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC) }

var sampleResults = []model.RawSearchResult{
	{Title: "Cisco SDE Intern 2026", Link: "https://jobs.cisco.com/1", Snippet: "Apply by March 15"},
	{Title: "Smart India Hackathon", Link: "https://sih.gov.in", Snippet: "Registrations open"},
}

// ── BuildPrompt ───────────────────────────────────────────────────────────

func TestBuildPrompt_NumbersResults(t *testing.T) {
	p := structurer.BuildPrompt(sampleResults, model.CategoryMixed, fixedNow(), 2026)

	assert.Contains(t, p, "1. Title: Cisco SDE Intern 2026\n   URL: https://jobs.cisco.com/1\n   Snippet: Apply by March 15")
	assert.Contains(t, p, "\n\n2. Title: Smart India Hackathon\n   URL: https://sih.gov.in")
	assert.NotContains(t, p, "0. Title:")
}

func TestBuildPrompt_Rules(t *testing.T) {
	p := structurer.BuildPrompt(sampleResults, model.CategoryMixed, fixedNow(), 2026)

	assert.Contains(t, p, "TODAY'S DATE: 2026-02-10")
	assert.Contains(t, p, "from 2026 onwards ONLY")
	assert.Contains(t, p, "REJECT any 2025 or earlier")
	assert.Contains(t, p, `"Not specified"`)
	assert.Contains(t, p, "UP TO 20 valid opportunities")
	assert.Contains(t, p, "research_conference")
	assert.NotContains(t, p, "SEARCH FOCUS")
}

func TestBuildPrompt_CategoryFocus(t *testing.T) {
	p := structurer.BuildPrompt(sampleResults, "hackathon", fixedNow(), 2026)
	assert.Contains(t, p, "SEARCH FOCUS: hackathon")
}

// ── Structure ─────────────────────────────────────────────────────────────

func newStructurer(gen *fakeGenerator) (*structurer.Structurer, *metrics.Metrics) {
	m := metrics.New(nil)
	return structurer.New(gen, 2026, m, zap.NewNop()).WithClock(fixedNow), m
}

func TestStructure_OK(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n" + twoRecords + "\n```"}
	s, m := newStructurer(gen)

	res := s.Structure(context.Background(), sampleResults, model.CategoryMixed)

	require.Equal(t, structurer.ParseOK, res.Kind)
	assert.Len(t, res.Opportunities, 2)
	require.Len(t, gen.prompts, 1)
	assert.True(t, strings.Contains(gen.prompts[0], "Cisco SDE Intern 2026"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("fake", "ok")))
}

func TestStructure_NoResultsSkipsModel(t *testing.T) {
	gen := &fakeGenerator{reply: twoRecords}
	s, _ := newStructurer(gen)

	res := s.Structure(context.Background(), nil, model.CategoryMixed)

	assert.Equal(t, structurer.ParseEmpty, res.Kind)
	assert.Empty(t, gen.prompts)
}

func TestStructure_ModelErrorIsMalformed(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("deadline exceeded")}
	s, m := newStructurer(gen)

	res := s.Structure(context.Background(), sampleResults, model.CategoryMixed)

	assert.Equal(t, structurer.ParseMalformed, res.Kind)
	assert.Empty(t, res.Opportunities)
	assert.EqualError(t, res.Err, "deadline exceeded")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("fake", "malformed")))
}

func TestStructure_ProseReplyIsMalformed(t *testing.T) {
	s, _ := newStructurer(&fakeGenerator{reply: "Sorry, nothing relevant here."})

	res := s.Structure(context.Background(), sampleResults, model.CategoryMixed)
	assert.Equal(t, structurer.ParseMalformed, res.Kind)
	assert.Empty(t, res.Opportunities)
}
