// Package structurer turns raw search results into structured opportunity
// records with a generative model.
package structurer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/llm"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/logger"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/metrics"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
)

const rawLogLimit = 500

type Structurer struct {
	gen     llm.Generator
	minYear int
	now     func() time.Time
	metrics *metrics.Metrics
	log     *zap.Logger
}

func New(gen llm.Generator, minYear int, m *metrics.Metrics, log *zap.Logger) *Structurer {
	return &Structurer{
		gen:     gen,
		minYear: minYear,
		now:     time.Now,
		metrics: m,
		log:     log.Named("structurer"),
	}
}

// WithClock overrides the clock used for the prompt's date.
func (s *Structurer) WithClock(now func() time.Time) *Structurer {
	s.now = now
	return s
}

// Structure asks the model to extract opportunities from results. It never
// returns an error: model failures come back as ParseMalformed.
func (s *Structurer) Structure(ctx context.Context, results []model.RawSearchResult, category model.Category) ParseResult {
	log := s.log.With(zap.String("provider", s.gen.Provider()), zap.String("model", s.gen.Model()))

	if len(results) == 0 {
		log.Warn("no search results to structure")
		return ParseResult{Kind: ParseEmpty}
	}

	log.Info("structuring search results", zap.Int("results", len(results)))
	prompt := BuildPrompt(results, category, s.now(), s.minYear)

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		log.Error("model call failed", zap.Error(err))
		s.observe(ParseMalformed)
		return ParseResult{Kind: ParseMalformed, Err: err}
	}

	res := ParseResponse(text)
	switch res.Kind {
	case ParseMalformed:
		log.Warn("could not parse model response",
			zap.Error(res.Err), zap.String("raw", logger.Truncate(res.Raw, rawLogLimit)))
	case ParseEmpty:
		log.Info("model returned no opportunities")
	default:
		log.Info("structured opportunities",
			zap.Int("count", len(res.Opportunities)), zap.Int("dropped", res.Dropped))
	}
	if res.Dropped > 0 {
		log.Warn("dropped undecodable records", zap.Int("dropped", res.Dropped))
	}
	s.observe(res.Kind)
	return res
}

func (s *Structurer) observe(kind ParseKind) {
	s.metrics.LLMRequestsTotal.WithLabelValues(s.gen.Provider(), kind.String()).Inc()
}
