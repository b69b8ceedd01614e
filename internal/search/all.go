package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
)

// Searcher is the single-query operation SearchAll fans out over.
type Searcher interface {
	Search(ctx context.Context, query string) []model.RawSearchResult
}

// SearchAll runs every query with at most concurrency calls in flight and
// concatenates the results in query order. A failed query contributes nothing.
func SearchAll(ctx context.Context, s Searcher, queries []string, concurrency int) []model.RawSearchResult {
	if concurrency < 1 {
		concurrency = 1
	}

	perQuery := make([][]model.RawSearchResult, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, q := range queries {
		g.Go(func() error {
			perQuery[i] = s.Search(gctx, q)
			return nil
		})
	}
	_ = g.Wait() // Search never fails

	var all []model.RawSearchResult
	for _, rs := range perQuery {
		all = append(all, rs...)
	}
	return all
}
