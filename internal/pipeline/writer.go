// Package pipeline runs the ingestion cycle: retention sweep, search,
// structuring, deduplication and storage.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/metrics"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/normalize"
)

// ErrStorageUnavailable is returned when the store cannot answer an
// existence check. Per-record insert failures never produce it.
var ErrStorageUnavailable = errors.New("storage unavailable")

// OpportunityWriter is the storage surface the Writer needs.
type OpportunityWriter interface {
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	ExistsByTitleOrganization(ctx context.Context, title, organization string) (bool, error)
	Insert(ctx context.Context, opp model.Opportunity) (inserted bool, err error)
}

// Writer deduplicates structured opportunities and stores new ones.
type Writer struct {
	store   OpportunityWriter
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewWriter(store OpportunityWriter, m *metrics.Metrics, log *zap.Logger) *Writer {
	return &Writer{store: store, metrics: m, log: log.Named("writer")}
}

// Save processes opps one at a time, in order, so that a record inserted
// earlier in the batch is visible to the duplicate checks of later ones.
// A failed insert is counted and the loop continues; a failed lookup aborts
// with ErrStorageUnavailable and the counts so far.
func (w *Writer) Save(ctx context.Context, opps []model.StructuredOpportunity) (model.SaveResult, error) {
	var res model.SaveResult

	for _, raw := range opps {
		opp := normalize.ForStorage(raw)
		log := w.log.With(zap.String("title", opp.Title), zap.String("external_id", opp.ExternalID))

		// ── Primary check: stable identifier ──────────────
		found, err := w.store.ExistsByExternalID(ctx, opp.ExternalID)
		if err != nil {
			return res, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		if found {
			w.skip(&res, log, "external_id")
			continue
		}

		// ── Secondary check: title + organization ─────────
		found, err = w.store.ExistsByTitleOrganization(ctx, opp.Title, opp.Organization)
		if err != nil {
			return res, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		if found {
			w.skip(&res, log, "title_organization")
			continue
		}

		// ── Insert ────────────────────────────────────────
		inserted, err := w.store.Insert(ctx, opp)
		if err != nil {
			res.Errors++
			w.metrics.RecordsTotal.WithLabelValues("error").Inc()
			log.Error("insert failed", zap.Error(err))
			continue
		}
		if !inserted {
			// A concurrent run stored it between our checks and the insert.
			w.skip(&res, log, "conflict")
			continue
		}

		res.Saved++
		w.metrics.RecordsTotal.WithLabelValues("saved").Inc()
		log.Debug("saved opportunity")
	}

	w.log.Info("save finished",
		zap.Int("saved", res.Saved), zap.Int("skipped", res.Skipped), zap.Int("errors", res.Errors))
	return res, nil
}

func (w *Writer) skip(res *model.SaveResult, log *zap.Logger, reason string) {
	res.Skipped++
	w.metrics.RecordsTotal.WithLabelValues("skipped").Inc()
	log.Debug("skipped duplicate", zap.String("matched_on", reason))
}
