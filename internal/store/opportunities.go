package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
)

// Opportunities reads and writes the opportunities table.
type Opportunities struct {
	db DBTX
}

// NewOpportunities constructs an Opportunities store.
func NewOpportunities(db DBTX) *Opportunities {
	return &Opportunities{db: db}
}

// ExistsByExternalID reports whether a row with the exact external_id exists.
func (s *Opportunities) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	var id string
	err := s.db.QueryRow(ctx,
		`SELECT id FROM opportunities WHERE external_id = $1 LIMIT 1`,
		externalID,
	).Scan(&id)
	return exists(err, "select by external_id")
}

// ExistsByTitleOrganization reports whether a row has the same title and,
// when organization is non-empty, the same organization. Both comparisons are
// case-insensitive exact matches.
func (s *Opportunities) ExistsByTitleOrganization(ctx context.Context, title, organization string) (bool, error) {
	var (
		id  string
		row pgx.Row
	)
	if organization != "" {
		row = s.db.QueryRow(ctx,
			`SELECT id FROM opportunities
			 WHERE lower(title) = lower($1) AND lower(organization) = lower($2)
			 LIMIT 1`,
			title, organization,
		)
	} else {
		row = s.db.QueryRow(ctx,
			`SELECT id FROM opportunities WHERE lower(title) = lower($1) LIMIT 1`,
			title,
		)
	}
	return exists(row.Scan(&id), "select by title/organization")
}

// Insert stores opp unless a unique index already covers it. inserted is false
// when the row conflicted with an existing one.
func (s *Opportunities) Insert(ctx context.Context, opp model.Opportunity) (inserted bool, err error) {
	skills := opp.RequiredSkills
	if skills == nil {
		skills = []string{}
	}

	var id string
	err = s.db.QueryRow(ctx,
		`INSERT INTO opportunities
		   (title, organization, description, opportunity_type, deadline, location,
		    is_remote, stipend, required_skills, apply_link, external_id)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5::text::timestamptz, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT DO NOTHING
		 RETURNING id`,
		opp.Title, opp.Organization, opp.Description, opp.OpportunityType, opp.Deadline,
		opp.Location, opp.IsRemote, opp.Stipend, skills, opp.ApplyLink, opp.ExternalID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert opportunity: %w", err)
	}
	return true, nil
}

// DeleteCreatedBefore removes every row created strictly before cutoff and
// returns how many were deleted.
func (s *Opportunities) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM opportunities WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired opportunities: %w", err)
	}
	return tag.RowsAffected(), nil
}

// LatestCreatedAt returns the newest created_at, or nil on an empty table.
func (s *Opportunities) LatestCreatedAt(ctx context.Context) (*time.Time, error) {
	var latest *time.Time
	if err := s.db.QueryRow(ctx, `SELECT MAX(created_at) FROM opportunities`).Scan(&latest); err != nil {
		return nil, fmt.Errorf("select latest created_at: %w", err)
	}
	return latest, nil
}

// Ping verifies the database is reachable.
func (s *Opportunities) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func exists(err error, op string) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", op, err)
	}
}
