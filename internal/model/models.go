// Package model defines shared data structures for the opportunity service.
package model

import (
	"time"
)

// RawSearchResult is one organic result returned by the search provider.
// It only lives for the duration of a sync run.
type RawSearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// StructuredOpportunity is a single record as returned by the generative model.
// Nothing here is trusted: loosely typed fields keep whatever JSON value the
// model produced and are coerced by the normalize package.
type StructuredOpportunity struct {
	Title           any `json:"title"`
	Organization    any `json:"organization"`
	Description     any `json:"description"`
	OpportunityType any `json:"opportunity_type"`
	Deadline        any `json:"deadline"`
	Location        any `json:"location"`
	IsRemote        any `json:"is_remote"`
	Stipend         any `json:"stipend"`
	RequiredSkills  any `json:"required_skills"`
	ApplyLink       any `json:"apply_link"`
	ExternalID      any `json:"external_id"` // ignored; see normalize.ExternalID
}

// NormalizedOpportunity is a StructuredOpportunity after type coercion and placeholder erasure.
// Nil pointers mean "unknown"; the "Not specified" placeholder never survives.
type NormalizedOpportunity struct {
	Title           string   `json:"title"`
	Organization    string   `json:"organization"`
	Description     string   `json:"description"`
	OpportunityType string   `json:"opportunity_type"`
	Deadline        *string  `json:"deadline"`
	Location        string   `json:"location"`
	IsRemote        bool     `json:"is_remote"`
	Stipend         *string  `json:"stipend"`
	RequiredSkills  []string `json:"required_skills"`
	ApplyLink       *string  `json:"apply_link"`
}

// Opportunity mirrors a row of the opportunities table.
type Opportunity struct {
	NormalizedOpportunity
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// SaveResult counts per-record outcomes of one save pass.
type SaveResult struct {
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// SyncReport is the outcome of one sync run, as returned by the HTTP trigger.
type SyncReport struct {
	Message        string `json:"message"`
	Fetched        int    `json:"fetched"`
	Saved          int    `json:"saved"`
	Skipped        int    `json:"skipped"`
	Errors         int    `json:"errors"`
	DeletedExpired int64  `json:"deletedExpired"`
}
