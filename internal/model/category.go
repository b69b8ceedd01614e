package model

import (
	"errors"
	"fmt"
	"strings"
)

// OpportunityType values mirror what the opportunities table stores.
type OpportunityType string

const (
	TypeInternship         OpportunityType = "internship"
	TypeScholarship        OpportunityType = "scholarship"
	TypeHackathon          OpportunityType = "hackathon"
	TypeCompetition        OpportunityType = "competition"
	TypeWorkshop           OpportunityType = "workshop"
	TypeResearchConference OpportunityType = "research_conference"
)

// Category selects the query set for a sync run. It is either an
// OpportunityType or CategoryMixed.
type Category string

// CategoryMixed spreads a sync run across every opportunity type.
const CategoryMixed Category = "mixed"

// ValidCategories lists the accepted values of the sync trigger, in the order
// they are reported back to callers.
var ValidCategories = []Category{
	Category(TypeInternship),
	Category(TypeScholarship),
	CategoryMixed,
	Category(TypeHackathon),
	Category(TypeCompetition),
	Category(TypeWorkshop),
	Category(TypeResearchConference),
}

// ErrInvalidCategory is returned by ParseCategory for unknown values.
var ErrInvalidCategory = errors.New("invalid category")

// ParseCategory converts a raw trigger value to a Category. An empty string
// selects CategoryMixed. Matching is exact, as the HTTP contract is.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryMixed, nil
	}
	for _, c := range ValidCategories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of: %s", ErrInvalidCategory, s, CategoryList())
}

// CategoryList renders ValidCategories as a comma separated list.
func CategoryList() string {
	names := make([]string, len(ValidCategories))
	for i, c := range ValidCategories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
