// Package normalize coerces untrusted model output into canonical values and
// derives the stable identifier used for deduplication.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
)

const (
	// Placeholder is what the model is told to emit for unknown values.
	Placeholder = "Not specified"

	// DefaultLocation replaces a missing or placeholder location.
	DefaultLocation = "Online"

	// InstitutionTag prefixes every external identifier.
	InstitutionTag = "igdtuw"

	externalIDHexLen = 16
	externalIDSep    = "|"
)

// Normalize coerces every field of raw independently of the JSON types the
// model actually used. It never fails.
func Normalize(raw model.StructuredOpportunity) model.NormalizedOpportunity {
	return model.NormalizedOpportunity{
		Title:           text(raw.Title),
		Organization:    text(raw.Organization),
		Description:     text(raw.Description),
		OpportunityType: strings.ToLower(text(raw.OpportunityType)),
		Deadline:        deadline(raw.Deadline),
		Location:        location(raw.Location),
		IsRemote:        isRemote(raw.IsRemote),
		Stipend:         optional(raw.Stipend),
		RequiredSkills:  skills(raw.RequiredSkills),
		ApplyLink:       optional(raw.ApplyLink),
	}
}

// ExternalID returns the stable identifier for an opportunity: a sha256 over
// the trimmed, lower-cased title, organization and type, truncated and tagged.
// Other fields never influence it.
func ExternalID(title, organization, opportunityType string) string {
	key := strings.Join([]string{
		canonical(title),
		canonical(organization),
		canonical(opportunityType),
	}, externalIDSep)
	sum := sha256.Sum256([]byte(key))
	return InstitutionTag + "-" + hex.EncodeToString(sum[:])[:externalIDHexLen]
}

// ForStorage normalizes raw and attaches its external identifier. The
// model-supplied external_id is discarded.
func ForStorage(raw model.StructuredOpportunity) model.Opportunity {
	n := Normalize(raw)
	return model.Opportunity{
		NormalizedOpportunity: n,
		ExternalID:            ExternalID(n.Title, n.Organization, n.OpportunityType),
	}
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// text renders a loosely typed JSON value as a string. nil stays empty.
func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func deadline(v any) *string {
	s := text(v)
	if s == "" || strings.EqualFold(s, Placeholder) {
		return nil
	}
	return &s
}

func location(v any) string {
	s := text(v)
	if s == "" || s == Placeholder {
		return DefaultLocation
	}
	return s
}

func optional(v any) *string {
	s := text(v)
	if s == "" || s == Placeholder {
		return nil
	}
	return &s
}

func isRemote(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return strings.EqualFold(text(v), "true")
}

func skills(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case []string:
		for _, s := range val {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range val {
			if s := text(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(val, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
