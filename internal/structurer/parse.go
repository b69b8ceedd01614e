package structurer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
)

// ParseKind tells an empty answer apart from an unusable one.
type ParseKind int

const (
	ParseOK ParseKind = iota
	ParseEmpty
	ParseMalformed
)

func (k ParseKind) String() string {
	switch k {
	case ParseOK:
		return "ok"
	case ParseEmpty:
		return "empty"
	case ParseMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("ParseKind(%d)", int(k))
	}
}

// ParseResult is the outcome of one structuring call.
type ParseResult struct {
	Kind          ParseKind
	Opportunities []model.StructuredOpportunity
	Dropped       int    // array elements that could not be decoded
	Raw           string // model reply, kept for diagnostics
	Err           error  // set for ParseMalformed
}

var (
	fenceOpen  = regexp.MustCompile("```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("```\\s*$")
)

// ParseResponse extracts the JSON array from a model reply. Markdown fences
// are removed and the span from the first '[' to the last ']' is decoded one
// element at a time; elements that do not decode are dropped.
func ParseResponse(text string) ParseResult {
	res := ParseResult{Raw: text}

	cleaned := strings.TrimSpace(text)
	cleaned = fenceOpen.ReplaceAllString(cleaned, "")
	cleaned = fenceClose.ReplaceAllString(cleaned, "")

	start := strings.IndexByte(cleaned, '[')
	end := strings.LastIndexByte(cleaned, ']')
	if start < 0 || end < start {
		res.Kind = ParseMalformed
		res.Err = fmt.Errorf("no JSON array in response")
		return res
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &elems); err != nil {
		res.Kind = ParseMalformed
		res.Err = fmt.Errorf("decode array: %w", err)
		return res
	}
	if len(elems) == 0 {
		res.Kind = ParseEmpty
		return res
	}

	for _, el := range elems {
		if !bytes.HasPrefix(bytes.TrimSpace(el), []byte("{")) {
			res.Dropped++
			continue
		}
		var opp model.StructuredOpportunity
		if err := json.Unmarshal(el, &opp); err != nil {
			res.Dropped++
			continue
		}
		res.Opportunities = append(res.Opportunities, opp)
	}

	if len(res.Opportunities) == 0 {
		res.Kind = ParseMalformed
		res.Err = fmt.Errorf("all %d array elements failed to decode", len(elems))
		return res
	}
	res.Kind = ParseOK
	return res
}
