// Package search builds provider queries and fetches raw web results.
package search

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
)

//go:embed queries.yaml
var queriesYAML []byte

const yearPlaceholder = "{year}"

// querySets is parsed once at init; a malformed embedded file is a build defect.
var querySets = mustParseQuerySets(queriesYAML)

func mustParseQuerySets(data []byte) map[model.Category][]string {
	var sets map[model.Category][]string
	if err := yaml.Unmarshal(data, &sets); err != nil {
		panic(fmt.Sprintf("search: parse embedded queries.yaml: %v", err))
	}
	if len(sets[model.CategoryMixed]) == 0 {
		panic("search: embedded queries.yaml has no mixed set")
	}
	return sets
}

// BuildQueries returns the ordered query strings for category with year
// substituted. Categories without a dedicated set, including
// research_conference, use the mixed set.
func BuildQueries(category model.Category, year int) []string {
	templates, ok := querySets[category]
	if !ok {
		templates = querySets[model.CategoryMixed]
	}

	y := strconv.Itoa(year)
	queries := make([]string, len(templates))
	for i, tmpl := range templates {
		queries[i] = strings.ReplaceAll(tmpl, yearPlaceholder, y)
	}
	return queries
}
