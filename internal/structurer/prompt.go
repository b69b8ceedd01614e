package structurer

import (
	_ "embed"
	"strings"
	"text/template"
	"time"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
)

// MaxItems caps the number of records the model is asked to return.
const MaxItems = 20

//go:embed prompt.tmpl
var promptText string

var promptTmpl = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(promptText))

type promptData struct {
	Results  []model.RawSearchResult
	Category model.Category
	Today    string
	MinYear  int
	PrevYear int
	MaxItems int
}

// BuildPrompt renders the structuring instructions for results. Results are
// numbered from 1 in the order given.
func BuildPrompt(results []model.RawSearchResult, category model.Category, today time.Time, minYear int) string {
	var sb strings.Builder
	err := promptTmpl.Execute(&sb, promptData{
		Results:  results,
		Category: category,
		Today:    today.UTC().Format(time.DateOnly),
		MinYear:  minYear,
		PrevYear: minYear - 1,
		MaxItems: MaxItems,
	})
	if err != nil {
		// Only reachable if the embedded template and promptData disagree.
		panic("structurer: render prompt: " + err.Error())
	}
	return sb.String()
}
