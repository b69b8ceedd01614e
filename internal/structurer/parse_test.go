package structurer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/structurer"
)

const twoRecords = `[
  {"title": "SDE Intern", "organization": "Cisco", "opportunity_type": "internship",
   "deadline": "Not specified", "is_remote": false, "required_skills": ["Go"]},
  {"title": "Smart India Hackathon", "organization": "AICTE", "opportunity_type": "hackathon",
   "deadline": "2026-09-01T23:59:59Z", "is_remote": "true", "required_skills": "C++, Python"}
]`

func TestParseResponse_PlainArray(t *testing.T) {
	res := structurer.ParseResponse(twoRecords)

	require.Equal(t, structurer.ParseOK, res.Kind)
	require.Len(t, res.Opportunities, 2)
	assert.Equal(t, "SDE Intern", res.Opportunities[0].Title)
	assert.Equal(t, "AICTE", res.Opportunities[1].Organization)
	assert.Zero(t, res.Dropped)
	assert.NoError(t, res.Err)
}

func TestParseResponse_StripsFencesAndProse(t *testing.T) {
	inputs := map[string]string{
		"json fence":  "```json\n" + twoRecords + "\n```",
		"bare fence":  "```\n" + twoRecords + "\n```  ",
		"prose":       "Here are the opportunities I found:\n" + twoRecords + "\nLet me know if you need more.",
		"fence+prose": "Sure!\n```json\n" + twoRecords + "\n```\n",
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			res := structurer.ParseResponse(in)
			require.Equal(t, structurer.ParseOK, res.Kind, res.Err)
			assert.Len(t, res.Opportunities, 2)
		})
	}
}

func TestParseResponse_EmptyArray(t *testing.T) {
	for _, in := range []string{"[]", "```json\n[ ]\n```", "No matches: []"} {
		res := structurer.ParseResponse(in)
		assert.Equal(t, structurer.ParseEmpty, res.Kind, in)
		assert.Empty(t, res.Opportunities)
	}
}

func TestParseResponse_NoBracketsIsMalformed(t *testing.T) {
	res := structurer.ParseResponse("I could not find any opportunities in these results.")

	assert.Equal(t, structurer.ParseMalformed, res.Kind)
	assert.Empty(t, res.Opportunities)
	assert.Error(t, res.Err)
	assert.Equal(t, "I could not find any opportunities in these results.", res.Raw)
}

func TestParseResponse_BrokenJSONIsMalformed(t *testing.T) {
	for _, in := range []string{
		`[{"title": "x",]`,
		`] before [`,
		`[{"title": "a"}] and also [{"title": "b"}]`, // greedy span is not one array
	} {
		res := structurer.ParseResponse(in)
		assert.Equal(t, structurer.ParseMalformed, res.Kind, in)
	}
}

func TestParseResponse_DropsBadElements(t *testing.T) {
	res := structurer.ParseResponse(`[
		{"title": "Good", "organization": "IIT Delhi"},
		{"title": 42},
		"just a string",
		null,
		{"title": "Also good", "required_skills": {"weird": true}}
	]`)

	require.Equal(t, structurer.ParseOK, res.Kind)
	assert.Equal(t, 2, res.Dropped)
	require.Len(t, res.Opportunities, 3)
	assert.Equal(t, "Good", res.Opportunities[0].Title)
	// Wrongly typed fields are kept for the normalizer to coerce.
	assert.Equal(t, float64(42), res.Opportunities[1].Title)
	assert.Equal(t, "Also good", res.Opportunities[2].Title)
}

func TestParseResponse_NonStringCoreFieldsAreKept(t *testing.T) {
	res := structurer.ParseResponse(`[
		{"title": "GSoC", "organization": "Google", "opportunity_type": "internship"},
		{"title": 2026, "organization": true, "opportunity_type": "hackathon", "description": 7}
	]`)

	require.Equal(t, structurer.ParseOK, res.Kind)
	assert.Zero(t, res.Dropped)
	require.Len(t, res.Opportunities, 2)
}

func TestParseResponse_AllElementsBad(t *testing.T) {
	res := structurer.ParseResponse(`[1, 2, "three"]`)
	assert.Equal(t, structurer.ParseMalformed, res.Kind)
	assert.Equal(t, 3, res.Dropped)
}

func TestParseKind_String(t *testing.T) {
	assert.Equal(t, "ok", structurer.ParseOK.String())
	assert.Equal(t, "empty", structurer.ParseEmpty.String())
	assert.Equal(t, "malformed", structurer.ParseMalformed.String())
}
