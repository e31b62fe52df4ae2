package converter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/johnwards/leadsearch/internal/converter"
	"github.com/johnwards/leadsearch/internal/vql"
)

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		sorted bool
		want   []string
	}{
		{"dedup keeps first casing", []any{" Cloud ", "SaaS", "cloud", ""}, true, []string{"Cloud", "SaaS"}},
		{"comma string", "b, a ,,B", true, []string{"a", "b"}},
		{"json array string", `["Retail", " retail", "Banking"]`, true, []string{"Banking", "Retail"}},
		{"array literal", `{"Cloud",SaaS, cloud}`, true, []string{"Cloud", "SaaS"}},
		{"repeated query values", []string{"x,y", "z"}, false, []string{"x", "y", "z"}},
		{"unsorted keeps input order", "zeta,Alpha", false, []string{"zeta", "Alpha"}},
		{"numbers", []any{3, 1.5}, false, []string{"3", "1.5"}},
		{"broken json falls back to commas", `[a,b]`, false, []string{"[a", "b]"}},
		{"nil", nil, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := converter.NormalizeList(tt.in, tt.sorted)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeListIdempotent(t *testing.T) {
	inputs := []any{
		[]any{" Cloud ", "SaaS", "cloud", ""},
		"b,A,a,c",
		`{x,Y,y}`,
	}
	for _, in := range inputs {
		once := converter.NormalizeList(in, true)
		assert.Equal(t, once, converter.NormalizeList(once, true))
		assert.Equal(t, once, converter.NormalizeList(toAny(once), true))
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func TestParseOrdering(t *testing.T) {
	got := converter.ParseOrdering(" last_name:DESC, first_name ,title:sideways,,:desc")
	assert.Equal(t, []converter.OrderTerm{
		{Field: "last_name", Direction: vql.Desc},
		{Field: "first_name", Direction: vql.Asc},
		{Field: "title", Direction: vql.Asc},
	}, got)
	assert.Empty(t, converter.ParseOrdering(""))
	assert.Equal(t, "last_name:desc", got[0].String())
}
