package converter_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnwards/leadsearch/internal/converter"
	"github.com/johnwards/leadsearch/internal/vql"
)

func TestParseParams_Envelope(t *testing.T) {
	p, err := converter.ParseParams(map[string]any{
		"search":        "acme",
		"ordering":      "name:desc",
		"distinct":      "true",
		"fields":        "uuid,name",
		"limit":         "25",
		"offset":        float64(50),
		"cursor":        "",
		"industries":    []any{"SaaS"},
		"employees_min": 10,
	})
	require.NoError(t, err)

	assert.Equal(t, "acme", p.Search)
	assert.Equal(t, "name:desc", p.Ordering)
	assert.True(t, p.Distinct)
	assert.Equal(t, []string{"uuid", "name"}, p.Fields)
	require.NotNil(t, p.Limit)
	assert.Equal(t, 25, *p.Limit)
	assert.Nil(t, p.PageSize)
	assert.Equal(t, 50, p.Offset)
	assert.Equal(t, map[string]any{"industries": []any{"SaaS"}, "employees_min": 10}, p.Values)
}

func TestParseParams_Errors(t *testing.T) {
	_, err := converter.ParseParams(map[string]any{
		"limit":     "lots",
		"offset":    "-1",
		"page_size": 0,
	})
	var verr *vql.ValidationError
	require.ErrorAs(t, err, &verr)

	paths := map[string]bool{}
	for _, fe := range verr.Errors {
		paths[fe.Path] = true
	}
	assert.Equal(t, map[string]bool{"limit": true, "offset": true, "page_size": true}, paths)
}

func TestParamsFromQuery_RepeatedKeys(t *testing.T) {
	q, err := url.ParseQuery("exclude_titles=Director&exclude_titles=VP&city=Leeds&limit=10")
	require.NoError(t, err)

	p, err := converter.ParamsFromQuery(q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Director", "VP"}, p.Values["exclude_titles"])
	assert.Equal(t, "Leeds", p.Values["city"])
	require.NotNil(t, p.Limit)
	assert.Equal(t, 10, *p.Limit)
}
