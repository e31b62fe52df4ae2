package vql_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnwards/leadsearch/internal/vql"
)

func validationErrors(t *testing.T, err error) []vql.FieldError {
	t.Helper()
	var verr *vql.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Errors
}

func TestParseJSON_FullQuery(t *testing.T) {
	q, err := vql.ParseJSON([]byte(`{
		"filters": {"and": [
			{"field": "title", "operator": "contains", "value": "engineer"},
			{"or": [
				{"field": "seniority", "operator": "in", "value": ["vp", "director"]},
				{"field": "email", "operator": "exists"}
			]}
		]},
		"select_columns": ["uuid", "title"],
		"company_config": {"populate": true, "select_columns": ["name"]},
		"limit": 25,
		"offset": 50,
		"sort_by": "created_at",
		"sort_direction": "desc"
	}`))
	require.NoError(t, err)

	require.NotNil(t, q.Filters)
	require.Len(t, q.Filters.And, 2)
	assert.Equal(t, vql.Cond("title", vql.Contains, "engineer"), q.Filters.And[0])

	inner, ok := q.Filters.And[1].(*vql.Group)
	require.True(t, ok, "second node should be a group")
	assert.True(t, inner.IsOr())
	assert.Equal(t, vql.Cond("seniority", vql.In, []any{"vp", "director"}), inner.Or[0])
	assert.Equal(t, vql.Cond("email", vql.Exists, nil), inner.Or[1])

	assert.Equal(t, []string{"uuid", "title"}, q.SelectColumns)
	assert.Equal(t, vql.PopulateConfig{Populate: true, SelectColumns: []string{"name"}}, q.Populate["company"])
	require.NotNil(t, q.Limit)
	assert.Equal(t, 25, *q.Limit)
	assert.Equal(t, 50, q.Offset)
	assert.Equal(t, "created_at", q.SortBy)
	assert.Equal(t, vql.Desc, q.SortDirection)
}

func TestParseJSON_Defaults(t *testing.T) {
	q, err := vql.ParseJSON([]byte(`{}`))
	require.NoError(t, err)
	assert.Nil(t, q.Filters)
	assert.Nil(t, q.Limit)
	assert.Equal(t, 0, q.Offset)
	assert.Equal(t, vql.Asc, q.SortDirection)
}

func TestParseJSON_NumbersStayIntegral(t *testing.T) {
	q, err := vql.ParseJSON([]byte(`{"filters":{"and":[{"field":"employees_count","operator":"gte","value":100}]}}`))
	require.NoError(t, err)
	c := q.Filters.And[0].(*vql.Condition)
	assert.Equal(t, int64(100), c.Value)
}

func TestParseJSON_Malformed(t *testing.T) {
	for _, input := range []string{`{"filters":`, `not json`, `{} {}`} {
		t.Run(input, func(t *testing.T) {
			_, err := vql.ParseJSON([]byte(input))
			var malformed *vql.MalformedJSONError
			require.ErrorAs(t, err, &malformed)

			var verr *vql.ValidationError
			assert.NotErrorAs(t, err, &verr)
		})
	}
}

func TestParseJSON_NotAnObject(t *testing.T) {
	_, err := vql.ParseJSON([]byte(`[1,2]`))
	errs := validationErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "", errs[0].Path)
}

func TestParse_ErrorPaths(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPath string
	}{
		{"unknown top-level key", `{"filter": {}}`, "filter"},
		{"unknown condition key", `{"filters":{"and":[{"field":"a","operator":"eq","value":1,"vaule":2}]}}`, "filters.and[0].vaule"},
		{"nested value", `{"filters":{"and":[{"field":"a","operator":"eq","value":1},{"or":[{"field":"b","operator":"eq","value":1},{"field":"c","operator":"in","value":"x"}]}]}}`, "filters.and[1].or[1].value"},
		{"missing field", `{"filters":{"or":[{"operator":"eq","value":1}]}}`, "filters.or[0].field"},
		{"bad operator", `{"filters":{"and":[{"field":"a","operator":"like","value":"x"}]}}`, "filters.and[0].operator"},
		{"missing value", `{"filters":{"and":[{"field":"a","operator":"eq"}]}}`, "filters.and[0].value"},
		{"contains needs string", `{"filters":{"and":[{"field":"a","operator":"contains","value":3}]}}`, "filters.and[0].value"},
		{"empty in list", `{"filters":{"and":[{"field":"a","operator":"nin","value":[]}]}}`, "filters.and[0].value"},
		{"list element", `{"filters":{"and":[{"field":"a","operator":"in","value":["x",{"y":1}]}]}}`, "filters.and[0].value[1]"},
		{"exists with string", `{"filters":{"and":[{"field":"a","operator":"exists","value":"yes"}]}}`, "filters.and[0].value"},
		{"unknown group key", `{"filters":{"and":[],"not":[]}}`, "filters.not"},
		{"both branches", `{"filters":{"and":[],"or":[]}}`, "filters"},
		{"root is condition", `{"filters":{"field":"a","operator":"eq","value":1}}`, "filters"},
		{"node not object", `{"filters":{"and":["a"]}}`, "filters.and[0]"},
		{"zero limit", `{"limit":0}`, "limit"},
		{"negative offset", `{"offset":-1}`, "offset"},
		{"fractional limit", `{"limit":2.5}`, "limit"},
		{"bad direction", `{"sort_direction":"up"}`, "sort_direction"},
		{"bad populate key", `{"company_config":{"populate":true,"columns":[]}}`, "company_config.columns"},
		{"select column type", `{"select_columns":["a",""]}`, "select_columns[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := vql.ParseJSON([]byte(tt.input))
			errs := validationErrors(t, err)
			paths := make([]string, len(errs))
			for i, e := range errs {
				paths[i] = e.Path
			}
			assert.Contains(t, paths, tt.wantPath)
		})
	}
}

func TestParse_CollectsAllErrors(t *testing.T) {
	_, err := vql.ParseJSON([]byte(`{"limit":0,"offset":-2,"bogus":true}`))
	errs := validationErrors(t, err)
	assert.Len(t, errs, 3)
}

func TestParse_AcceptsUppercaseDirection(t *testing.T) {
	q, err := vql.Parse(map[string]any{"sort_direction": "DESC"})
	require.NoError(t, err)
	assert.Equal(t, vql.Desc, q.SortDirection)
}

func TestParseGroup(t *testing.T) {
	g, err := vql.ParseGroup(map[string]any{
		"or": []any{
			map[string]any{"field": "city", "operator": "eq", "value": "Paris"},
		},
	})
	require.NoError(t, err)
	assert.True(t, g.IsOr())

	_, err = vql.ParseGroup("nope")
	errs := validationErrors(t, err)
	assert.Equal(t, "filters", errs[0].Path)
}

func TestQueryMarshalJSON(t *testing.T) {
	limit := 10
	q := &vql.Query{
		Filters:       vql.And(vql.Cond("city", vql.Eq, "Berlin")),
		SelectColumns: []string{"uuid"},
		Populate:      map[string]vql.PopulateConfig{"company": {Populate: true}},
		Limit:         &limit,
		Offset:        20,
		SortBy:        "name",
	}
	b, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"filters": {"and": [{"field": "city", "operator": "eq", "value": "Berlin"}]},
		"select_columns": ["uuid"],
		"company_config": {"populate": true},
		"limit": 10,
		"offset": 20,
		"sort_by": "name",
		"sort_direction": "asc"
	}`, string(b))
}

func TestQueryMarshalJSON_MatchAll(t *testing.T) {
	b, err := json.Marshal(&vql.Query{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"filters": null, "offset": 0, "sort_direction": "asc"}`, string(b))
}

func TestQueryRoundTrip(t *testing.T) {
	in := `{"filters":{"or":[{"field":"a","operator":"nin","value":["x","y"]},{"and":[{"field":"b","operator":"nexists","value":null}]}]},"offset":5,"sort_direction":"desc"}`
	var q vql.Query
	require.NoError(t, json.Unmarshal([]byte(in), &q))
	out, err := json.Marshal(&q)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}
