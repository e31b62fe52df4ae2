package transform_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnwards/leadsearch/internal/domain"
	"github.com/johnwards/leadsearch/internal/transform"
)

const nestedContact = `{
	"uuid": "p1",
	"first_name": "Ada",
	"last_name": "Lovelace",
	"email": "ada@acme.test",
	"title": "CTO",
	"departments": ["engineering", "research"],
	"company_id": "c1",
	"company": {
		"uuid": "c1",
		"name": "Acme",
		"domain": "acme.test",
		"city": "Leeds",
		"country": "UK",
		"employees_count": 250,
		"annual_revenue": 1200000,
		"industries": ["Software", "SaaS"],
		"technologies": ["go", "postgres"]
	}
}`

const flatContact = `{
	"uuid": "p1",
	"first_name": "Ada",
	"last_name": "Lovelace",
	"email": "ada@acme.test",
	"title": "CTO",
	"departments": "{engineering,research}",
	"company_id": "c1",
	"company_name": "Acme",
	"company_domain": "acme.test",
	"company_city": "Leeds",
	"company_country": "UK",
	"company_employees_count": "250",
	"company_annual_revenue": 1200000,
	"company_industries": ["Software", "SaaS"],
	"company_technologies": ["go", "postgres"]
}`

func newTransformer(reg prometheus.Registerer) *transform.Transformer {
	return transform.New(transform.Options{
		Registerer: reg,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestContactShapesAreEquivalent(t *testing.T) {
	nested, err := transform.ContactListItem([]byte(nestedContact))
	require.NoError(t, err)
	flat, err := transform.ContactListItem([]byte(flatContact))
	require.NoError(t, err)
	assert.Equal(t, nested, flat)

	nestedFull, err := transform.ContactDetail([]byte(nestedContact))
	require.NoError(t, err)
	flatFull, err := transform.ContactDetail([]byte(flatContact))
	require.NoError(t, err)
	assert.Equal(t, nestedFull, flatFull)
}

func TestContactListItem(t *testing.T) {
	c, err := transform.ContactListItem([]byte(nestedContact))
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", c.Name)
	assert.Equal(t, "engineering, research", c.Departments)
	assert.Equal(t, "Acme", c.CompanyName)
	assert.Equal(t, "Leeds", c.CompanyCity)
	require.NotNil(t, c.CompanyEmployees)
	assert.Equal(t, int64(250), *c.CompanyEmployees)
	require.NotNil(t, c.CompanyIndustry)
	assert.Equal(t, "Software", *c.CompanyIndustry)
	assert.Equal(t, "go, postgres", c.CompanyTechnologies)
}

func TestContactDetail_EmptyListsAndNoCompany(t *testing.T) {
	c, err := transform.ContactDetail([]byte(`{"uuid": "p2", "first_name": "Grace", "departments": null}`))
	require.NoError(t, err)

	assert.Equal(t, "Grace", c.Name)
	assert.Equal(t, []string{}, c.Departments)
	assert.Equal(t, []string{}, c.CompanyIndustries)
	assert.Nil(t, c.CompanyIndustry)
	assert.Nil(t, c.CompanyEmployees)
	assert.Empty(t, c.CompanyID)
}

func TestContactCompanyIDFallsBackToNestedUUID(t *testing.T) {
	c, err := transform.ContactListItem([]byte(`{"uuid": "p3", "company": {"uuid": "c9", "name": "Initech"}}`))
	require.NoError(t, err)
	assert.Equal(t, "c9", c.CompanyID)
	assert.Equal(t, "Initech", c.CompanyName)
}

func TestContactMixedCompanyShapes(t *testing.T) {
	c, err := transform.ContactListItem([]byte(`{
		"uuid": "p4",
		"company": {"uuid": "c1", "city": null},
		"company_name": "Acme",
		"company_city": "Leeds",
		"company_employees_count": 40
	}`))
	require.NoError(t, err)
	assert.Equal(t, "c1", c.CompanyID)
	assert.Equal(t, "Acme", c.CompanyName)
	assert.Empty(t, c.CompanyCity, "an explicit null on the nested company wins")
	require.NotNil(t, c.CompanyEmployees)
	assert.EqualValues(t, 40, *c.CompanyEmployees)
}

func TestCompanyViews(t *testing.T) {
	raw := []byte(`{
		"uuid": "c1",
		"name": "Acme",
		"employees_count": 250,
		"founded_year": "1999",
		"industries": [],
		"technologies": ["go"],
		"keywords": "{b2b,\"api\"}"
	}`)

	item, err := transform.CompanyListItem(raw)
	require.NoError(t, err)
	assert.Nil(t, item.Industry)
	assert.Equal(t, "go", item.Technologies)
	assert.Equal(t, "b2b, api", item.Keywords)
	require.NotNil(t, item.FoundedYear)
	assert.Equal(t, int64(1999), *item.FoundedYear)
	assert.Nil(t, item.AnnualRevenue)

	full, err := transform.CompanyDetail(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{}, full.Industries)
	assert.Equal(t, []string{"b2b", "api"}, full.Keywords)
}

func TestRecordMappingErrors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"missing uuid", `{"name": "Acme"}`, "uuid"},
		{"not an object", `["c1"]`, ""},
		{"invalid json", `{"uuid":`, ""},
		{"list of wrong type", `{"uuid": "c1", "industries": 4}`, "industries"},
		{"number of wrong type", `{"uuid": "c1", "employees_count": "lots"}`, "employees_count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transform.CompanyListItem([]byte(tt.raw))
			var merr *transform.RecordMappingError
			require.ErrorAs(t, err, &merr)
			assert.Equal(t, tt.field, merr.Field)
		})
	}

	_, err := transform.ContactListItem([]byte(`{"uuid": "p1", "company": {"employees_count": {}}}`))
	var merr *transform.RecordMappingError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "company.employees_count", merr.Field)
}

func TestBatch_PartialFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	tr := newTransformer(reg)

	raws := []json.RawMessage{
		json.RawMessage(nestedContact),
		json.RawMessage(`{"first_name": "no uuid"}`),
		json.RawMessage(flatContact),
		json.RawMessage(`"scalar"`),
		json.RawMessage(`{"uuid": "p4"}`),
	}
	res := tr.Batch(domain.Contacts, raws, transform.ModeListItem)

	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 3, res.Successful)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Records, 3)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Equal(t, 3, res.Errors[1].Index)

	_, ok := res.Records[0].(domain.ContactListItem)
	assert.True(t, ok)

	records, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, records)
}

func TestBatch_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	tr := newTransformer(reg)

	tr.Batch(domain.Companies, []json.RawMessage{
		json.RawMessage(`{"uuid": "c1"}`),
		json.RawMessage(`{}`),
	}, transform.ModeFull)

	assert.Equal(t, 1, testutil.CollectAndCount(reg, "leadsearch_transform_batch_seconds"))
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "leadsearch_transform_records_total"))
}

func TestBatch_FullModeAndUnknownEntity(t *testing.T) {
	tr := newTransformer(nil)

	res := tr.Batch(domain.Companies, []json.RawMessage{json.RawMessage(`{"uuid": "c1", "industries": ["x"]}`)}, transform.ModeFull)
	require.Len(t, res.Records, 1)
	detail, ok := res.Records[0].(domain.CompanyDetail)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, detail.Industries)

	res = tr.Batch(domain.Entity("deals"), []json.RawMessage{json.RawMessage(`{"uuid": "d1"}`)}, transform.ModeFull)
	assert.Equal(t, 1, res.Failed)
	assert.Empty(t, res.Records)
}

func TestModeSelectsView(t *testing.T) {
	item, err := transform.Contact([]byte(nestedContact), transform.ModeListItem)
	require.NoError(t, err)
	assert.IsType(t, domain.ContactListItem{}, item)

	detail, err := transform.Contact([]byte(nestedContact), transform.ModeFull)
	require.NoError(t, err)
	assert.IsType(t, domain.ContactDetail{}, detail)

	company, err := transform.Company([]byte(`{"uuid": "c1", "keywords": "{b2b,saas}"}`), transform.ModeListItem)
	require.NoError(t, err)
	assert.Equal(t, "b2b, saas", company.(domain.CompanyListItem).Keywords)
}
