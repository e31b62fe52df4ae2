package pagination_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnwards/leadsearch/internal/domain"
	"github.com/johnwards/leadsearch/internal/pagination"
)

func intPtr(n int) *int { return &n }

func queryOf(t *testing.T, link *string) url.Values {
	t.Helper()
	require.NotNil(t, link)
	u, err := url.Parse(*link)
	require.NoError(t, err)
	return u.Query()
}

func TestBuildLinksFullFirstPage(t *testing.T) {
	next, prev, err := pagination.BuildLinks("http://api.test/api/v1/contacts?city=Paris", intPtr(25), 0, 25, false)
	require.NoError(t, err)
	assert.Nil(t, prev)

	q := queryOf(t, next)
	assert.Equal(t, "25", q.Get("offset"))
	assert.Equal(t, "25", q.Get("limit"))
	assert.Equal(t, "Paris", q.Get("city"))
}

func TestBuildLinksShortLastPage(t *testing.T) {
	next, prev, err := pagination.BuildLinks("http://api.test/api/v1/contacts?offset=25", intPtr(25), 25, 10, false)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, "0", queryOf(t, prev).Get("offset"))
}

func TestBuildLinksCursorMode(t *testing.T) {
	next, prev, err := pagination.BuildLinks("http://api.test/api/v1/companies?offset=10", intPtr(10), 10, 10, true)
	require.NoError(t, err)

	nq := queryOf(t, next)
	assert.Empty(t, nq.Get("offset"))
	off, err := pagination.DecodeCursor(nq.Get("cursor"))
	require.NoError(t, err)
	assert.Equal(t, 20, off)

	off, err = pagination.DecodeCursor(queryOf(t, prev).Get("cursor"))
	require.NoError(t, err)
	assert.Equal(t, 0, off)
}

func TestBuildLinksPreviousClampsAtZero(t *testing.T) {
	_, prev, err := pagination.BuildLinks("/api/v1/contacts", intPtr(50), 20, 3, false)
	require.NoError(t, err)
	assert.Equal(t, "0", queryOf(t, prev).Get("offset"))
}

func TestBuildLinksNoLimit(t *testing.T) {
	next, prev, err := pagination.BuildLinks("/api/v1/contacts", nil, 5, 5, false)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, "0", queryOf(t, prev).Get("offset"))
}

func TestBuildLinksBadBase(t *testing.T) {
	_, _, err := pagination.BuildLinks("http://[::1", intPtr(1), 0, 1, false)
	assert.Error(t, err)
}

func TestBuildMetadata(t *testing.T) {
	meta := pagination.BuildMetadata(pagination.MetadataInput{
		FiltersApplied: true,
		Ordering:       "last_name:asc",
		UseCursor:      true,
		Returned:       7,
		PageSizeCap:    100,
	})
	assert.Equal(t, domain.Metadata{
		PaginationStrategy: domain.StrategyCursor,
		CountMode:          domain.CountActual,
		FiltersApplied:     true,
		Ordering:           "last_name:asc",
		ReturnedRecords:    7,
		PageSizeCap:        100,
	}, meta)

	meta = pagination.BuildMetadata(pagination.MetadataInput{UsingFallback: true})
	assert.Equal(t, domain.StrategyOffset, meta.PaginationStrategy)
	assert.Equal(t, domain.CountEstimated, meta.CountMode)
	assert.True(t, meta.UsingFallback)
}
