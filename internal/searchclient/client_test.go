package searchclient_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnwards/leadsearch/internal/domain"
	"github.com/johnwards/leadsearch/internal/searchclient"
)

func newClient(t *testing.T, baseURL string, reg prometheus.Registerer) *searchclient.Client {
	t.Helper()
	c := searchclient.New(searchclient.Config{
		BaseURL:        baseURL,
		APIKey:         "secret",
		Timeout:        2 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	},
		searchclient.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		searchclient.WithRegisterer(reg),
	)
	t.Cleanup(c.Close)
	return c
}

func counterValue(t *testing.T, reg *prometheus.Registry, endpoint, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "leadsearch_search_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["endpoint"] == endpoint && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/contacts/query", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(10), body["limit"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success": true, "data": [{"uuid": "p1"}, {"uuid": "p2"}]}`)
	}))
	defer srv.Close()

	resp, err := newClient(t, srv.URL+"/", nil).Search(context.Background(), domain.Contacts, map[string]any{"limit": 10})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 2)
	assert.JSONEq(t, `{"uuid": "p1"}`, string(resp.Data[0]))
}

func TestSearchWhereAndCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/companies/where":
			_, _ = io.WriteString(w, `{"success": true, "data": []}`)
		case "/companies/count":
			_, _ = io.WriteString(w, `{"count": 42}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := newClient(t, srv.URL, nil)

	resp, err := c.SearchWhere(context.Background(), domain.Companies, map[string]any{"page": 1})
	require.NoError(t, err)
	assert.Empty(t, resp.Data)

	n, err := c.Count(context.Background(), domain.Companies, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestStatusErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"detail string", http.StatusBadRequest, `{"detail": "unknown field foo"}`, "unknown field foo"},
		{"detail list", http.StatusUnprocessableEntity, `{"detail": [{"loc": ["body"]}]}`, `[{"loc": ["body"]}]`},
		{"message key", http.StatusInternalServerError, `{"message": "boom"}`, "boom"},
		{"no body", http.StatusBadGateway, ``, "Bad Gateway"},
		{"success false", http.StatusOK, `{"success": false, "error": "query timeout"}`, "query timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			reg := prometheus.NewRegistry()
			_, err := newClient(t, srv.URL, reg).Search(context.Background(), domain.Contacts, map[string]any{})

			var svcErr *searchclient.ServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, tt.status, svcErr.Status)
			assert.Equal(t, tt.message, svcErr.Message)
			assert.Equal(t, "/contacts/query", svcErr.Endpoint)
			assert.Equal(t, int32(1), calls.Load())
			assert.Equal(t, float64(1), counterValue(t, reg, "/contacts/query", "service_error"))
		})
	}
}

func TestTransportErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				_ = conn.Close()
			}
			return
		}
		_, _ = io.WriteString(w, `{"success": true, "data": [{"uuid": "c1"}]}`)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	resp, err := newClient(t, srv.URL, reg).Search(context.Background(), domain.Companies, map[string]any{})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, float64(2), counterValue(t, reg, "/companies/query", "transport_error"))
	assert.Equal(t, float64(1), counterValue(t, reg, "/companies/query", "ok"))
}

func TestUnavailableAfterMaxAttempts(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url, nil).Search(context.Background(), domain.Contacts, map[string]any{})

	var unavailable *searchclient.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 3, unavailable.Attempts)
	assert.Equal(t, http.MethodPost, unavailable.Method)
	assert.Equal(t, "/contacts/query", unavailable.Endpoint)
	assert.Error(t, unavailable.Unwrap())
}

func TestCloseRebuildsClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"success": true, "data": []}`)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, nil)
	_, err := c.Search(context.Background(), domain.Contacts, map[string]any{})
	require.NoError(t, err)

	c.Close()
	_, err = c.Search(context.Background(), domain.Contacts, map[string]any{})
	require.NoError(t, err)
}
