package api_test

import (
	"encoding/json"
	"errors"
	"strings"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/johnwards/leadsearch/internal/api"
	"github.com/johnwards/leadsearch/internal/vql"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	data := map[string]string{"key": "value"}

	api.WriteJSON(rec, http.StatusOK, data)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	ct := rec.Header().Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var result map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result["key"] != "value" {
		t.Errorf("key = %q, want %q", result["key"], "value")
	}
}

func TestWriteJSONStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	api.WriteJSON(rec, http.StatusCreated, map[string]int{"id": 1})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestDecodeBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"limit": 5, "titles": ["CTO"]}`))
	body, err := api.DecodeBody(req)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["limit"] != float64(5) {
		t.Errorf("limit = %v, want 5", body["limit"])
	}

	req = httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	body, err = api.DecodeBody(req)
	if err != nil || len(body) != 0 {
		t.Errorf("empty body = %v, %v; want empty map", body, err)
	}
}

func TestDecodeBodyErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"limit": `))
	_, err := api.DecodeBody(req)
	var malformed *vql.MalformedJSONError
	if !errors.As(err, &malformed) {
		t.Errorf("err = %v, want *vql.MalformedJSONError", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[1, 2]`))
	_, err = api.DecodeBody(req)
	var validation *vql.ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("err = %v, want *vql.ValidationError", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`"`+strings.Repeat("a", 1<<20)+`"`))
	_, err = api.DecodeBody(req)
	if !errors.As(err, &validation) {
		t.Errorf("oversized body err = %v, want *vql.ValidationError", err)
	}
}

func TestRequestURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://api.test/api/v1/contacts?limit=5", http.NoBody)
	if got, want := api.RequestURL(req), "http://api.test/api/v1/contacts?limit=5"; got != want {
		t.Errorf("RequestURL = %q, want %q", got, want)
	}

	req.Header.Set("X-Forwarded-Proto", "https")
	if got, want := api.RequestURL(req), "https://api.test/api/v1/contacts?limit=5"; got != want {
		t.Errorf("RequestURL = %q, want %q", got, want)
	}
}
