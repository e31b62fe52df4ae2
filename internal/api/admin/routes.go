package admin

import (
	"net/http"

	"github.com/johnwards/leadsearch/internal/listing"
	"github.com/johnwards/leadsearch/internal/store"
)

// RegisterRoutes registers all admin API endpoints on the mux.
func RegisterRoutes(mux *http.ServeMux, svc *listing.Service, rs store.RecordStore) {
	h := &Handler{svc: svc, records: rs}

	mux.HandleFunc("POST /_admin/cache/flush", h.FlushCache)
	mux.HandleFunc("POST /_admin/reset", h.Reset)
	mux.HandleFunc("POST /_admin/seed", h.SeedData)
}
