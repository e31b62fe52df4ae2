package records

import (
	"net/http"

	"github.com/johnwards/leadsearch/internal/listing"
	"github.com/johnwards/leadsearch/internal/store"
)

// RegisterRoutes adds the per-entity endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, svc *listing.Service, rs store.RecordStore) {
	h := &Handler{svc: svc, records: rs}

	mux.HandleFunc("GET /api/v1/{entity}", h.List)
	mux.HandleFunc("POST /api/v1/{entity}", h.Create)
	mux.HandleFunc("POST /api/v1/{entity}/search", h.Search)
	mux.HandleFunc("POST /api/v1/{entity}/query", h.Query)
	mux.HandleFunc("GET /api/v1/{entity}/count", h.Count)
	mux.HandleFunc("POST /api/v1/{entity}/compile", h.Compile)
	mux.HandleFunc("GET /api/v1/{entity}/{id}", h.Get)
	mux.HandleFunc("PATCH /api/v1/{entity}/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/{entity}/{id}", h.Delete)
}
