package records

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/johnwards/leadsearch/internal/api"
	"github.com/johnwards/leadsearch/internal/converter"
	"github.com/johnwards/leadsearch/internal/domain"
	"github.com/johnwards/leadsearch/internal/listing"
	"github.com/johnwards/leadsearch/internal/store"
)

// Handler serves the per-entity REST endpoints.
type Handler struct {
	svc     *listing.Service
	records store.RecordStore
}

// List handles GET /api/v1/{entity}.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entity, err := domain.ParseEntity(r.PathValue("entity"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	query, target := splitTarget(r.URL.Query())
	params, err := converter.ParamsFromQuery(query)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}

	page, err := h.svc.List(r.Context(), listing.ListRequest{
		Entity:    entity,
		Params:    params,
		Target:    target,
		BaseURL:   api.RequestURL(r),
		UseCursor: !query.Has("offset"),
	})
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, page)
}

// Search handles POST /api/v1/{entity}/search. The body carries the same
// parameters as the list query string.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	entity, err := domain.ParseEntity(r.PathValue("entity"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	body, err := api.DecodeBody(r)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	params, err := converter.ParseParams(body)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	_, hasOffset := body["offset"]

	page, err := h.svc.List(r.Context(), listing.ListRequest{
		Entity:    entity,
		Params:    params,
		Target:    r.URL.Query().Get("target"),
		BaseURL:   api.RequestURL(r),
		UseCursor: !hasOffset,
	})
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, page)
}

// Query handles POST /api/v1/{entity}/query with a raw filter query body.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	entity, err := domain.ParseEntity(r.PathValue("entity"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	body, err := api.ReadBody(r)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}

	page, err := h.svc.Query(r.Context(), entity, body, api.RequestURL(r), r.URL.Query().Get("paging") == "cursor")
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, page)
}

// Count handles GET /api/v1/{entity}/count.
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	entity, err := domain.ParseEntity(r.PathValue("entity"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	params, err := converter.ParamsFromQuery(r.URL.Query())
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}

	res, err := h.svc.Count(r.Context(), entity, params)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

// Compile handles POST /api/v1/{entity}/compile. It returns the request body
// the search service would receive without sending it.
func (h *Handler) Compile(w http.ResponseWriter, r *http.Request) {
	entity, err := domain.ParseEntity(r.PathValue("entity"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	body, err := api.DecodeBody(r)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	params, err := converter.ParseParams(body)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}

	compiled, err := h.svc.Compile(entity, params, r.URL.Query().Get("target"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, compiled)
}

// Get handles GET /api/v1/{entity}/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	entity, err := domain.ParseEntity(r.PathValue("entity"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}

	rec, err := h.svc.Get(r.Context(), entity, r.PathValue("id"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, rec)
}

// Create handles POST /api/v1/{entity}.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	entity, err := domain.ParseEntity(r.PathValue("entity"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	body, err := api.DecodeBody(r)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}

	raw, err := h.records.Create(r.Context(), entity, body)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	h.svc.Invalidate(r.Context(), entity)
	api.WriteJSON(w, http.StatusCreated, json.RawMessage(raw))
}

// Update handles PATCH /api/v1/{entity}/{id}. Keys set to null are removed.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	entity, err := domain.ParseEntity(r.PathValue("entity"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	body, err := api.DecodeBody(r)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}

	raw, err := h.records.Update(r.Context(), entity, r.PathValue("id"), body)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	h.svc.Invalidate(r.Context(), entity)
	api.WriteJSON(w, http.StatusOK, json.RawMessage(raw))
}

// Delete handles DELETE /api/v1/{entity}/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	entity, err := domain.ParseEntity(r.PathValue("entity"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}

	if err := h.records.Delete(r.Context(), entity, r.PathValue("id")); err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	h.svc.Invalidate(r.Context(), entity)
	w.WriteHeader(http.StatusNoContent)
}

// splitTarget removes the compilation target selector from the list query.
func splitTarget(q url.Values) (url.Values, string) {
	target := q.Get("target")
	q.Del("target")
	return q, target
}
