package admin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/johnwards/leadsearch/internal/api"
	"github.com/johnwards/leadsearch/internal/listing"
	"github.com/johnwards/leadsearch/internal/seed"
	"github.com/johnwards/leadsearch/internal/store"
)

// Handler serves the admin API at /_admin/.
type Handler struct {
	svc     *listing.Service
	records store.RecordStore
}

// FlushCache drops every cached page and count.
func (h *Handler) FlushCache(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Flush(r.Context()); err != nil {
		api.WriteError(w, http.StatusInternalServerError,
			api.NewInternalError(fmt.Sprintf("failed to flush cache: %s", err), api.CorrelationID(r.Context())))
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Reset deletes every snapshot record and re-runs seeds.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := ResetData(r.Context(), h.records, h.svc); err != nil {
		api.WriteError(w, http.StatusInternalServerError,
			api.NewInternalError(err.Error(), api.CorrelationID(r.Context())))
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SeedData runs seed data without dropping existing data first.
func (h *Handler) SeedData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := seed.Seed(ctx, h.records); err != nil {
		api.WriteError(w, http.StatusInternalServerError,
			api.NewInternalError(fmt.Sprintf("failed to seed: %s", err), api.CorrelationID(ctx)))
		return
	}
	_ = h.svc.Flush(ctx)
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ResetData clears the snapshot, re-seeds it and flushes the cache.
// Exported for reuse by tests or other callers.
func ResetData(ctx context.Context, rs store.RecordStore, svc *listing.Service) error {
	if err := rs.Reset(ctx); err != nil {
		return err
	}
	if err := seed.Seed(ctx, rs); err != nil {
		return fmt.Errorf("re-seed: %w", err)
	}
	if err := svc.Flush(ctx); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	return nil
}
