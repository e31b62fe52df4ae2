// Package listing runs a list request end to end: compile the filter
// parameters, consult the result cache, call the search service (or the
// local snapshot when it is down), map the records and build the page.
package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/johnwards/leadsearch/internal/cache"
	"github.com/johnwards/leadsearch/internal/converter"
	"github.com/johnwards/leadsearch/internal/domain"
	"github.com/johnwards/leadsearch/internal/pagination"
	"github.com/johnwards/leadsearch/internal/searchclient"
	"github.com/johnwards/leadsearch/internal/transform"
	"github.com/johnwards/leadsearch/internal/vql"
)

// ErrNotFound is returned by Get when no record has the requested uuid.
var ErrNotFound = errors.New("record not found")

// Searcher is the search service.
type Searcher interface {
	Search(ctx context.Context, entity domain.Entity, body any) (*searchclient.Response, error)
	SearchWhere(ctx context.Context, entity domain.Entity, body any) (*searchclient.Response, error)
	Count(ctx context.Context, entity domain.Entity, body any) (int64, error)
}

// Fallback answers VQL queries locally while the search service is
// unavailable.
type Fallback interface {
	Search(ctx context.Context, entity domain.Entity, q *vql.Query) ([]json.RawMessage, error)
	Count(ctx context.Context, entity domain.Entity, q *vql.Query) (int64, error)
}

// Deps are the collaborators of a Service. Cache and Fallback are optional.
type Deps struct {
	Converter   *converter.Converter
	Searcher    Searcher
	Transformer *transform.Transformer
	Cache       cache.Store
	CacheOpts   cache.PageCacheOptions
	Fallback    Fallback
	Logger      *slog.Logger
}

type Service struct {
	conv     *converter.Converter
	searcher Searcher
	tr       *transform.Transformer
	pages    *cache.PageCache[domain.ListResponse]
	counts   *cache.PageCache[domain.CountResponse]
	fallback Fallback
	logger   *slog.Logger
}

func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pageOpts, countOpts := d.CacheOpts, d.CacheOpts
	pageOpts.Name, countOpts.Name = "pages", "counts"
	if pageOpts.Logger == nil {
		pageOpts.Logger, countOpts.Logger = logger, logger
	}
	return &Service{
		conv:     d.Converter,
		searcher: d.Searcher,
		tr:       d.Transformer,
		pages:    cache.NewPageCache[domain.ListResponse](d.Cache, pageOpts),
		counts:   cache.NewPageCache[domain.CountResponse](d.Cache, countOpts),
		fallback: d.Fallback,
		logger:   logger,
	}
}

// ListRequest is one list call.
type ListRequest struct {
	Entity domain.Entity
	Params converter.Params
	// Target is converter.TargetVQL (default) or converter.TargetWhere.
	Target string
	// BaseURL is the request URL that next/previous links are built from.
	BaseURL   string
	UseCursor bool
}

// List returns one page of list items.
func (s *Service) List(ctx context.Context, req ListRequest) (*domain.ListResponse, error) {
	limit, offset, err := s.conv.Window(req.Params)
	if err != nil {
		return nil, err
	}

	body, err := s.Compile(req.Entity, req.Params, req.Target)
	if err != nil {
		return nil, err
	}
	filtersApplied := false
	switch b := body.(type) {
	case *vql.Query:
		filtersApplied = b.Filters != nil
	case *converter.WhereRequest:
		filtersApplied = b.Where != nil
	}

	key := cache.Key(string(req.Entity), "list", req.Target, body, req.BaseURL, req.UseCursor)
	if hit := s.pages.Lookup(ctx, key); hit.IsHit() {
		page := hit.Value()
		return &page, nil
	}

	raws, usingFallback, err := s.fetch(ctx, req.Entity, body)
	if err != nil {
		return nil, err
	}

	page, err := s.page(req.Entity, raws, pageInput{
		baseURL:        req.BaseURL,
		limit:          limit,
		offset:         offset,
		useCursor:      req.UseCursor,
		filtersApplied: filtersApplied,
		ordering:       s.conv.EffectiveOrdering(req.Entity, req.Params),
		usingFallback:  usingFallback,
	})
	if err != nil {
		return nil, err
	}
	if !usingFallback {
		s.pages.Save(ctx, key, *page)
	}
	return page, nil
}

// Query runs a raw VQL query body and pages the result like List.
func (s *Service) Query(ctx context.Context, entity domain.Entity, raw []byte, baseURL string, useCursor bool) (*domain.ListResponse, error) {
	if _, err := converter.SchemaFor(entity); err != nil {
		return nil, err
	}
	q, err := vql.ParseJSON(raw)
	if err != nil {
		return nil, err
	}
	limit, _, _ := s.conv.Window(converter.Params{Limit: q.Limit})
	q.Limit = &limit

	raws, usingFallback, err := s.fetch(ctx, entity, q)
	if err != nil {
		return nil, err
	}
	ordering := ""
	if q.SortBy != "" {
		ordering = q.SortBy + ":" + string(q.SortDirection)
	}
	return s.page(entity, raws, pageInput{
		baseURL:        baseURL,
		limit:          limit,
		offset:         q.Offset,
		useCursor:      useCursor,
		filtersApplied: q.Filters != nil,
		ordering:       ordering,
		usingFallback:  usingFallback,
	})
}

// Get returns the full view of one record.
func (s *Service) Get(ctx context.Context, entity domain.Entity, id string) (any, error) {
	one := 1
	q, err := s.conv.ToQuery(entity, converter.Params{Limit: &one})
	if err != nil {
		return nil, err
	}
	q = q.AndWith(vql.Cond("uuid", vql.Eq, id))

	raws, _, err := s.fetch(ctx, entity, q)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("%s %s: %w", entity.Singular(), id, ErrNotFound)
	}
	// A record that cannot be mapped is logged and counted by Batch and
	// reported as missing.
	res := s.tr.Batch(entity, raws[:1], transform.ModeFull)
	if res.Successful == 0 {
		return nil, fmt.Errorf("%s %s: %w", entity.Singular(), id, ErrNotFound)
	}
	return res.Records[0], nil
}

// Count returns the number of records matching p.
func (s *Service) Count(ctx context.Context, entity domain.Entity, p converter.Params) (*domain.CountResponse, error) {
	q, err := s.conv.ToQuery(entity, p)
	if err != nil {
		return nil, err
	}
	key := cache.Key(string(entity), "count", q.Filters, q.Distinct)
	if hit := s.counts.Lookup(ctx, key); hit.IsHit() {
		res := hit.Value()
		return &res, nil
	}

	n, err := s.searcher.Count(ctx, entity, q)
	var unavailable *searchclient.UnavailableError
	if errors.As(err, &unavailable) && s.fallback != nil {
		s.logger.Warn("search service unavailable, counting from snapshot", "entity", entity, "error", err)
		n, err = s.fallback.Count(ctx, entity, q)
		if err != nil {
			return nil, fmt.Errorf("fallback count: %w", err)
		}
		return &domain.CountResponse{Count: n}, nil
	}
	if err != nil {
		return nil, err
	}
	res := domain.CountResponse{Count: n}
	s.counts.Save(ctx, key, res)
	return &res, nil
}

// Compile returns the request body the search service would receive.
func (s *Service) Compile(entity domain.Entity, p converter.Params, target string) (any, error) {
	switch target {
	case "", converter.TargetVQL:
		return s.conv.ToQuery(entity, p)
	case converter.TargetWhere:
		return s.conv.ToWhere(entity, p)
	}
	return nil, vql.NewValidationError("target", fmt.Sprintf("unknown target %q", target))
}

// Invalidate drops cached pages for entity. Contacts carry denormalized
// company fields, so a company write also drops contact pages. Failures are
// logged only.
func (s *Service) Invalidate(ctx context.Context, entity domain.Entity) {
	namespaces := []domain.Entity{entity}
	if entity == domain.Companies {
		namespaces = append(namespaces, domain.Contacts)
	}
	for _, ns := range namespaces {
		_ = s.pages.Invalidate(ctx, string(ns))
	}
}

// Flush drops every cached page.
func (s *Service) Flush(ctx context.Context) error {
	var errs []error
	for _, e := range domain.Entities() {
		if err := s.pages.Invalidate(ctx, string(e)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fetch sends body and returns the raw records. VQL queries fall back to the
// snapshot when the search service is unreachable.
func (s *Service) fetch(ctx context.Context, entity domain.Entity, body any) ([]json.RawMessage, bool, error) {
	var (
		resp *searchclient.Response
		err  error
	)
	q, isVQL := body.(*vql.Query)
	if isVQL {
		resp, err = s.searcher.Search(ctx, entity, q)
	} else {
		resp, err = s.searcher.SearchWhere(ctx, entity, body)
	}

	var unavailable *searchclient.UnavailableError
	if errors.As(err, &unavailable) && isVQL && s.fallback != nil {
		s.logger.Warn("search service unavailable, serving from snapshot",
			"entity", entity,
			"attempts", unavailable.Attempts,
			"error", unavailable.Err,
		)
		raws, ferr := s.fallback.Search(ctx, entity, q)
		if ferr != nil {
			return nil, false, fmt.Errorf("fallback search: %w", ferr)
		}
		return raws, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return resp.Data, false, nil
}

type pageInput struct {
	baseURL        string
	limit          int
	offset         int
	useCursor      bool
	filtersApplied bool
	ordering       string
	usingFallback  bool
}

func (s *Service) page(entity domain.Entity, raws []json.RawMessage, in pageInput) (*domain.ListResponse, error) {
	batch := s.tr.Batch(entity, raws, transform.ModeListItem)

	// Links use the raw page size, skipped records included.
	next, prev, err := pagination.BuildLinks(in.baseURL, &in.limit, in.offset, len(raws), in.useCursor)
	if err != nil {
		return nil, err
	}

	results := batch.Records
	if results == nil {
		results = []any{}
	}
	return &domain.ListResponse{
		Next:     next,
		Previous: prev,
		Results:  results,
		Meta: pagination.BuildMetadata(pagination.MetadataInput{
			FiltersApplied: in.filtersApplied,
			Ordering:       in.ordering,
			UseCursor:      in.useCursor,
			Returned:       len(results),
			PageSizeCap:    s.conv.MaxPageSize(),
			UsingFallback:  in.usingFallback,
		}),
	}, nil
}
