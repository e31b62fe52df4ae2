// Package converter compiles flat filter parameters into either the VQL
// filter tree or the bucketed where clause. Both targets are built from the
// same per-entity field tables.
package converter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/johnwards/leadsearch/internal/domain"
	"github.com/johnwards/leadsearch/internal/pagination"
	"github.com/johnwards/leadsearch/internal/vql"
)

const (
	excludePrefix = "exclude_"
	hasPrefix     = "has_"
	minSuffix     = "_min"
	maxSuffix     = "_max"
	filtersKey    = "filters"
)

// Config holds the page-size policy.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Converter compiles Params for one of the two targets.
type Converter struct {
	cfg Config
}

// New returns a Converter. Zero page sizes fall back to 25 and 100.
func New(cfg Config) *Converter {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 25
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = cfg.MaxPageSize
	}
	return &Converter{cfg: cfg}
}

// MaxPageSize is the configured page-size cap.
func (c *Converter) MaxPageSize() int {
	return c.cfg.MaxPageSize
}

type textClause struct {
	field Field
	value string
}

type listClause struct {
	field  Field
	values []string
}

type rangeClause struct {
	field    string
	gte, lte any
}

type existsClause struct {
	field   string
	present bool
}

// plan is the target-independent reading of Params against a Schema.
type plan struct {
	search  string
	text    []textClause
	include []listClause
	exclude []listClause
	ranges  []rangeClause
	exists  []existsClause
	raw     *vql.Group
}

func (c *Converter) plan(s *Schema, p Params) (*plan, error) {
	pl := &plan{search: strings.TrimSpace(p.Search)}
	ranges := map[string]*rangeClause{}
	var errs []vql.FieldError

	keys := lo.Keys(p.Values)
	sort.Strings(keys)

	for _, key := range keys {
		v := p.Values[key]
		if isEmpty(v) {
			continue
		}

		switch {
		case key == filtersKey:
			g, err := rawGroup(v)
			if err != nil {
				var verr *vql.ValidationError
				if errors.As(err, &verr) {
					errs = append(errs, verr.Errors...)
					continue
				}
				errs = append(errs, vql.FieldError{Path: filtersKey, Message: err.Error()})
				continue
			}
			pl.raw = g

		case strings.HasPrefix(key, excludePrefix):
			f, ok := s.Lookup(strings.TrimPrefix(key, excludePrefix))
			if !ok {
				continue
			}
			if f.Kind != KindKeyword {
				errs = append(errs, vql.FieldError{Path: key, Message: "exclusion is only supported on list fields"})
				continue
			}
			if values := NormalizeList(v, true); len(values) > 0 {
				pl.exclude = append(pl.exclude, listClause{field: f, values: values})
			}

		case strings.HasPrefix(key, hasPrefix):
			f, ok := s.Lookup(strings.TrimPrefix(key, hasPrefix))
			if !ok {
				continue
			}
			present, err := cast.ToBoolE(first(v))
			if err != nil {
				errs = append(errs, vql.FieldError{Path: key, Message: "must be a boolean"})
				continue
			}
			pl.exists = append(pl.exists, existsClause{field: f.Name, present: present})

		case strings.HasSuffix(key, minSuffix), strings.HasSuffix(key, maxSuffix):
			param := strings.TrimSuffix(strings.TrimSuffix(key, minSuffix), maxSuffix)
			f, ok := s.Lookup(param)
			if !ok || f.Kind != KindRange {
				continue
			}
			n, err := number(v)
			if err != nil {
				errs = append(errs, vql.FieldError{Path: key, Message: "must be a number"})
				continue
			}
			r := rangeFor(ranges, f.Name)
			if strings.HasSuffix(key, minSuffix) {
				r.gte = n
			} else {
				r.lte = n
			}

		default:
			f, ok := s.Lookup(key)
			if !ok {
				continue
			}
			switch f.Kind {
			case KindText:
				if t := textValue(v); t != "" {
					pl.text = append(pl.text, textClause{field: f, value: t})
				}
			case KindKeyword:
				if values := NormalizeList(v, true); len(values) > 0 {
					pl.include = append(pl.include, listClause{field: f, values: values})
				}
			case KindRange:
				n, err := number(v)
				if err != nil {
					errs = append(errs, vql.FieldError{Path: key, Message: "must be a number"})
					continue
				}
				r := rangeFor(ranges, f.Name)
				r.gte, r.lte = n, n
			}
		}
	}

	if len(errs) > 0 {
		return nil, &vql.ValidationError{Errors: errs}
	}

	fields := lo.Keys(ranges)
	sort.Strings(fields)
	for _, name := range fields {
		pl.ranges = append(pl.ranges, *ranges[name])
	}
	return pl, nil
}

func rangeFor(ranges map[string]*rangeClause, field string) *rangeClause {
	r, ok := ranges[field]
	if !ok {
		r = &rangeClause{field: field}
		ranges[field] = r
	}
	return r
}

// ToQuery compiles p into the VQL request for entity.
func (c *Converter) ToQuery(entity domain.Entity, p Params) (*vql.Query, error) {
	s, err := SchemaFor(entity)
	if err != nil {
		return nil, err
	}
	limit, offset, err := c.Window(p)
	if err != nil {
		return nil, err
	}
	columns, err := selectColumns(s, p.Fields)
	if err != nil {
		return nil, err
	}
	pl, err := c.plan(s, p)
	if err != nil {
		return nil, err
	}

	q := &vql.Query{
		SelectColumns: columns,
		Limit:         &limit,
		Offset:        offset,
		SortDirection: vql.Asc,
		Distinct:      p.Distinct,
	}
	if s.RelatedEntity != "" {
		q.Populate = map[string]vql.PopulateConfig{
			s.RelatedEntity: {Populate: true, SelectColumns: s.RelatedColumns},
		}
	}
	if terms := sortTerms(s, p.Ordering); len(terms) > 0 {
		q.SortBy = terms[0].Field
		q.SortDirection = terms[0].Direction
	}
	if nodes := astNodes(s, pl); len(nodes) > 0 {
		q.Filters = vql.And(nodes...)
	}
	return q, nil
}

func astNodes(s *Schema, pl *plan) []vql.Node {
	var nodes []vql.Node
	if pl.search != "" {
		nodes = append(nodes, vql.Cond(s.SearchField, vql.Contains, pl.search))
	}
	for _, t := range pl.text {
		nodes = append(nodes, vql.Cond(t.field.Name, vql.Contains, t.value))
	}
	for _, l := range pl.include {
		nodes = append(nodes, vql.Cond(l.field.Name, vql.In, anyList(l.values)))
	}
	for _, l := range pl.exclude {
		if !l.field.Array {
			nodes = append(nodes, vql.Cond(l.field.Name, vql.Nin, anyList(l.values)))
			continue
		}
		// Negated containment on an array has no single-condition form.
		for _, v := range l.values {
			nodes = append(nodes, vql.Cond(l.field.Name, vql.NContains, v))
		}
	}
	for _, r := range pl.ranges {
		if r.gte != nil {
			nodes = append(nodes, vql.Cond(r.field, vql.Gte, r.gte))
		}
		if r.lte != nil {
			nodes = append(nodes, vql.Cond(r.field, vql.Lte, r.lte))
		}
	}
	for _, e := range pl.exists {
		op := vql.Exists
		if !e.present {
			op = vql.NExists
		}
		nodes = append(nodes, vql.Cond(e.field, op, nil))
	}
	if pl.raw != nil {
		nodes = append(nodes, pl.raw)
	}
	return nodes
}

// ToWhere compiles p into the where-clause request for entity.
func (c *Converter) ToWhere(entity domain.Entity, p Params) (*WhereRequest, error) {
	s, err := SchemaFor(entity)
	if err != nil {
		return nil, err
	}
	limit, offset, err := c.Window(p)
	if err != nil {
		return nil, err
	}
	pl, err := c.plan(s, p)
	if err != nil {
		return nil, err
	}
	where, err := c.where(s, pl)
	if err != nil {
		return nil, err
	}

	limit = min(limit, MaxWhereLimit)
	if offset%limit != 0 {
		return nil, &UnsupportedConversionError{
			Target:   TargetWhere,
			Operator: "offset",
			Reason:   fmt.Sprintf("offset %d is not a multiple of limit %d", offset, limit),
		}
	}
	req := &WhereRequest{
		Where:   where,
		OrderBy: []OrderBy{},
		Page:    offset/limit + 1,
		Limit:   limit,
	}
	for _, t := range sortTerms(s, p.Ordering) {
		req.OrderBy = append(req.OrderBy, OrderBy{Field: t.Field, Direction: t.Direction})
	}
	return req, nil
}

// Window resolves the effective limit and offset. A cursor wins over an
// explicit offset; a bad cursor returns pagination.ErrInvalidCursor.
func (c *Converter) Window(p Params) (limit, offset int, err error) {
	limit = c.cfg.DefaultPageSize
	switch {
	case p.Limit != nil:
		limit = *p.Limit
	case p.PageSize != nil:
		limit = *p.PageSize
	}
	limit = min(max(limit, 1), c.cfg.MaxPageSize)

	offset = p.Offset
	if p.Cursor != "" {
		offset, err = pagination.DecodeCursor(p.Cursor)
		if err != nil {
			return 0, 0, err
		}
	}
	return limit, offset, nil
}

// EffectiveOrdering returns the sortable part of p.Ordering in its
// normalized "field:dir" form.
func (c *Converter) EffectiveOrdering(entity domain.Entity, p Params) string {
	s, err := SchemaFor(entity)
	if err != nil {
		return ""
	}
	var out []string
	for _, t := range ParseOrdering(p.Ordering) {
		if _, ok := s.Sortable[t.Field]; ok {
			out = append(out, t.String())
		}
	}
	return strings.Join(out, ",")
}

// sortTerms maps user-facing ordering onto service fields, dropping fields
// that are not sortable.
func sortTerms(s *Schema, ordering string) []OrderTerm {
	var out []OrderTerm
	for _, t := range ParseOrdering(ordering) {
		if name, ok := s.Sortable[t.Field]; ok {
			out = append(out, OrderTerm{Field: name, Direction: t.Direction})
		}
	}
	return out
}

func selectColumns(s *Schema, fields []string) ([]string, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	var errs []vql.FieldError
	for _, f := range fields {
		if !s.HasColumn(f) {
			errs = append(errs, vql.FieldError{Path: "fields", Message: fmt.Sprintf("unknown column %q", f)})
		}
	}
	if len(errs) > 0 {
		return nil, &vql.ValidationError{Errors: errs}
	}
	if !lo.Contains(fields, "uuid") {
		fields = append([]string{"uuid"}, fields...)
	}
	return fields, nil
}

func rawGroup(v any) (*vql.Group, error) {
	if s, ok := v.(string); ok {
		var g vql.Group
		if err := json.Unmarshal([]byte(s), &g); err != nil {
			return nil, err
		}
		return &g, nil
	}
	return vql.ParseGroup(v)
}

func textValue(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	parts := lo.FilterMap(SplitValues(v), func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
	return strings.Join(parts, " ")
}

// number coerces a range bound, keeping integral values as int64.
func number(v any) (any, error) {
	f, err := cast.ToFloat64E(strings.TrimSpace(cast.ToString(first(v))))
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("not a number: %v", v)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f), nil
	}
	return f, nil
}

func anyList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
