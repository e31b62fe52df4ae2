package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/johnwards/leadsearch/internal/domain"
	"github.com/johnwards/leadsearch/internal/vql"
)

const (
	maxSearchLimit = 1000
	fullTextField  = "full_text"
	relatedPrefix  = "company_"
)

// fullTextFields are matched by conditions on the synthetic full_text field.
var fullTextFields = map[domain.Entity][]string{
	domain.Contacts:  {"first_name", "last_name", "email", "title", "company_name"},
	domain.Companies: {"name", "domain", "keywords", "industries"},
}

// Search runs q against the stored records of entity. Conditions compare
// every element of array values, so "eq" on a list field means "any element
// equals".
func (s *SQLiteRecordStore) Search(ctx context.Context, entity domain.Entity, q *vql.Query) ([]json.RawMessage, error) {
	if q == nil {
		q = &vql.Query{}
	}
	where, args, err := buildWhere(entity, q.Filters)
	if err != nil {
		return nil, err
	}

	limit := maxSearchLimit
	if q.Limit != nil && *q.Limit < limit {
		limit = *q.Limit
	}

	query := "SELECT r.body FROM records r WHERE r.entity = ? AND " + where
	args = append([]any{string(entity)}, args...)
	if q.SortBy != "" {
		dir := "ASC"
		if q.SortDirection == vql.Desc {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY json_extract(r.body, ?) %s, r.uuid ASC", dir)
		args = append(args, jsonPath(q.SortBy))
	} else {
		query += " ORDER BY r.created_at ASC, r.uuid ASC"
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []json.RawMessage{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		projected, err := project(body, q)
		if err != nil {
			return nil, err
		}
		results = append(results, projected)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search rows: %w", err)
	}
	return results, nil
}

// Count returns the number of records matching q's filters.
func (s *SQLiteRecordStore) Count(ctx context.Context, entity domain.Entity, q *vql.Query) (int64, error) {
	var filters *vql.Group
	if q != nil {
		filters = q.Filters
	}
	where, args, err := buildWhere(entity, filters)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records r WHERE r.entity = ? AND "+where,
		append([]any{string(entity)}, args...)...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// project keeps the selected columns plus the populated company columns.
// Without a selection the stored body is returned unchanged.
func project(body string, q *vql.Query) (json.RawMessage, error) {
	if len(q.SelectColumns) == 0 {
		return json.RawMessage(body), nil
	}
	var full map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &full); err != nil {
		return nil, fmt.Errorf("decode stored record: %w", err)
	}
	out := make(map[string]json.RawMessage, len(q.SelectColumns))
	for _, col := range q.SelectColumns {
		if v, ok := full[col]; ok {
			out[col] = v
		}
	}
	if cfg, ok := q.Populate["company"]; ok && cfg.Populate {
		for k, v := range full {
			if strings.HasPrefix(k, relatedPrefix) && (len(cfg.SelectColumns) == 0 || contains(cfg.SelectColumns, strings.TrimPrefix(k, relatedPrefix))) {
				out[k] = v
			}
		}
	}
	return json.Marshal(out)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// jsonPath quotes field as a single SQLite JSON path member.
func jsonPath(field string) string {
	return `$."` + strings.ReplaceAll(field, `"`, ``) + `"`
}

func buildWhere(entity domain.Entity, filters *vql.Group) (string, []any, error) {
	if filters == nil {
		return "1=1", nil, nil
	}
	b := &whereBuilder{entity: entity}
	clause, err := b.node(filters)
	if err != nil {
		return "", nil, err
	}
	return clause, b.args, nil
}

// whereBuilder compiles a filter tree into a SQL predicate over r.body.
// Arguments are appended in the order their placeholders appear.
type whereBuilder struct {
	entity domain.Entity
	args   []any
}

func (b *whereBuilder) node(n vql.Node) (string, error) {
	switch n := n.(type) {
	case *vql.Group:
		return b.group(n)
	case *vql.Condition:
		if n.Field == fullTextField {
			return b.fullText(n)
		}
		return b.condition(n.Field, n.Operator, n.Value)
	}
	return "", &ValidationError{Message: fmt.Sprintf("unsupported filter node %T", n)}
}

func (b *whereBuilder) group(g *vql.Group) (string, error) {
	children := g.Children()
	joiner, empty := " AND ", "1=1"
	if g.IsOr() {
		joiner, empty = " OR ", "1=0"
	}
	if len(children) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(children))
	for _, c := range children {
		clause, err := b.node(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, clause)
	}
	return "(" + strings.Join(parts, joiner) + ")", nil
}

// fullText matches the value against every full-text column of the entity.
func (b *whereBuilder) fullText(c *vql.Condition) (string, error) {
	fields := fullTextFields[b.entity]
	if len(fields) == 0 {
		return "1=0", nil
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		clause, err := b.condition(f, c.Operator, c.Value)
		if err != nil {
			return "", err
		}
		parts = append(parts, clause)
	}
	joiner := " OR "
	if c.Operator == vql.Ne || c.Operator == vql.Nin || c.Operator == vql.NContains {
		joiner = " AND "
	}
	return "(" + strings.Join(parts, joiner) + ")", nil
}

// anyElement matches when some element of the field satisfies pred. json_each
// yields a single row for scalar values and none for missing ones.
func (b *whereBuilder) anyElement(field, pred string, args ...any) string {
	b.args = append(b.args, jsonPath(field))
	b.args = append(b.args, args...)
	return "EXISTS (SELECT 1 FROM json_each(r.body, ?) je WHERE " + pred + ")"
}

func (b *whereBuilder) condition(field string, op vql.Operator, value any) (string, error) {
	switch op {
	case vql.Eq:
		return b.anyElement(field, "je.value = ?", value), nil
	case vql.Ne:
		return "NOT " + b.anyElement(field, "je.value = ?", value), nil
	case vql.Gt:
		return b.anyElement(field, "je.value > ?", value), nil
	case vql.Gte:
		return b.anyElement(field, "je.value >= ?", value), nil
	case vql.Lt:
		return b.anyElement(field, "je.value < ?", value), nil
	case vql.Lte:
		return b.anyElement(field, "je.value <= ?", value), nil
	case vql.In, vql.Nin:
		values, ok := value.([]any)
		if !ok || len(values) == 0 {
			if op == vql.In {
				return "1=0", nil
			}
			return "1=1", nil
		}
		pred := "je.value IN (" + strings.TrimSuffix(strings.Repeat("?,", len(values)), ",") + ")"
		clause := b.anyElement(field, pred, values...)
		if op == vql.Nin {
			return "NOT " + clause, nil
		}
		return clause, nil
	case vql.Contains, vql.NContains:
		s := fmt.Sprint(value)
		// Arrays match whole elements case-insensitively; scalars match substrings.
		b.args = append(b.args, jsonPath(field), jsonPath(field), s, "%"+escapeLike(s)+"%")
		clause := "EXISTS (SELECT 1 FROM json_each(r.body, ?) je WHERE CASE WHEN json_type(r.body, ?) = 'array' " +
			`THEN lower(je.value) = lower(?) ELSE je.value LIKE ? ESCAPE '\' END)`
		if op == vql.NContains {
			return "NOT " + clause, nil
		}
		return clause, nil
	case vql.Exists:
		b.args = append(b.args, jsonPath(field))
		return "COALESCE(json_type(r.body, ?), 'null') != 'null'", nil
	case vql.NExists:
		b.args = append(b.args, jsonPath(field))
		return "COALESCE(json_type(r.body, ?), 'null') = 'null'", nil
	}
	return "", &ValidationError{Message: fmt.Sprintf("unsupported operator: %s", op)}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
