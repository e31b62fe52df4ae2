package vql

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

var queryKeys = map[string]bool{
	"filters":        true,
	"select_columns": true,
	"limit":          true,
	"offset":         true,
	"sort_by":        true,
	"sort_direction": true,
	"distinct":       true,
}

// populateKeys are the related-entity config keys a query may carry.
var populateKeys = map[string]string{
	"company_config": "company",
	"contact_config": "contact",
}

// ParseJSON decodes and validates a query document. Input that is not valid
// JSON yields a *MalformedJSONError; valid JSON that does not match the
// query schema yields a *ValidationError.
func ParseJSON(b []byte) (*Query, error) {
	raw, err := decodeJSON(b)
	if err != nil {
		return nil, err
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, NewValidationError("", "query must be a JSON object")
	}
	return Parse(m)
}

func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, &MalformedJSONError{Offset: syntaxErr.Offset, Err: err}
		}
		return nil, &MalformedJSONError{Offset: dec.InputOffset(), Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &MalformedJSONError{Offset: dec.InputOffset(), Err: errors.New("unexpected data after top-level value")}
	}
	return raw, nil
}

// Parse validates an already-decoded query document. Unknown keys are
// rejected at every level.
func Parse(raw map[string]any) (*Query, error) {
	p := &parser{}
	q := p.query(raw)
	if err := p.err(); err != nil {
		return nil, err
	}
	return q, nil
}

// ParseGroup validates a standalone filter group, reporting paths relative
// to "filters".
func ParseGroup(raw any) (*Group, error) {
	p := &parser{}
	g := p.rootGroup(raw, "filters")
	if err := p.err(); err != nil {
		return nil, err
	}
	return g, nil
}

type parser struct {
	errs []FieldError
}

func (p *parser) fail(path, format string, args ...any) {
	p.errs = append(p.errs, FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: p.errs}
}

func (p *parser) query(raw map[string]any) *Query {
	q := &Query{SortDirection: Asc}

	for _, key := range sortedKeys(raw) {
		v := raw[key]
		if related, ok := populateKeys[key]; ok {
			if cfg, ok := p.populate(v, key); ok {
				if q.Populate == nil {
					q.Populate = map[string]PopulateConfig{}
				}
				q.Populate[related] = cfg
			}
			continue
		}
		if !queryKeys[key] {
			p.fail(key, "unknown field")
			continue
		}

		switch key {
		case "filters":
			if v != nil {
				q.Filters = p.rootGroup(v, key)
			}
		case "select_columns":
			q.SelectColumns = p.stringList(v, key)
		case "limit":
			if v == nil {
				continue
			}
			n, ok := asInt(v)
			if !ok || n < 1 {
				p.fail(key, "must be an integer greater than or equal to 1")
				continue
			}
			q.Limit = &n
		case "offset":
			if v == nil {
				continue
			}
			n, ok := asInt(v)
			if !ok || n < 0 {
				p.fail(key, "must be an integer greater than or equal to 0")
				continue
			}
			q.Offset = n
		case "sort_by":
			if v == nil {
				continue
			}
			s, ok := v.(string)
			if !ok {
				p.fail(key, "must be a string")
				continue
			}
			q.SortBy = s
		case "sort_direction":
			if v == nil {
				continue
			}
			s, ok := v.(string)
			dir := Direction(strings.ToLower(s))
			if !ok || (dir != Asc && dir != Desc) {
				p.fail(key, "must be one of 'asc', 'desc'")
				continue
			}
			q.SortDirection = dir
		case "distinct":
			b, ok := v.(bool)
			if !ok {
				p.fail(key, "must be a boolean")
				continue
			}
			q.Distinct = b
		}
	}
	return q
}

func (p *parser) populate(v any, path string) (PopulateConfig, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		p.fail(path, "must be an object")
		return PopulateConfig{}, false
	}
	var cfg PopulateConfig
	valid := true
	for _, key := range sortedKeys(m) {
		switch key {
		case "populate":
			b, ok := m[key].(bool)
			if !ok {
				p.fail(path+"."+key, "must be a boolean")
				valid = false
				continue
			}
			cfg.Populate = b
		case "select_columns":
			cfg.SelectColumns = p.stringList(m[key], path+"."+key)
		default:
			p.fail(path+"."+key, "unknown field")
			valid = false
		}
	}
	return cfg, valid
}

func (p *parser) stringList(v any, path string) []string {
	if v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		p.fail(path, "must be a list of strings")
		return nil
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			p.fail(fmt.Sprintf("%s[%d]", path, i), "must be a non-empty string")
			continue
		}
		out = append(out, s)
	}
	return out
}

// rootGroup parses the top of a filter tree, which must be a group.
func (p *parser) rootGroup(v any, path string) *Group {
	m, ok := v.(map[string]any)
	if !ok {
		p.fail(path, "must be an object")
		return nil
	}
	if !isGroup(m) {
		p.fail(path, "must be a group with an 'and' or 'or' list")
		return nil
	}
	return p.group(m, path)
}

func isGroup(m map[string]any) bool {
	_, hasAnd := m["and"]
	_, hasOr := m["or"]
	return hasAnd || hasOr
}

func (p *parser) node(v any, path string) Node {
	m, ok := v.(map[string]any)
	if !ok {
		p.fail(path, "must be an object")
		return nil
	}
	if isGroup(m) {
		if g := p.group(m, path); g != nil {
			return g
		}
		return nil
	}
	if c := p.condition(m, path); c != nil {
		return c
	}
	return nil
}

func (p *parser) group(m map[string]any, path string) *Group {
	g := &Group{}
	_, hasAnd := m["and"]
	_, hasOr := m["or"]
	if hasAnd && hasOr {
		p.fail(path, "group must set exactly one of 'and', 'or'")
	}
	for _, key := range sortedKeys(m) {
		if key != "and" && key != "or" {
			p.fail(path+"."+key, "unknown field")
			continue
		}
		childPath := path + "." + key
		items, ok := m[key].([]any)
		if !ok {
			p.fail(childPath, "must be a list")
			continue
		}
		nodes := make([]Node, 0, len(items))
		for i, item := range items {
			if n := p.node(item, fmt.Sprintf("%s[%d]", childPath, i)); n != nil {
				nodes = append(nodes, n)
			}
		}
		if key == "and" {
			g.And = nodes
		} else {
			g.Or = nodes
		}
	}
	return g
}

func (p *parser) condition(m map[string]any, path string) *Condition {
	before := len(p.errs)
	c := &Condition{}

	for _, key := range sortedKeys(m) {
		if key != "field" && key != "operator" && key != "value" {
			p.fail(path+"."+key, "unknown field")
		}
	}

	switch f := m["field"].(type) {
	case string:
		if strings.TrimSpace(f) == "" {
			p.fail(path+".field", "must be a non-empty string")
		}
		c.Field = f
	case nil:
		p.fail(path+".field", "field required")
	default:
		p.fail(path+".field", "must be a non-empty string")
	}

	opRaw, hasOp := m["operator"]
	opStr, _ := opRaw.(string)
	c.Operator = Operator(opStr)
	switch {
	case !hasOp:
		p.fail(path+".operator", "field required")
	case !c.Operator.Valid():
		p.fail(path+".operator", "unsupported operator %q", opRaw)
	}

	value, hasValue := m["value"]
	if c.Operator.Valid() {
		c.Value = p.value(c.Operator, value, hasValue, path+".value")
	}

	if len(p.errs) > before {
		return nil
	}
	return c
}

// value checks that v is compatible with op and normalizes JSON numbers.
func (p *parser) value(op Operator, v any, present bool, path string) any {
	switch {
	case op.Unary():
		if v == nil {
			return nil
		}
		if _, ok := v.(bool); !ok {
			p.fail(path, "must be a boolean or null for operator %q", op)
		}
		return v
	case !present:
		p.fail(path, "field required")
		return nil
	case op.TakesList():
		items, ok := v.([]any)
		if !ok || len(items) == 0 {
			p.fail(path, "must be a non-empty list for operator %q", op)
			return nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			if !isScalar(item) || item == nil {
				p.fail(fmt.Sprintf("%s[%d]", path, i), "must be a string, number or boolean")
				continue
			}
			out[i] = normalizeNumber(item)
		}
		return out
	case op == Contains || op == NContains:
		if _, ok := v.(string); !ok {
			p.fail(path, "must be a string for operator %q", op)
		}
		return v
	case op == Gt || op == Gte || op == Lt || op == Lte:
		switch v.(type) {
		case json.Number, float64, int, int64, string:
			return normalizeNumber(v)
		}
		p.fail(path, "must be a number or string for operator %q", op)
		return nil
	default:
		if !isScalar(v) {
			p.fail(path, "must be a scalar for operator %q", op)
			return nil
		}
		return normalizeNumber(v)
	}
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, json.Number, float64, int, int64:
		return true
	}
	return false
}

func normalizeNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.ParseInt(n.String(), 10, 0)
		return int(i), err == nil
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
