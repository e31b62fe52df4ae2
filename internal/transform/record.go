package transform

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// RecordMappingError describes one response record that could not be mapped.
// It is counted and logged by Batch, never returned from it.
type RecordMappingError struct {
	Index  int
	Field  string
	Reason string
}

func (e *RecordMappingError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("record %d: %s: %s", e.Index, e.Field, e.Reason)
}

const relatedPrefix = "company_"

// record reads one search service record. Related company values come from
// a nested "company" object when present, otherwise from the company_*
// columns denormalized onto the record.
type record struct {
	doc     gjson.Result
	related gjson.Result
}

func parseRecord(raw []byte) (record, error) {
	if !gjson.ValidBytes(raw) {
		return record{}, &RecordMappingError{Reason: "invalid JSON"}
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return record{}, &RecordMappingError{Reason: "record is not an object"}
	}
	rec := record{doc: doc}
	if c := doc.Get("company"); c.IsObject() {
		rec.related = c
	}
	if rec.str("uuid") == "" {
		return record{}, &RecordMappingError{Field: "uuid", Reason: "missing"}
	}
	return rec, nil
}

func (r record) field(name string) gjson.Result {
	return r.doc.Get(name)
}

func (r record) relatedField(name string) (gjson.Result, string) {
	if v := r.related.Get(name); v.Exists() {
		return v, "company." + name
	}
	return r.field(relatedPrefix + name), relatedPrefix + name
}

func (r record) str(name string) string {
	return scalarString(r.field(name))
}

func (r record) relatedStr(name string) string {
	v, _ := r.relatedField(name)
	return scalarString(v)
}

// companyID prefers the record's own foreign key and falls back to the
// nested company's uuid.
func (r record) companyID() string {
	if id := r.str("company_id"); id != "" {
		return id
	}
	if r.related.Exists() {
		return scalarString(r.related.Get("uuid"))
	}
	return ""
}

func (r record) list(name string) ([]string, error) {
	return toList(r.field(name), name)
}

func (r record) relatedList(name string) ([]string, error) {
	v, path := r.relatedField(name)
	return toList(v, path)
}

func (r record) int(name string) (*int64, error) {
	return toInt(r.field(name), name)
}

func (r record) relatedInt(name string) (*int64, error) {
	v, path := r.relatedField(name)
	return toInt(v, path)
}

func scalarString(v gjson.Result) string {
	switch v.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		return v.String()
	}
	return ""
}

// toList accepts a JSON array or the search service's "{a,b}" array literal.
// A missing or null value is an empty list.
func toList(v gjson.Result, path string) ([]string, error) {
	out := []string{}
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return out, nil
	case v.IsArray():
		for _, item := range v.Array() {
			if s := strings.TrimSpace(scalarString(item)); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case v.Type == gjson.String:
		s := strings.TrimSpace(v.Str)
		s = strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}")
		for _, part := range strings.Split(s, ",") {
			if part = strings.Trim(strings.TrimSpace(part), `"`); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
	return nil, &RecordMappingError{Field: path, Reason: "expected a list"}
}

func toInt(v gjson.Result, path string) (*int64, error) {
	switch v.Type {
	case gjson.Null:
		return nil, nil
	case gjson.Number:
		n := int64(v.Num)
		return &n, nil
	case gjson.String:
		if strings.TrimSpace(v.Str) == "" {
			return nil, nil
		}
		n, err := cast.ToInt64E(strings.TrimSpace(v.Str))
		if err != nil {
			return nil, &RecordMappingError{Field: path, Reason: "expected a number"}
		}
		return &n, nil
	}
	return nil, &RecordMappingError{Field: path, Reason: "expected a number"}
}

func firstOf(items []string) *string {
	if len(items) == 0 {
		return nil
	}
	s := items[0]
	return &s
}

func joined(items []string) string {
	return strings.Join(items, ", ")
}
