package converter

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/johnwards/leadsearch/internal/vql"
)

// SplitValues turns a filter value into raw string tokens. Accepted forms:
// a JSON list, repeated query-string values (each of which may itself be
// comma separated), a comma-separated string, a JSON-array string, and the
// search service's array literal "{a,b}".
func SplitValues(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		var out []string
		for _, s := range t {
			out = append(out, splitString(s)...)
		}
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			out = append(out, cast.ToString(item))
		}
		return out
	case string:
		return splitString(t)
	default:
		return []string{cast.ToString(t)}
	}
}

func splitString(s string) []string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		var items []any
		if err := json.Unmarshal([]byte(s), &items); err == nil {
			return SplitValues(items)
		}
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		parts := strings.Split(s[1:len(s)-1], ",")
		for i, p := range parts {
			parts[i] = strings.Trim(strings.TrimSpace(p), `"`)
		}
		return parts
	}
	return strings.Split(s, ",")
}

// NormalizeList splits v, trims every token, drops empty ones and removes
// case-insensitive duplicates keeping the first casing seen. When sorted is
// set the result is ordered case-insensitively.
func NormalizeList(v any, sorted bool) []string {
	tokens := lo.FilterMap(SplitValues(v), func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
	return dedupe(tokens, sorted)
}

// mergeTokens joins lists that are already normalized. Tokens are not split
// again, so a value holding a comma stays one token.
func mergeTokens(a, b []string) []string {
	return dedupe(append(append([]string{}, a...), b...), true)
}

func dedupe(tokens []string, sorted bool) []string {
	tokens = lo.UniqBy(tokens, strings.ToLower)
	if sorted {
		sort.SliceStable(tokens, func(i, j int) bool {
			return strings.ToLower(tokens[i]) < strings.ToLower(tokens[j])
		})
	}
	return tokens
}

// OrderTerm is one parsed "field:direction" token.
type OrderTerm struct {
	Field     string
	Direction vql.Direction
}

func (t OrderTerm) String() string {
	return t.Field + ":" + string(t.Direction)
}

// ParseOrdering parses a comma-separated "field:direction" list. A missing or
// unrecognized direction means ascending.
func ParseOrdering(s string) []OrderTerm {
	var out []OrderTerm
	for _, token := range strings.Split(s, ",") {
		field, dir, _ := strings.Cut(strings.TrimSpace(token), ":")
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		term := OrderTerm{Field: field, Direction: vql.Asc}
		if strings.EqualFold(strings.TrimSpace(dir), string(vql.Desc)) {
			term.Direction = vql.Desc
		}
		out = append(out, term)
	}
	return out
}
