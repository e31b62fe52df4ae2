package converter

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/johnwards/leadsearch/internal/vql"
)

// Params is the flat, user-facing filter input for one request. Envelope
// keys (search, ordering, paging) are typed; every other key lands in Values
// and is resolved against the entity's field tables at compile time.
type Params struct {
	Values   map[string]any `mapstructure:"-"`
	Search   string         `mapstructure:"search" validate:"max=512"`
	Ordering string         `mapstructure:"ordering"`
	Distinct bool           `mapstructure:"distinct"`
	Fields   []string       `mapstructure:"-"`
	PageSize *int           `mapstructure:"page_size" validate:"omitempty,min=1"`
	Limit    *int           `mapstructure:"limit" validate:"omitempty,min=1"`
	Offset   int            `mapstructure:"offset" validate:"min=0"`
	Cursor   string         `mapstructure:"cursor"`
}

// envelopeKeys are consumed by Params itself rather than treated as filters.
var envelopeKeys = map[string]bool{
	"search":    true,
	"ordering":  true,
	"distinct":  true,
	"fields":    true,
	"page_size": true,
	"limit":     true,
	"offset":    true,
	"cursor":    true,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ParseParams builds Params from a decoded JSON body or any other untyped
// map. Envelope values are weakly typed, so "25" is accepted for limit.
func ParseParams(raw map[string]any) (Params, error) {
	p := Params{Values: map[string]any{}}
	var errs []vql.FieldError

	targets := map[string]any{
		"search":    &p.Search,
		"ordering":  &p.Ordering,
		"distinct":  &p.Distinct,
		"page_size": &p.PageSize,
		"limit":     &p.Limit,
		"offset":    &p.Offset,
		"cursor":    &p.Cursor,
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v := raw[key]
		if !envelopeKeys[key] {
			p.Values[key] = v
			continue
		}
		if key == "fields" {
			p.Fields = NormalizeList(v, false)
			continue
		}
		if v == nil || v == "" {
			continue
		}
		if err := mapstructure.WeakDecode(first(v), targets[key]); err != nil {
			errs = append(errs, vql.FieldError{Path: key, Message: fmt.Sprintf("invalid value %v", v)})
		}
	}

	if err := validate.Struct(p); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				errs = append(errs, vql.FieldError{Path: fe.Field(), Message: validationMessage(fe)})
			}
		} else {
			return Params{}, fmt.Errorf("validate params: %w", err)
		}
	}

	if len(errs) > 0 {
		return Params{}, &vql.ValidationError{Errors: errs}
	}
	return p, nil
}

// ParamsFromQuery builds Params from a query string. Repeated keys become
// lists, so exclude_titles=a&exclude_titles=b yields two values.
func ParamsFromQuery(values url.Values) (Params, error) {
	raw := make(map[string]any, len(values))
	for key, vs := range values {
		switch len(vs) {
		case 0:
		case 1:
			raw[key] = vs[0]
		default:
			raw[key] = vs
		}
	}
	return ParseParams(raw)
}

// first unwraps single-element lists produced by repeated query keys.
func first(v any) any {
	switch t := v.(type) {
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	case []any:
		if len(t) > 0 {
			return t[0]
		}
	}
	return v
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must be greater than or equal to " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "failed " + fe.Tag() + " validation"
}
