package converter

import "github.com/johnwards/leadsearch/internal/vql"

// MaxWhereLimit is the largest page the where endpoint accepts.
const MaxWhereLimit = 100

// TextMatch is one fuzzy string match.
type TextMatch struct {
	FilterKey  string `json:"filter_key"`
	TextValue  string `json:"text_value"`
	SearchType string `json:"search_type"`
	Fuzzy      bool   `json:"fuzzy"`
}

type TextMatches struct {
	Must    []TextMatch `json:"must,omitempty"`
	MustNot []TextMatch `json:"must_not,omitempty"`
}

type KeywordMatch struct {
	Must    map[string][]string `json:"must,omitempty"`
	MustNot map[string][]string `json:"must_not,omitempty"`
}

// Range bounds a numeric field. A nil bound is open.
type Range struct {
	Gte any `json:"gte,omitempty"`
	Lte any `json:"lte,omitempty"`
}

type RangeQuery struct {
	Must map[string]Range `json:"must,omitempty"`
}

// WhereClause is the bucketed filter of the alternate target.
type WhereClause struct {
	TextMatches  *TextMatches  `json:"text_matches,omitempty"`
	KeywordMatch *KeywordMatch `json:"keyword_match,omitempty"`
	RangeQuery   *RangeQuery   `json:"range_query,omitempty"`
}

func (w *WhereClause) empty() bool {
	return w.TextMatches == nil && w.KeywordMatch == nil && w.RangeQuery == nil
}

type OrderBy struct {
	Field     string        `json:"order_by"`
	Direction vql.Direction `json:"order_direction"`
}

// WhereRequest is the request body for the where endpoint.
type WhereRequest struct {
	Where   *WhereClause `json:"where,omitempty"`
	OrderBy []OrderBy    `json:"order_by"`
	Page    int          `json:"page"`
	Limit   int          `json:"limit"`
}

func (c *Converter) where(s *Schema, pl *plan) (*WhereClause, error) {
	if len(pl.exists) > 0 {
		e := pl.exists[0]
		op := vql.Exists
		if !e.present {
			op = vql.NExists
		}
		return nil, &UnsupportedConversionError{Target: TargetWhere, Operator: string(op), Field: e.field}
	}
	if pl.raw != nil {
		return nil, &UnsupportedConversionError{Target: TargetWhere, Operator: "filters"}
	}

	w := &WhereClause{}
	tm := &TextMatches{}
	if pl.search != "" {
		tm.Must = append(tm.Must, TextMatch{
			FilterKey:  s.SearchField,
			TextValue:  pl.search,
			SearchType: MatchNgram,
			Fuzzy:      true,
		})
	}
	for _, t := range pl.text {
		tm.Must = append(tm.Must, TextMatch{
			FilterKey:  t.field.Name,
			TextValue:  t.value,
			SearchType: t.field.Match,
			Fuzzy:      true,
		})
	}
	if len(tm.Must) > 0 {
		w.TextMatches = tm
	}

	kw := &KeywordMatch{}
	for _, l := range pl.include {
		if kw.Must == nil {
			kw.Must = map[string][]string{}
		}
		kw.Must[l.field.Name] = mergeTokens(kw.Must[l.field.Name], l.values)
	}
	for _, l := range pl.exclude {
		if kw.MustNot == nil {
			kw.MustNot = map[string][]string{}
		}
		kw.MustNot[l.field.Name] = mergeTokens(kw.MustNot[l.field.Name], l.values)
	}
	if kw.Must != nil || kw.MustNot != nil {
		w.KeywordMatch = kw
	}

	if len(pl.ranges) > 0 {
		rq := &RangeQuery{Must: map[string]Range{}}
		for _, r := range pl.ranges {
			rq.Must[r.field] = Range{Gte: r.gte, Lte: r.lte}
		}
		w.RangeQuery = rq
	}

	if w.empty() {
		return nil, nil
	}
	return w, nil
}
