package vql

import "encoding/json"

// Node is either a *Condition or a *Group.
type Node interface {
	isNode()
}

// Condition compares a single field.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

func (*Condition) isNode() {}

// Group combines nodes with AND or OR. Only one branch is set on a parsed
// group.
type Group struct {
	And []Node
	Or  []Node
}

func (*Group) isNode() {}

// Cond builds a Condition.
func Cond(field string, op Operator, value any) *Condition {
	return &Condition{Field: field, Operator: op, Value: value}
}

// And builds an AND group.
func And(nodes ...Node) *Group {
	if nodes == nil {
		nodes = []Node{}
	}
	return &Group{And: nodes}
}

// Or builds an OR group.
func Or(nodes ...Node) *Group {
	if nodes == nil {
		nodes = []Node{}
	}
	return &Group{Or: nodes}
}

// Children returns the nodes of whichever branch is set, AND first.
func (g *Group) Children() []Node {
	if g.And != nil {
		return g.And
	}
	return g.Or
}

// IsOr reports whether the group combines its children with OR.
func (g *Group) IsOr() bool {
	return g.And == nil && g.Or != nil
}

// MarshalJSON writes only the branches that are set.
func (g *Group) MarshalJSON() ([]byte, error) {
	out := map[string][]Node{}
	if g.And != nil {
		out["and"] = g.And
	}
	if g.Or != nil {
		out["or"] = g.Or
	}
	if len(out) == 0 {
		out["and"] = []Node{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses a group with the strict parser.
func (g *Group) UnmarshalJSON(b []byte) error {
	raw, err := decodeJSON(b)
	if err != nil {
		return err
	}
	parsed, err := ParseGroup(raw)
	if err != nil {
		return err
	}
	*g = *parsed
	return nil
}

// PopulateConfig controls whether a related entity is joined into results.
type PopulateConfig struct {
	Populate      bool     `json:"populate"`
	SelectColumns []string `json:"select_columns,omitempty"`
}

// Query is the envelope sent to the search service.
type Query struct {
	Filters       *Group
	SelectColumns []string
	// Populate is keyed by related entity singular name, e.g. "company".
	Populate      map[string]PopulateConfig
	Limit         *int
	Offset        int
	SortBy        string
	SortDirection Direction
	Distinct      bool
}

const populateSuffix = "_config"

// MarshalJSON writes the search service request body.
func (q *Query) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"filters": q.Filters,
		"offset":  q.Offset,
	}
	if len(q.SelectColumns) > 0 {
		out["select_columns"] = q.SelectColumns
	}
	for name, cfg := range q.Populate {
		out[name+populateSuffix] = cfg
	}
	if q.Limit != nil {
		out["limit"] = *q.Limit
	}
	if q.SortBy != "" {
		out["sort_by"] = q.SortBy
	}
	dir := q.SortDirection
	if dir == "" {
		dir = Asc
	}
	out["sort_direction"] = dir
	if q.Distinct {
		out["distinct"] = true
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses a query with the strict parser.
func (q *Query) UnmarshalJSON(b []byte) error {
	parsed, err := ParseJSON(b)
	if err != nil {
		return err
	}
	*q = *parsed
	return nil
}

// AndWith returns a copy of q whose root filter also requires nodes.
func (q *Query) AndWith(nodes ...Node) *Query {
	cp := *q
	if len(nodes) == 0 {
		return &cp
	}
	if cp.Filters == nil {
		cp.Filters = And(nodes...)
		return &cp
	}
	cp.Filters = And(append([]Node{cp.Filters}, nodes...)...)
	return &cp
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of the visited node.
func Walk(n Node, fn func(n Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	if g, ok := n.(*Group); ok {
		for _, c := range g.Children() {
			walk(c, depth+1, fn)
		}
	}
}

// Fields returns the distinct field names referenced under n.
func Fields(n Node) []string {
	seen := map[string]bool{}
	var out []string
	Walk(n, func(n Node, _ int) bool {
		if c, ok := n.(*Condition); ok && !seen[c.Field] {
			seen[c.Field] = true
			out = append(out, c.Field)
		}
		return true
	})
	return out
}
