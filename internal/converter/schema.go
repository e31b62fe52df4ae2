package converter

import (
	"sort"

	"github.com/samber/lo"

	"github.com/johnwards/leadsearch/internal/domain"
)

// FieldKind selects the bucket a parameter compiles into.
type FieldKind int

const (
	// KindText fields are fuzzy-matched strings.
	KindText FieldKind = iota
	// KindKeyword fields are exact or list-membership matches.
	KindKeyword
	// KindRange fields are numeric and filtered with _min/_max bounds.
	KindRange
)

// Match strategy tokens passed through to the search service.
const (
	MatchShuffle   = "shuffle"
	MatchSubstring = "substring"
	MatchNgram     = "ngram"
)

// Field maps one user-facing parameter onto a search service field.
type Field struct {
	Name  string
	Kind  FieldKind
	Array bool
	Match string
}

// Schema holds the field-mapping tables for one entity. Both compilation
// targets read the same tables.
type Schema struct {
	Entity domain.Entity
	// Text are direct fields matched with fuzzy search.
	Text map[string]Field
	// Keyword are exact or list fields.
	Keyword map[string]Field
	// Range are numeric fields.
	Range map[string]Field
	// Related are fields denormalized from a related entity onto this one,
	// reached through a prefixed name.
	Related map[string]Field

	SearchField    string
	Sortable       map[string]string
	Columns        []string
	RelatedEntity  string
	RelatedColumns []string
}

func text(name, match string) Field {
	return Field{Name: name, Kind: KindText, Match: match}
}

func keyword(name string) Field {
	return Field{Name: name, Kind: KindKeyword}
}

func array(name string) Field {
	return Field{Name: name, Kind: KindKeyword, Array: true}
}

func numeric(name string) Field {
	return Field{Name: name, Kind: KindRange}
}

var contactSchema = &Schema{
	Entity: domain.Contacts,
	Text: map[string]Field{
		"first_name": text("first_name", MatchShuffle),
		"last_name":  text("last_name", MatchShuffle),
		"title":      text("title", MatchShuffle),
		"email":      text("email", MatchSubstring),
		"city":       text("city", MatchSubstring),
		"state":      text("state", MatchSubstring),
		"country":    text("country", MatchSubstring),
	},
	Keyword: map[string]Field{
		"titles":       keyword("title"),
		"seniority":    keyword("seniority"),
		"departments":  array("departments"),
		"email_status": keyword("email_status"),
		"company_id":   keyword("company_id"),
		"countries":    keyword("country"),
	},
	Range: map[string]Field{},
	Related: map[string]Field{
		"company_name":    text("company_name", MatchShuffle),
		"company_city":    text("company_city", MatchSubstring),
		"company_domain":  keyword("company_domain"),
		"company_country": keyword("company_country"),
		"industries":      array("company_industries"),
		"technologies":    array("company_technologies"),
		"employees":       numeric("company_employees_count"),
		"revenue":         numeric("company_annual_revenue"),
	},
	SearchField: "full_text",
	Sortable: map[string]string{
		"first_name":   "first_name",
		"last_name":    "last_name",
		"email":        "email",
		"title":        "title",
		"created_at":   "created_at",
		"company_name": "company_name",
		"employees":    "company_employees_count",
	},
	Columns: []string{
		"uuid", "first_name", "last_name", "email", "email_status", "title",
		"seniority", "departments", "mobile_phone", "city", "state", "country",
		"linkedin_url", "created_at", "company_id",
	},
	RelatedEntity: "company",
	RelatedColumns: []string{
		"uuid", "name", "domain", "city", "state", "country",
		"employees_count", "annual_revenue", "industries", "technologies",
	},
}

var companySchema = &Schema{
	Entity: domain.Companies,
	Text: map[string]Field{
		"name":    text("name", MatchShuffle),
		"domain":  text("domain", MatchSubstring),
		"city":    text("city", MatchSubstring),
		"state":   text("state", MatchSubstring),
		"country": text("country", MatchSubstring),
	},
	Keyword: map[string]Field{
		"domains":      keyword("domain"),
		"countries":    keyword("country"),
		"industries":   array("industries"),
		"technologies": array("technologies"),
		"keywords":     array("keywords"),
	},
	Range: map[string]Field{
		"employees":    numeric("employees_count"),
		"revenue":      numeric("annual_revenue"),
		"founded_year": numeric("founded_year"),
	},
	Related:     map[string]Field{},
	SearchField: "full_text",
	Sortable: map[string]string{
		"name":         "name",
		"employees":    "employees_count",
		"revenue":      "annual_revenue",
		"founded_year": "founded_year",
		"created_at":   "created_at",
	},
	Columns: []string{
		"uuid", "name", "domain", "website", "phone", "city", "state", "country",
		"employees_count", "annual_revenue", "founded_year", "industries",
		"technologies", "keywords", "linkedin_url", "created_at",
	},
}

// SchemaFor returns the field tables for entity.
func SchemaFor(entity domain.Entity) (*Schema, error) {
	switch entity {
	case domain.Contacts:
		return contactSchema, nil
	case domain.Companies:
		return companySchema, nil
	}
	return nil, domain.ErrUnknownEntity
}

// Lookup finds param in any of the four tables.
func (s *Schema) Lookup(param string) (Field, bool) {
	for _, table := range []map[string]Field{s.Text, s.Keyword, s.Range, s.Related} {
		if f, ok := table[param]; ok {
			return f, true
		}
	}
	return Field{}, false
}

// Params lists every filter parameter the schema understands, sorted.
func (s *Schema) Params() []string {
	var out []string
	for _, table := range []map[string]Field{s.Text, s.Keyword, s.Range, s.Related} {
		out = append(out, lo.Keys(table)...)
	}
	sort.Strings(out)
	return out
}

// ArrayFields returns the search service field names that hold lists.
func (s *Schema) ArrayFields() []string {
	var out []string
	for _, p := range s.Params() {
		if f, _ := s.Lookup(p); f.Array {
			out = append(out, f.Name)
		}
	}
	return lo.Uniq(out)
}

// HasColumn reports whether name is a selectable column.
func (s *Schema) HasColumn(name string) bool {
	return lo.Contains(s.Columns, name)
}
