package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Entity names a searchable record collection.
type Entity string

const (
	Contacts  Entity = "contacts"
	Companies Entity = "companies"
)

// ErrUnknownEntity is returned when a path or flag names an entity that does
// not exist.
var ErrUnknownEntity = errors.New("unknown entity")

// Entities lists every supported entity.
func Entities() []Entity {
	return []Entity{Contacts, Companies}
}

// ParseEntity resolves an entity name. Singular forms are accepted.
func ParseEntity(s string) (Entity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contacts", "contact":
		return Contacts, nil
	case "companies", "company":
		return Companies, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownEntity)
}

// Singular returns the singular name, used for related-entity config keys
// such as "company_config".
func (e Entity) Singular() string {
	switch e {
	case Contacts:
		return "contact"
	case Companies:
		return "company"
	}
	return string(e)
}

func (e Entity) String() string {
	return string(e)
}
