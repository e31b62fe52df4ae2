// Package seed loads a small fixed set of companies and contacts into the
// snapshot store for local runs and demos.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/johnwards/leadsearch/internal/domain"
	"github.com/johnwards/leadsearch/internal/store"
)

// Seed inserts the sample records. It is idempotent: records whose uuid
// already exists are left untouched. Companies go first so contacts can copy
// their company columns.
func Seed(ctx context.Context, rs store.RecordStore) error {
	for _, c := range companies {
		if err := insert(ctx, rs, domain.Companies, c.record()); err != nil {
			return fmt.Errorf("seed company %s: %w", c.domain, err)
		}
	}
	for _, c := range contacts {
		if err := insert(ctx, rs, domain.Contacts, c.record()); err != nil {
			return fmt.Errorf("seed contact %s: %w", c.email, err)
		}
	}
	return nil
}

func insert(ctx context.Context, rs store.RecordStore, entity domain.Entity, body map[string]any) error {
	_, err := rs.Create(ctx, entity, body)
	if errors.Is(err, store.ErrConflict) {
		return nil
	}
	return err
}

// stableID derives a fixed uuid from a natural key so reseeding finds the
// same records.
func stableID(kind, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("leadsearch:"+kind+":"+key)).String()
}
