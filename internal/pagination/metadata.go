package pagination

import "github.com/johnwards/leadsearch/internal/domain"

// MetadataInput carries what BuildMetadata needs to describe a page.
type MetadataInput struct {
	FiltersApplied bool
	Ordering       string
	UseCursor      bool
	Returned       int
	PageSizeCap    int
	UsingFallback  bool
}

// BuildMetadata derives the response metadata for a page. Unfiltered
// listings report an estimated count mode, filtered ones an actual count.
func BuildMetadata(in MetadataInput) domain.Metadata {
	meta := domain.Metadata{
		PaginationStrategy: domain.StrategyOffset,
		CountMode:          domain.CountActual,
		FiltersApplied:     in.FiltersApplied,
		Ordering:           in.Ordering,
		ReturnedRecords:    in.Returned,
		PageSizeCap:        in.PageSizeCap,
		UsingFallback:      in.UsingFallback,
	}
	if in.UseCursor {
		meta.PaginationStrategy = domain.StrategyCursor
	}
	if !in.FiltersApplied {
		meta.CountMode = domain.CountEstimated
	}
	return meta
}
