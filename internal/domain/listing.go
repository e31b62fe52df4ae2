package domain

// Pagination strategies reported in Metadata.
const (
	StrategyCursor = "cursor"
	StrategyOffset = "offset"
)

// Count modes reported in Metadata.
const (
	CountEstimated = "estimated"
	CountActual    = "actual"
)

// ListResponse is the REST-facing list envelope.
type ListResponse struct {
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  any      `json:"results"`
	Meta     Metadata `json:"meta"`
}

// Metadata describes how a page of results was produced.
type Metadata struct {
	PaginationStrategy string `json:"pagination_strategy"`
	CountMode          string `json:"count_mode"`
	FiltersApplied     bool   `json:"filters_applied"`
	Ordering           string `json:"ordering"`
	ReturnedRecords    int    `json:"returned_records"`
	PageSizeCap        int    `json:"page_size_cap"`
	UsingFallback      bool   `json:"using_fallback"`
}

// CountResponse is returned by count endpoints.
type CountResponse struct {
	Count int64 `json:"count"`
}
