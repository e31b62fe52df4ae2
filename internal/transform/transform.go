// Package transform maps search service records into the canonical list and
// detail views. A batch keeps going past records that fail to map.
package transform

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/johnwards/leadsearch/internal/domain"
)

// Mode selects the view produced for each record.
type Mode int

const (
	// ModeListItem joins list fields into display strings.
	ModeListItem Mode = iota
	// ModeFull keeps list fields as lists.
	ModeFull
)

func (m Mode) String() string {
	if m == ModeFull {
		return "full"
	}
	return "list_item"
}

// BatchResult is the outcome of mapping one response page.
type BatchResult struct {
	Records    []any
	Total      int
	Successful int
	Failed     int
	Errors     []*RecordMappingError
	Duration   time.Duration
}

type Options struct {
	// Registerer receives the transform metrics. Nil means they are not
	// registered anywhere.
	Registerer prometheus.Registerer
	Logger     *slog.Logger
}

type Transformer struct {
	logger  *slog.Logger
	records *prometheus.CounterVec
	batches *prometheus.HistogramVec
}

func New(opts Options) *Transformer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	factory := promauto.With(opts.Registerer)
	return &Transformer{
		logger: logger,
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leadsearch_transform_records_total",
			Help: "Records mapped from search service responses, by outcome.",
		}, []string{"entity", "outcome"}),
		batches: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leadsearch_transform_batch_seconds",
			Help:    "Time spent mapping a response page.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"entity"}),
	}
}

// Contact maps a raw contact into the view selected by mode.
func Contact(raw []byte, mode Mode) (any, error) {
	if mode == ModeFull {
		return ContactDetail(raw)
	}
	return ContactListItem(raw)
}

// Company maps a raw company into the view selected by mode.
func Company(raw []byte, mode Mode) (any, error) {
	if mode == ModeFull {
		return CompanyDetail(raw)
	}
	return CompanyListItem(raw)
}

// Record maps a single raw record.
func (t *Transformer) Record(entity domain.Entity, raw []byte, mode Mode) (any, error) {
	switch entity {
	case domain.Contacts:
		return Contact(raw, mode)
	case domain.Companies:
		return Company(raw, mode)
	}
	return nil, domain.ErrUnknownEntity
}

// Batch maps raws, skipping and counting the records that fail.
func (t *Transformer) Batch(entity domain.Entity, raws []json.RawMessage, mode Mode) BatchResult {
	start := time.Now()
	records, errs := TransformBatch(raws, func(raw []byte) (any, error) {
		return t.Record(entity, raw, mode)
	})

	res := BatchResult{
		Records:    records,
		Total:      len(raws),
		Successful: len(records),
		Failed:     len(errs),
		Errors:     errs,
		Duration:   time.Since(start),
	}

	for _, err := range errs {
		t.logger.Warn("record mapping failed",
			"entity", entity,
			"mode", mode,
			"index", err.Index,
			"field", err.Field,
			"reason", err.Reason,
		)
	}
	t.records.WithLabelValues(string(entity), "success").Add(float64(res.Successful))
	t.records.WithLabelValues(string(entity), "failure").Add(float64(res.Failed))
	t.batches.WithLabelValues(string(entity)).Observe(res.Duration.Seconds())
	return res
}

// TransformBatch applies fn to every raw record, collecting the successes in
// order and a RecordMappingError for each failure.
func TransformBatch[T any](raws []json.RawMessage, fn func([]byte) (T, error)) ([]T, []*RecordMappingError) {
	out := make([]T, 0, len(raws))
	var errs []*RecordMappingError
	for i, raw := range raws {
		v, err := fn(raw)
		if err != nil {
			var merr *RecordMappingError
			if !errors.As(err, &merr) {
				merr = &RecordMappingError{Reason: err.Error()}
			}
			merr.Index = i
			errs = append(errs, merr)
			continue
		}
		out = append(out, v)
	}
	return out, errs
}
