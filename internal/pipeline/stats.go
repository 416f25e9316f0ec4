package pipeline

import (
	"encoding/json"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Stats tracks run counters. Counter fields use atomic operations so worker
// goroutines and progress callbacks can read them safely.
type Stats struct {
	extracted   atomic.Int64
	filtered    atomic.Int64
	transformed atomic.Int64
	loaded      atomic.Int64
	errors      atomic.Int64
}

// NewStats creates a Stats with initial counter values. Use this when
// restoring checkpointed counters from storage.
func NewStats(extracted, filtered, transformed, loaded, errors int64) *Stats {
	s := &Stats{}
	s.extracted.Store(extracted)
	s.filtered.Store(filtered)
	s.transformed.Store(transformed)
	s.loaded.Store(loaded)
	s.errors.Store(errors)
	return s
}

// Extracted returns the number of records extracted.
func (s *Stats) Extracted() int64 { return s.extracted.Load() }

// Filtered returns the number of records excluded before transformation.
func (s *Stats) Filtered() int64 { return s.filtered.Load() }

// Transformed returns the number of records transformed.
func (s *Stats) Transformed() int64 { return s.transformed.Load() }

// Loaded returns the number of records loaded.
func (s *Stats) Loaded() int64 { return s.loaded.Load() }

// Errors returns the number of errors encountered, skipped ones included.
func (s *Stats) Errors() int64 { return s.errors.Load() }

// MarshalZerologObject implements zerolog.LogObjectMarshaler so stats can be
// logged as a structured field.
func (s *Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("extracted", s.Extracted()).
		Int64("filtered", s.Filtered()).
		Int64("transformed", s.Transformed()).
		Int64("loaded", s.Loaded()).
		Int64("errors", s.Errors())
}

// statsJSON is the JSON representation for marshaling Stats.
type statsJSON struct {
	Extracted   int64 `json:"extracted"`
	Filtered    int64 `json:"filtered"`
	Transformed int64 `json:"transformed"`
	Loaded      int64 `json:"loaded"`
	Errors      int64 `json:"errors"`
}

// MarshalJSON implements json.Marshaler.
func (s *Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(statsJSON{
		Extracted:   s.extracted.Load(),
		Filtered:    s.filtered.Load(),
		Transformed: s.transformed.Load(),
		Loaded:      s.loaded.Load(),
		Errors:      s.errors.Load(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var v statsJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.extracted.Store(v.Extracted)
	s.filtered.Store(v.Filtered)
	s.transformed.Store(v.Transformed)
	s.loaded.Store(v.Loaded)
	s.errors.Store(v.Errors)
	return nil
}

// restore copies counter values from a checkpointed snapshot.
func (s *Stats) restore(from *Stats) {
	s.extracted.Store(from.extracted.Load())
	s.filtered.Store(from.filtered.Load())
	s.transformed.Store(from.transformed.Load())
	s.loaded.Store(from.loaded.Load())
	s.errors.Store(from.errors.Load())
}

// Internal increment methods. They return the new value, which is needed
// for race-free progress threshold checks.
func (s *Stats) incExtracted(n int64) int64   { return s.extracted.Add(n) }
func (s *Stats) incFiltered(n int64) int64    { return s.filtered.Add(n) }
func (s *Stats) incTransformed(n int64) int64 { return s.transformed.Add(n) }
func (s *Stats) incLoaded(n int64) int64      { return s.loaded.Add(n) }
func (s *Stats) incErrors(n int64) int64      { return s.errors.Add(n) }
