package etl

import (
	"log/slog"
	"sync/atomic"
)

// Stats counts records as they move through the engine. Counters are
// updated from the stage goroutines, so reads are atomic.
type Stats struct {
	extracted   atomic.Int64
	transformed atomic.Int64
	loaded      atomic.Int64
	batches     atomic.Int64
}

// Extracted returns the number of records extracted.
func (s *Stats) Extracted() int64 { return s.extracted.Load() }

// Transformed returns the number of records transformed.
func (s *Stats) Transformed() int64 { return s.transformed.Load() }

// Loaded returns the number of records loaded.
func (s *Stats) Loaded() int64 { return s.loaded.Load() }

// Batches returns the number of successful Load calls.
func (s *Stats) Batches() int64 { return s.batches.Load() }

// LogValue implements slog.LogValuer for structured logging.
func (s *Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("extracted", s.Extracted()),
		slog.Int64("transformed", s.Transformed()),
		slog.Int64("loaded", s.Loaded()),
		slog.Int64("batches", s.Batches()),
	)
}

func (s *Stats) incExtracted() int64   { return s.extracted.Add(1) }
func (s *Stats) incTransformed() int64 { return s.transformed.Add(1) }
func (s *Stats) incBatches() int64     { return s.batches.Add(1) }

// incLoaded returns the new total so progress thresholds can be checked
// without a second read.
func (s *Stats) incLoaded(n int64) int64 { return s.loaded.Add(n) }
