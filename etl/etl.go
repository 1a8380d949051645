package etl

import (
	"context"
	"iter"
)

// Stage identifies where in the engine an event occurred.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
)

// Job defines the operations the engine drives. Extract and Load are
// required; the conversion between them comes from [Transformer].
//
// The type parameters are:
//   - S: source record type (one row as read from memory or a file)
//   - T: target record type (what a single Load batch is made of)
type Job[S, T any] interface {
	// Extract yields records in the order they must reach Load.
	Extract(ctx context.Context) iter.Seq2[S, error]

	// Load writes one batch of records to the destination. Batches arrive
	// in extract order and never concurrently with each other.
	Load(ctx context.Context, batch []T) error
}

// Transformer converts one source record to one target record.
//
// Example:
//
//	func (j *copyJob) Transform(ctx context.Context, row table.Row) ([]any, error) {
//	    args := make([]any, len(row))
//	    for i, v := range row {
//	        args[i] = bind(v, j.kinds[i])
//	    }
//	    return args, nil
//	}
type Transformer[S, T any] interface {
	Transform(ctx context.Context, src S) (T, error)
}
