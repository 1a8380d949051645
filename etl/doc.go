// Package etl is a small ordered extract-transform-load engine.
//
// A job implements [Job] (Extract and Load) plus [Transformer]. The engine
// runs four stages, each on its own goroutine with a single worker:
//
//	extract -> transform -> batch -> load
//
// Because every stage has one worker, records reach Load in the order
// Extract yielded them and Load is never called concurrently. That makes it
// safe for Load to write through a single database transaction.
//
// # Quick Start
//
//	type copyJob struct {
//	    tx   *sql.Tx
//	    stmt func(rows int) string // multi-row INSERT with rows placeholder groups
//	    rows []table.Row
//	}
//
//	func (j *copyJob) Extract(ctx context.Context) iter.Seq2[table.Row, error] {
//	    return func(yield func(table.Row, error) bool) {
//	        for _, r := range j.rows {
//	            if !yield(r, nil) {
//	                return
//	            }
//	        }
//	    }
//	}
//
//	func (j *copyJob) Transform(ctx context.Context, row table.Row) ([]any, error) {
//	    return []any(row), nil
//	}
//
//	func (j *copyJob) Load(ctx context.Context, batch [][]any) error {
//	    var args []any
//	    for _, values := range batch {
//	        args = append(args, values...)
//	    }
//	    _, err := j.tx.ExecContext(ctx, j.stmt(len(batch)), args...)
//	    return err
//	}
//
//	err := etl.New[table.Row, []any](&copyJob{tx: tx, stmt: stmt, rows: rows}).Run(ctx)
//
// # Optional Interfaces
//
// The pipeline detects these on the job value:
//
//   - [Batcher]: custom batch cutting, e.g. [WeightedBatcher] for bind
//     parameter limits
//   - [LoadBatchSize]: how many records to buffer before batching
//   - [ProgressReporter]: periodic progress callbacks
//   - [Stopper]: final callback with [Stats] and the run error
//
// WithLoadBatchSize and WithReportInterval override the job's values.
//
// # Errors
//
// The first error from any stage cancels the others and is returned from
// Run, prefixed with the [Stage] it came from. Errors keep their chain, so
// errors.As and errs.Class.Has work on the result.
package etl
