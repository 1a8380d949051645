package store

import (
	"context"
	"database/sql"
	"iter"
	"log/slog"

	"github.com/mustafasaltik/salesetl/etl"
	"github.com/mustafasaltik/salesetl/internal/table"
)

// copyJob streams the rows of one table into multi-row INSERT statements on
// an open transaction.
type copyJob struct {
	log     *slog.Logger
	tx      *sql.Tx
	dialect *Dialect

	name    string
	columns []string
	kinds   []kind
	rows    []table.Row

	batchRows      int
	reportInterval int
	batcher        etl.Batcher[[]any]
}

var (
	_ etl.Job[table.Row, []any]         = (*copyJob)(nil)
	_ etl.Transformer[table.Row, []any] = (*copyJob)(nil)
	_ etl.Batcher[[]any]                = (*copyJob)(nil)
	_ etl.LoadBatchSize                 = (*copyJob)(nil)
	_ etl.ProgressReporter              = (*copyJob)(nil)
	_ etl.Stopper                       = (*copyJob)(nil)
)

func newCopyJob(log *slog.Logger, tx *sql.Tx, dialect *Dialect, name string, columns []string, kinds []kind, rows []table.Row, opts Options) *copyJob {
	width := len(columns)
	return &copyJob{
		log:            log,
		tx:             tx,
		dialect:        dialect,
		name:           name,
		columns:        columns,
		kinds:          kinds,
		rows:           rows,
		batchRows:      opts.BatchRows,
		reportInterval: opts.ReportInterval,
		batcher: etl.WeightedBatcher(func([]any) int {
			return width
		}, dialect.maxParams),
	}
}

func (j *copyJob) Extract(ctx context.Context) iter.Seq2[table.Row, error] {
	return func(yield func(table.Row, error) bool) {
		for _, row := range j.rows {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

func (j *copyJob) Transform(_ context.Context, row table.Row) ([]any, error) {
	args := make([]any, len(row))
	for i, v := range row {
		args[i] = bind(v, j.kinds[i])
	}
	return args, nil
}

func (j *copyJob) Batch(items [][]any) [][][]any {
	return j.batcher.Batch(items)
}

func (j *copyJob) LoadBatchSize() int { return j.batchRows }

func (j *copyJob) Load(ctx context.Context, batch [][]any) error {
	args := make([]any, 0, len(batch)*len(j.columns))
	for _, values := range batch {
		args = append(args, values...)
	}
	_, err := j.tx.ExecContext(ctx, j.dialect.insert(j.name, j.columns, len(batch)), args...)
	return err
}

func (j *copyJob) ReportInterval() int { return j.reportInterval }

func (j *copyJob) OnProgress(ctx context.Context, stats *etl.Stats) {
	j.log.DebugContext(ctx, "copy progress", "table", j.name, "loaded", stats.Loaded(), "of", len(j.rows))
}

func (j *copyJob) Stop(ctx context.Context, stats *etl.Stats, err error) {
	if err != nil {
		j.log.DebugContext(ctx, "copy aborted", "table", j.name, "stats", stats, "error", err)
		return
	}
	j.log.DebugContext(ctx, "copy finished", "table", j.name, "stats", stats)
}
