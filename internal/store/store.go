package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/zeebo/errs"

	"github.com/mustafasaltik/salesetl/etl"
	"github.com/mustafasaltik/salesetl/internal/dbconfig"
	"github.com/mustafasaltik/salesetl/internal/table"
)

// Options tune how rows are written.
type Options struct {
	// BatchRows is how many rows are gathered before they are cut into
	// INSERT statements. Statements never exceed the dialect's bind
	// parameter limit.
	BatchRows int

	// ReportInterval is how many written rows pass between progress logs.
	ReportInterval int
}

func (o Options) withDefaults() Options {
	if o.BatchRows < 1 {
		o.BatchRows = etl.DefaultLoadBatchSize
	}
	if o.ReportInterval < 1 {
		o.ReportInterval = etl.DefaultReportInterval
	}
	return o
}

// DB is an open database handle. It is owned by one run and must be closed.
type DB struct {
	log     *slog.Logger
	db      *sql.DB
	dialect *Dialect
	opts    Options
}

// Connect opens a PostgreSQL pool for params and checks that the server
// accepts the credentials.
func Connect(ctx context.Context, log *slog.Logger, params dbconfig.Params, opts Options) (*DB, error) {
	port, err := strconv.ParseUint(params.Port, 10, 16)
	if err != nil || port == 0 {
		return nil, ConnectionError.New("invalid port %q", params.Port)
	}

	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(params.User, params.Password),
		Host:   net.JoinHostPort(params.Host, strconv.FormatUint(port, 10)),
		Path:   "/" + params.Database,
	}
	config, err := pgx.ParseConfig(dsn.String())
	if err != nil {
		return nil, ConnectionError.Wrap(err)
	}

	db := stdlib.OpenDB(*config)
	if err := db.PingContext(ctx); err != nil {
		return nil, ConnectionError.Wrap(errs.Combine(err, db.Close()))
	}

	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "connected", "params", params)
	return Open(log, db, Postgres, opts), nil
}

// Open wraps an existing pool. A nil logger means slog.Default().
func Open(log *slog.Logger, db *sql.DB, dialect *Dialect, opts Options) *DB {
	if log == nil {
		log = slog.Default()
	}
	return &DB{log: log, db: db, dialect: dialect, opts: opts.withDefaults()}
}

// Close releases the pool.
func (db *DB) Close() error {
	return Error.Wrap(db.db.Close())
}

// Persist replaces the table called name with the contents of t. Column
// names are standardized, and so are the names in primaryKey. When
// primaryKey is not empty the written rows must satisfy it, otherwise a
// ConstraintError is returned and the previous table is kept.
func (db *DB) Persist(ctx context.Context, t *table.Table, name string, primaryKey ...string) error {
	columns, err := standardizeColumns(t)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return Error.New("%s: no columns to write", name)
	}

	key := make([]string, len(primaryKey))
	for i, k := range primaryKey {
		key[i] = StandardizeColumn(k)
		if !slices.Contains(columns, key[i]) {
			return Error.New("%s: primary key column %q not found", name, k)
		}
	}
	kinds := inferKinds(t)

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(name)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, db.dialect.createTable(name, columns, kinds, key)); err != nil {
			return err
		}

		job := newCopyJob(db.log, tx, db.dialect, name, columns, kinds, t.Rows, db.opts)
		if err := etl.New[table.Row, []any](job).Run(ctx); err != nil {
			return err
		}

		if len(key) > 0 && !db.dialect.inlineKey {
			if _, err := tx.ExecContext(ctx, db.dialect.addPrimaryKey(name, key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if db.dialect.isConstraint(err) {
			return ConstraintError.New("%s primary key (%s): %w", name, strings.Join(key, ", "), err)
		}
		return Error.New("%s: %w", name, err)
	}

	db.log.InfoContext(ctx, "data saved", "table", name, "rows", t.Len(), "primary_key", key)
	return nil
}

// withTx runs fn in a transaction, committing when fn succeeds and rolling
// back otherwise.
func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			err = tx.Commit()
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			db.log.WarnContext(ctx, "rollback failed", "error", rbErr)
		}
	}()

	return fn(tx)
}
