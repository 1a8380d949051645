// Package ingest runs the whole load: read the three sources, clean them,
// derive the user profile and write the target tables.
package ingest

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/zeebo/errs"

	"github.com/mustafasaltik/salesetl/internal/aggregate"
	"github.com/mustafasaltik/salesetl/internal/dbconfig"
	"github.com/mustafasaltik/salesetl/internal/secret"
	"github.com/mustafasaltik/salesetl/internal/table"
	"github.com/mustafasaltik/salesetl/internal/transform"
)

// Error is the class of run errors. It wraps the failing stage's error,
// which keeps its own class.
var Error = errs.Class("ingest")

// Target tables.
const (
	ProductTable     = "dim_product"
	TransactionTable = "fct_transaction"
	UserTable        = "dim_user"
)

// Store is where tables are written.
type Store interface {
	Persist(ctx context.Context, t *table.Table, name string, primaryKey ...string) error
	Close() error
}

// Connector opens a Store for one run.
type Connector func(ctx context.Context, params dbconfig.Params) (Store, error)

// Loader reads one source.
type Loader interface {
	Load(path string) table.Result
}

// Sources are the input file paths.
type Sources struct {
	Products     string
	Transactions string
	Users        string
}

// Report tells which tables a run wrote and which it skipped.
type Report struct {
	Persisted []string
	// Skipped maps a table to the reason it was not written.
	Skipped map[string]string
}

// LogValue implements slog.LogValuer.
func (r *Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("persisted", strings.Join(r.Persisted, ",")),
		slog.String("skipped", strings.Join(r.SkippedTables(), ",")),
	)
}

// SkippedTables returns the skipped table names in sorted order.
func (r *Report) SkippedTables() []string {
	names := make([]string, 0, len(r.Skipped))
	for name := range r.Skipped {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Pipeline sequences one run.
type Pipeline struct {
	log       *slog.Logger
	loader    Loader
	transform *transform.Transformer
	connect   Connector
	strict    bool
}

// New returns a Pipeline. A nil logger means slog.Default().
func New(log *slog.Logger, loader Loader, connect Connector) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		log:       log,
		loader:    loader,
		transform: transform.New(log),
		connect:   connect,
	}
}

// WithStrict makes a run fail instead of skipping tables whose sources are
// missing.
func (p *Pipeline) WithStrict(strict bool) *Pipeline {
	p.strict = strict
	return p
}

type target struct {
	name  string
	table *table.Table
	key   []string
}

// Run executes the load. A missing source skips only the tables built from
// it; dim_user needs both users and transactions. The run fails when no
// table is left to write. The returned report is valid even when err is
// not nil and lists the tables written before the failure.
func (p *Pipeline) Run(ctx context.Context, params dbconfig.Params, src Sources) (_ *Report, err error) {
	report := &Report{Skipped: make(map[string]string)}

	products := p.loader.Load(src.Products)
	transactions := p.loader.Load(src.Transactions)
	users := p.loader.Load(src.Users)

	targets, err := p.prepare(ctx, report, products, transactions, users)
	if err != nil {
		return report, err
	}

	if len(report.Skipped) > 0 {
		for _, name := range report.SkippedTables() {
			p.log.WarnContext(ctx, "skipping table", "table", name, "reason", report.Skipped[name])
		}
		if p.strict {
			return report, Error.New("strict mode: %d table(s) skipped", len(report.Skipped))
		}
	}
	if len(targets) == 0 {
		return report, Error.New("no source loaded, nothing to persist")
	}

	db, err := p.connect(ctx, params)
	if err != nil {
		return report, Error.New("connect: %w", err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(db.Close())) }()

	for _, t := range targets {
		if err := db.Persist(ctx, t.table, t.name, t.key...); err != nil {
			return report, Error.New("persist %s: %w", t.name, err)
		}
		report.Persisted = append(report.Persisted, t.name)
	}

	p.log.InfoContext(ctx, "run finished", "report", report)
	return report, nil
}

// prepare cleans the loaded sources and returns the tables to write, in
// write order.
func (p *Pipeline) prepare(ctx context.Context, report *Report, products, transactions, users table.Result) ([]target, error) {
	var targets []target

	if t, ok := products.Table(); ok {
		targets = append(targets, target{ProductTable, p.transform.Dedupe(t), []string{"subscription_id", "plan"}})
	} else {
		report.Skipped[ProductTable] = missing("products", products)
	}

	txns, haveTxns := transactions.Table()
	if haveTxns {
		normalized, err := p.transform.NormalizeTimestamps(txns)
		if err != nil {
			return nil, Error.New("transform transactions: %w", err)
		}
		txns = p.transform.Dedupe(normalized)
		targets = append(targets, target{TransactionTable, txns, []string{"transaction_id"}})
	} else {
		report.Skipped[TransactionTable] = missing("transactions", transactions)
	}

	u, haveUsers := users.Table()
	switch {
	case !haveUsers:
		report.Skipped[UserTable] = missing("users", users)
	case !haveTxns:
		report.Skipped[UserTable] = missing("transactions", transactions)
	default:
		profile, err := p.userProfile(ctx, u, txns)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target{UserTable, profile, []string{"customer_id"}})
	}

	return targets, nil
}

func (p *Pipeline) userProfile(ctx context.Context, users, txns *table.Table) (*table.Table, error) {
	collapsed, err := p.transform.CollapseUsers(p.transform.Dedupe(users))
	if err != nil {
		return nil, Error.New("transform users: %w", err)
	}

	spending, err := aggregate.ComputeSpending(txns)
	if err != nil {
		return nil, Error.New("aggregate spending: %w", err)
	}
	p.log.DebugContext(ctx, "spending per customer", "customers", spending.Len(), "sample", spending.Table().Head(5))

	profile, err := aggregate.Merge(collapsed, spending)
	if err != nil {
		return nil, Error.New("merge users: %w", err)
	}
	p.log.DebugContext(ctx, "user profile", "rows", profile.Len(), "sample", profile.Head(5))
	return profile, nil
}

func missing(source string, res table.Result) string {
	return source + " source missing: " + res.Reason().Error()
}

// LoadParams reads the key file, decrypts the sealed configuration with it
// and parses the named section.
func LoadParams(keyPath, configPath, section string) (dbconfig.Params, error) {
	key, err := secret.LoadKey(keyPath)
	if err != nil {
		return dbconfig.Params{}, Error.New("load key: %w", err)
	}
	params, err := dbconfig.FromSealedFile(key, configPath, section)
	if err != nil {
		return dbconfig.Params{}, Error.New("read config: %w", err)
	}
	return params, nil
}
