package main

import (
	"context"
	"database/sql"
	"errors"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"

	"github.com/mustafasaltik/salesetl/internal/dbconfig"
	"github.com/mustafasaltik/salesetl/internal/ingest"
	"github.com/mustafasaltik/salesetl/internal/store"
	"github.com/mustafasaltik/salesetl/internal/tsvload"
)

// RunConfig defines the configuration of a load.
type RunConfig struct {
	Key          string
	Config       string
	Section      string
	Products     string
	Transactions string
	Users        string
	Delimiter    string
	BatchRows    int
	Strict       bool
	SQLite       string
	LogLevel     string
}

// BindFlags adds the run flags to the flagset.
func (c *RunConfig) BindFlags(flag *pflag.FlagSet) {
	flag.StringVar(&c.Key, "key", "src/secret.key", "path of the key file")
	flag.StringVar(&c.Config, "config", "src/config.ini.enc", "path of the sealed database configuration")
	flag.StringVar(&c.Section, "section", dbconfig.DefaultSection, "configuration section with the connection settings")
	flag.StringVar(&c.Products, "products", "input/products.csv", "products export")
	flag.StringVar(&c.Transactions, "transactions", "input/transactions.csv", "transactions export")
	flag.StringVar(&c.Users, "users", "input/users.csv", "users export")
	flag.StringVar(&c.Delimiter, "delimiter", string(tsvload.DefaultDelimiter), "field separator of the exports")
	flag.IntVar(&c.BatchRows, "batch-rows", 500, "rows gathered per insert round")
	flag.BoolVar(&c.Strict, "strict", false, "fail instead of skipping tables whose export is missing")
	flag.StringVar(&c.SQLite, "sqlite", "", "write into this SQLite file instead of PostgreSQL; no key or configuration is read")
	flag.StringVar(&c.LogLevel, "log-level", "info", "debug, info, warn or error")
}

// Load reads the values back from vip, which layers the environment over
// the flags.
func (c *RunConfig) Load(vip *viper.Viper) {
	c.Key = vip.GetString("key")
	c.Config = vip.GetString("config")
	c.Section = vip.GetString("section")
	c.Products = vip.GetString("products")
	c.Transactions = vip.GetString("transactions")
	c.Users = vip.GetString("users")
	c.Delimiter = vip.GetString("delimiter")
	c.BatchRows = vip.GetInt("batch-rows")
	c.Strict = vip.GetBool("strict")
	c.SQLite = vip.GetString("sqlite")
	c.LogLevel = vip.GetString("log-level")
}

// VerifyFlags verifies whether the values provided are valid.
func (c *RunConfig) VerifyFlags() error {
	var errlist errs.Group
	if c.SQLite == "" {
		if c.Key == "" {
			errlist.Add(errors.New("flag '--key' is not set"))
		}
		if c.Config == "" {
			errlist.Add(errors.New("flag '--config' is not set"))
		}
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		errlist.Add(errors.New("flag '--delimiter' must be a single character"))
	}
	if c.BatchRows < 1 {
		errlist.Add(errors.New("flag '--batch-rows' must be positive"))
	}
	return errlist.Err()
}

func newRunCmd() *cobra.Command {
	var config RunConfig

	cmd := &cobra.Command{
		Use:   "run",
		Short: "load the exports and write dim_product, fct_transaction and dim_user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vip, err := newViper(cmd)
			if err != nil {
				return err
			}
			config.Load(vip)
			if err := config.VerifyFlags(); err != nil {
				return err
			}
			return run(cmd, config)
		},
	}
	config.BindFlags(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command, config RunConfig) error {
	ctx := cmd.Context()
	log, err := newLogger(cmd.ErrOrStderr(), config.LogLevel)
	if err != nil {
		return err
	}

	opts := store.Options{BatchRows: config.BatchRows}

	var params dbconfig.Params
	connect := func(ctx context.Context, p dbconfig.Params) (ingest.Store, error) {
		return store.Connect(ctx, log, p, opts)
	}
	if config.SQLite != "" {
		connect = func(ctx context.Context, _ dbconfig.Params) (ingest.Store, error) {
			db, err := sql.Open("sqlite3", config.SQLite)
			if err != nil {
				return nil, store.ConnectionError.Wrap(err)
			}
			if err := db.PingContext(ctx); err != nil {
				return nil, store.ConnectionError.Wrap(errs.Combine(err, db.Close()))
			}
			return store.Open(log, db, store.SQLite, opts), nil
		}
	} else {
		params, err = ingest.LoadParams(config.Key, config.Config, config.Section)
		if err != nil {
			return err
		}
	}

	delimiter, _ := utf8.DecodeRuneInString(config.Delimiter)
	loader := tsvload.New(log).WithDelimiter(delimiter)

	_, err = ingest.New(log, loader, connect).
		WithStrict(config.Strict).
		Run(ctx, params, ingest.Sources{
			Products:     config.Products,
			Transactions: config.Transactions,
			Users:        config.Users,
		})
	return err
}
