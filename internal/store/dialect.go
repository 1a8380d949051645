package store

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Dialect holds what differs between the supported databases.
type Dialect struct {
	name string

	// maxParams is the most bind parameters one statement may carry.
	maxParams int

	integer, numeric, timestamp, text string

	placeholder func(n int) string

	// inlineKey declares the primary key in CREATE TABLE because the
	// database cannot add one to an existing table.
	inlineKey bool

	isConstraint func(err error) bool
}

// Postgres is PostgreSQL through pgx.
var Postgres = &Dialect{
	name:      "postgres",
	maxParams: 65535,
	integer:   "BIGINT",
	numeric:   "NUMERIC",
	timestamp: "TIMESTAMP",
	text:      "TEXT",
	placeholder: func(n int) string {
		return "$" + strconv.Itoa(n)
	},
	isConstraint: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code)
	},
}

// SQLite is SQLite through go-sqlite3. Tests and local dry runs use it.
var SQLite = &Dialect{
	name:      "sqlite3",
	maxParams: 32766,
	// BIGINT keeps INTEGER affinity without turning a single-column key
	// into a rowid alias, which would accept NULL keys.
	integer:   "BIGINT",
	numeric:   "NUMERIC",
	timestamp: "TIMESTAMP",
	text:      "TEXT",
	placeholder: func(int) string {
		return "?"
	},
	inlineKey: true,
	isConstraint: func(err error) bool {
		var sqliteErr sqlite3.Error
		return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
	},
}

func (d *Dialect) String() string { return d.name }

func (d *Dialect) columnType(k kind) string {
	switch k {
	case kindInteger:
		return d.integer
	case kindNumeric:
		return d.numeric
	case kindTimestamp:
		return d.timestamp
	}
	return d.text
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func quoteAll(idents []string) string {
	quoted := make([]string, len(idents))
	for i, ident := range idents {
		quoted[i] = quote(ident)
	}
	return strings.Join(quoted, ", ")
}

func (d *Dialect) createTable(name string, columns []string, kinds []kind, key []string) string {
	notNull := make(map[string]bool, len(key))
	if d.inlineKey {
		for _, k := range key {
			notNull[k] = true
		}
	}

	defs := make([]string, 0, len(columns)+1)
	for i, c := range columns {
		def := quote(c) + " " + d.columnType(kinds[i])
		if notNull[c] {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	if d.inlineKey && len(key) > 0 {
		defs = append(defs, "PRIMARY KEY ("+quoteAll(key)+")")
	}
	return "CREATE TABLE " + quote(name) + " (" + strings.Join(defs, ", ") + ")"
}

func (d *Dialect) addPrimaryKey(name string, key []string) string {
	return "ALTER TABLE " + quote(name) + " ADD PRIMARY KEY (" + quoteAll(key) + ")"
}

// insert returns an INSERT with one placeholder group per row.
func (d *Dialect) insert(name string, columns []string, rows int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quote(name))
	b.WriteString(" (")
	b.WriteString(quoteAll(columns))
	b.WriteString(") VALUES ")

	n := 0
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range columns {
			if c > 0 {
				b.WriteString(", ")
			}
			n++
			b.WriteString(d.placeholder(n))
		}
		b.WriteByte(')')
	}
	return b.String()
}
