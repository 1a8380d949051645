package store

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mustafasaltik/salesetl/internal/table"
)

var standardizer = strings.NewReplacer(" ", "_", "(", "", ")", "")

// StandardizeColumn maps a header name to its stored form: spaces become
// underscores, parentheses are dropped and the result is lowercased.
// "Date (UTC)" becomes "date_utc".
func StandardizeColumn(name string) string {
	return strings.ToLower(standardizer.Replace(name))
}

func standardizeColumns(t *table.Table) ([]string, error) {
	columns := make([]string, len(t.Columns))
	origin := make(map[string]string, len(t.Columns))
	for i, c := range t.Columns {
		s := StandardizeColumn(c)
		if prev, dup := origin[s]; dup {
			return nil, Error.New("%s: columns %q and %q both become %q", t.Name, prev, c, s)
		}
		origin[s] = c
		columns[i] = s
	}
	return columns, nil
}

type kind int

const (
	kindEmpty kind = iota
	kindInteger
	kindNumeric
	kindTimestamp
	kindText
	// kindMixed columns are stored as text.
	kindMixed
)

func kindOf(v table.Value) kind {
	switch v.(type) {
	case nil:
		return kindEmpty
	case int64:
		return kindInteger
	case decimal.Decimal:
		return kindNumeric
	case time.Time:
		return kindTimestamp
	}
	return kindText
}

// inferKinds finds the column kind that holds every present value.
// Integers widen to numeric; any other mix is stored as text.
func inferKinds(t *table.Table) []kind {
	kinds := make([]kind, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			kinds[i] = widen(kinds[i], kindOf(v))
		}
	}
	return kinds
}

func widen(a, b kind) kind {
	switch {
	case b == kindEmpty || a == b:
		return a
	case a == kindEmpty:
		return b
	case (a == kindInteger && b == kindNumeric) || (a == kindNumeric && b == kindInteger):
		return kindNumeric
	}
	return kindMixed
}

// bind converts a cell into a driver argument for a column of kind k.
func bind(v table.Value, k kind) any {
	if v == nil {
		return nil
	}
	if k == kindMixed {
		return table.Format(v)
	}
	switch x := v.(type) {
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.UTC()
	}
	return v
}
