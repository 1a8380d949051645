// Package transform cleans loaded tables: timestamp normalization,
// duplicate removal and the collapse of user records to one per customer.
package transform

import (
	"log/slog"
	"slices"
	"time"

	"github.com/zeebo/errs"

	"github.com/mustafasaltik/salesetl/internal/table"
)

// Error is the class of transform errors.
var Error = errs.Class("transform")

// Column names the transforms rely on.
const (
	DateColumn    = "Date (UTC)"
	CustomerID    = "Customer ID"
	CustomerName  = "Customer Name"
	CustomerEmail = "Customer Email"
)

// DateLayout is month/day/two-digit-year hour:minute. Years 69 to 99 are
// read as 19xx, 00 to 68 as 20xx.
const DateLayout = "1/2/06 15:4"

// Transformer applies the cleaning steps and logs what each one changed.
type Transformer struct {
	log *slog.Logger
}

// New returns a Transformer. A nil logger means slog.Default().
func New(log *slog.Logger) *Transformer {
	if log == nil {
		log = slog.Default()
	}
	return &Transformer{log: log}
}

// NormalizeTimestamps parses the Date (UTC) column into UTC times. Missing
// cells stay nil and cells that already hold a time are kept. A table
// without the column is returned unchanged.
func (x *Transformer) NormalizeTimestamps(t *table.Table) (*table.Table, error) {
	col := t.Index(DateColumn)
	if col < 0 {
		x.log.Warn("column not found, timestamps left as is", "table", t.Name, "column", DateColumn)
		return t, nil
	}

	out := t.Clone()
	for i, row := range out.Rows {
		switch v := row[col].(type) {
		case nil, time.Time:
		case string:
			ts, err := time.ParseInLocation(DateLayout, v, time.UTC)
			if err != nil {
				return nil, Error.New("%s row %d: %q is not a %s timestamp", t.Name, i+1, v, DateLayout)
			}
			row[col] = ts
		default:
			return nil, Error.New("%s row %d: %s holds %s, not a timestamp", t.Name, i+1, DateColumn, table.Format(v))
		}
	}

	x.log.Info("normalized timestamps", "table", t.Name, "rows", out.Len())
	return out, nil
}

// Dedupe drops rows equal in every column to an earlier row. The survivors
// keep their order.
func (x *Transformer) Dedupe(t *table.Table) *table.Table {
	seen := make(map[string]struct{}, t.Len())
	rows := make([]table.Row, 0, t.Len())
	for _, row := range t.Rows {
		k := table.RowKey(row)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, row)
	}

	x.log.Info("removed duplicates", "table", t.Name, "removed", t.Len()-len(rows), "remaining", len(rows))
	return t.WithRows(rows)
}

type profile struct {
	id, name, email table.Value
}

// CollapseUsers keeps one row per Customer ID holding the last present
// name and email seen in file order. Rows without a Customer ID are
// dropped. The result is ordered by Customer ID.
func (x *Transformer) CollapseUsers(t *table.Table) (*table.Table, error) {
	cols := make([]int, 3)
	for i, name := range []string{CustomerID, CustomerName, CustomerEmail} {
		if cols[i] = t.Index(name); cols[i] < 0 {
			return nil, Error.New("%s: column %q not found", t.Name, name)
		}
	}

	byID := make(map[string]*profile)
	var profiles []*profile
	dropped := 0
	for _, row := range t.Rows {
		id := row[cols[0]]
		if id == nil {
			dropped++
			continue
		}
		k := table.Key(id)
		p, ok := byID[k]
		if !ok {
			p = &profile{id: id}
			byID[k] = p
			profiles = append(profiles, p)
		}
		if v := row[cols[1]]; v != nil {
			p.name = v
		}
		if v := row[cols[2]]; v != nil {
			p.email = v
		}
	}
	if dropped > 0 {
		x.log.Warn("dropped users without customer id", "table", t.Name, "rows", dropped)
	}

	slices.SortStableFunc(profiles, func(a, b *profile) int {
		return table.Compare(a.id, b.id)
	})

	out := table.New(t.Name, CustomerID, CustomerName, CustomerEmail)
	for _, p := range profiles {
		out.Append(table.Row{p.id, p.name, p.email})
	}

	x.log.Info("collapsed users", "table", t.Name, "input", t.Len(), "users", out.Len())
	return out, nil
}
