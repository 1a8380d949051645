// Package aggregate derives per-customer spending and joins it onto the
// user table.
package aggregate

import (
	"slices"

	"github.com/shopspring/decimal"
	"github.com/zeebo/errs"

	"github.com/mustafasaltik/salesetl/internal/table"
)

// Error is the class of aggregation errors.
var Error = errs.Class("aggregate")

// Column names read and written here.
const (
	CustomerID    = "Customer ID"
	Total         = "Total"
	TotalSpending = "Total Spending"
)

// Spending is the summed Total per Customer ID.
type Spending struct {
	ids    []table.Value
	totals map[string]decimal.Decimal
}

// ComputeSpending sums Total per Customer ID over the transactions.
// Missing totals add nothing and rows without a Customer ID are skipped.
func ComputeSpending(transactions *table.Table) (*Spending, error) {
	idCol, totalCol := transactions.Index(CustomerID), transactions.Index(Total)
	if idCol < 0 || totalCol < 0 {
		return nil, Error.New("%s: needs %q and %q columns", transactions.Name, CustomerID, Total)
	}

	s := &Spending{totals: make(map[string]decimal.Decimal)}
	for i, row := range transactions.Rows {
		id := row[idCol]
		if id == nil {
			continue
		}

		k := table.Key(id)
		sum, seen := s.totals[k]
		if !seen {
			s.ids = append(s.ids, id)
		}

		if v := row[totalCol]; v != nil {
			amount, ok := table.Numeric(v)
			if !ok {
				return nil, Error.New("%s row %d: %s %q is not a number", transactions.Name, i+1, Total, table.Format(v))
			}
			sum = sum.Add(amount)
		}
		s.totals[k] = sum
	}

	slices.SortStableFunc(s.ids, table.Compare)
	return s, nil
}

// Len returns the number of customers.
func (s *Spending) Len() int { return len(s.ids) }

// Total returns the spending of id and whether id had any transactions.
func (s *Spending) Total(id table.Value) (decimal.Decimal, bool) {
	sum, ok := s.totals[table.Key(id)]
	return sum, ok
}

// Table renders the aggregate ordered by Customer ID.
func (s *Spending) Table() *table.Table {
	t := table.New("spending", CustomerID, TotalSpending)
	for _, id := range s.ids {
		t.Append(table.Row{id, s.totals[table.Key(id)]})
	}
	return t
}

// Merge appends Total Spending to every user row, zero for users without
// transactions. Row count and order are those of users. A user Customer ID
// of a different kind than the aggregate's (text against numbers) is an
// error: such ids can never match and every user would get zero.
func Merge(users *table.Table, spending *Spending) (*table.Table, error) {
	idCol := users.Index(CustomerID)
	if idCol < 0 {
		return nil, Error.New("%s: %q column not found", users.Name, CustomerID)
	}
	if users.Has(TotalSpending) {
		return nil, Error.New("%s: already has a %q column", users.Name, TotalSpending)
	}

	out := table.New(users.Name, append(slices.Clone(users.Columns), TotalSpending)...)
	for i, row := range users.Rows {
		sum := decimal.Zero
		if id := row[idCol]; id != nil {
			if spending.Len() > 0 && table.Kind(id) != table.Kind(spending.ids[0]) {
				return nil, Error.New("%s row %d: %s %q is %s, spending is keyed by %s",
					users.Name, i+1, CustomerID, table.Format(id), table.Kind(id), table.Kind(spending.ids[0]))
			}
			if total, ok := spending.Total(id); ok {
				sum = total
			}
		}
		out.Append(append(slices.Clone(row), sum))
	}
	return out, nil
}
