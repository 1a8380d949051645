package transform_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mustafasaltik/salesetl/internal/table"
	"github.com/mustafasaltik/salesetl/internal/transform"
)

func newTransformer(buf *bytes.Buffer) *transform.Transformer {
	return transform.New(slog.New(slog.NewTextHandler(buf, nil)))
}

func TestNormalizeTimestamps(t *testing.T) {
	tbl := table.New("transactions", "Transaction ID", transform.DateColumn)
	tbl.Append(table.Row{int64(1), "1/5/24 13:07"})
	tbl.Append(table.Row{int64(2), "12/31/99 0:00"})
	tbl.Append(table.Row{int64(3), nil})
	tbl.Append(table.Row{int64(4), "03/09/68 9:5"})

	out, err := transform.New(nil).NormalizeTimestamps(tbl)
	require.NoError(t, err)

	require.Equal(t, time.Date(2024, 1, 5, 13, 7, 0, 0, time.UTC), out.Rows[0][1])
	require.Equal(t, time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC), out.Rows[1][1])
	require.Nil(t, out.Rows[2][1])
	require.Equal(t, time.Date(2068, 3, 9, 9, 5, 0, 0, time.UTC), out.Rows[3][1])

	// the input table is left alone
	require.Equal(t, "1/5/24 13:07", tbl.Rows[0][1])

	again, err := transform.New(nil).NormalizeTimestamps(out)
	require.NoError(t, err)
	require.Equal(t, out.Rows, again.Rows)
}

func TestNormalizeTimestamps_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		value   table.Value
		message string
	}{
		{name: "iso date", value: "2024-01-05 13:07", message: `row 2: "2024-01-05 13:07"`},
		{name: "month out of range", value: "13/01/24 10:00", message: "row 2"},
		{name: "number", value: int64(20240105), message: "row 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := table.New("transactions", transform.DateColumn)
			tbl.Append(table.Row{"1/1/24 0:00"})
			tbl.Append(table.Row{tt.value})

			_, err := transform.New(nil).NormalizeTimestamps(tbl)
			require.Error(t, err)
			require.True(t, transform.Error.Has(err))
			require.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestNormalizeTimestamps_NoColumn(t *testing.T) {
	tbl := table.New("transactions", "Date")
	tbl.Append(table.Row{"1/5/24 13:07"})

	var logs bytes.Buffer
	out, err := newTransformer(&logs).NormalizeTimestamps(tbl)
	require.NoError(t, err)
	require.Same(t, tbl, out)
	require.Contains(t, logs.String(), "level=WARN")
	require.Contains(t, logs.String(), "table=transactions")
}

func TestDedupe(t *testing.T) {
	tbl := table.New("transactions", "Customer ID", "Total")
	tbl.Append(table.Row{int64(1), int64(100)})
	tbl.Append(table.Row{int64(2), int64(200)})
	tbl.Append(table.Row{int64(2), int64(200)})
	tbl.Append(table.Row{int64(3), nil})
	tbl.Append(table.Row{int64(1), int64(100)})
	tbl.Append(table.Row{int64(3), nil})
	tbl.Append(table.Row{int64(3), "300"})

	var logs bytes.Buffer
	x := newTransformer(&logs)

	once := x.Dedupe(tbl)
	require.Equal(t, []table.Row{
		{int64(1), int64(100)},
		{int64(2), int64(200)},
		{int64(3), nil},
		{int64(3), "300"},
	}, once.Rows)
	require.Contains(t, logs.String(), "removed=3")
	require.Contains(t, logs.String(), "remaining=4")

	twice := x.Dedupe(once)
	require.Equal(t, once.Rows, twice.Rows)
	require.Equal(t, tbl.Columns, twice.Columns)
}

func TestDedupe_Empty(t *testing.T) {
	out := transform.New(nil).Dedupe(table.New("users", "Customer ID"))
	require.Zero(t, out.Len())
}

func TestCollapseUsers(t *testing.T) {
	tests := []struct {
		name string
		rows []table.Row
		want []table.Row
	}{
		{
			name: "last occurrence wins",
			rows: []table.Row{
				{int64(1), "A", "a@x"},
				{int64(1), "B", "b@x"},
			},
			want: []table.Row{
				{int64(1), "B", "b@x"},
			},
		},
		{
			name: "missing values do not overwrite",
			rows: []table.Row{
				{int64(1), "A", "a@x"},
				{int64(1), nil, "c@x"},
			},
			want: []table.Row{
				{int64(1), "A", "c@x"},
			},
		},
		{
			name: "ordered by id",
			rows: []table.Row{
				{int64(3), "Charlie", "c@x"},
				{int64(1), "Alice", "a@x"},
				{int64(2), "Bob", nil},
				{int64(1), "Alicia", nil},
			},
			want: []table.Row{
				{int64(1), "Alicia", "a@x"},
				{int64(2), "Bob", nil},
				{int64(3), "Charlie", "c@x"},
			},
		},
		{
			name: "missing id dropped",
			rows: []table.Row{
				{nil, "Ghost", "g@x"},
				{int64(5), "Eve", "e@x"},
			},
			want: []table.Row{
				{int64(5), "Eve", "e@x"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := table.New("users", "Customer Email", "Signup", "Customer ID", "Customer Name")
			for _, r := range tt.rows {
				tbl.Append(table.Row{r[2], "2024", r[0], r[1]})
			}

			out, err := transform.New(nil).CollapseUsers(tbl)
			require.NoError(t, err)
			require.Equal(t, []string{transform.CustomerID, transform.CustomerName, transform.CustomerEmail}, out.Columns)
			require.Equal(t, tt.want, out.Rows)
		})
	}
}

func TestCollapseUsers_MissingColumn(t *testing.T) {
	tbl := table.New("users", "Customer ID", "Customer Name")

	_, err := transform.New(nil).CollapseUsers(tbl)
	require.Error(t, err)
	require.True(t, transform.Error.Has(err))
	require.Contains(t, err.Error(), `"Customer Email"`)
}
