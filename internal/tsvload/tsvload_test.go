package tsvload_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/mustafasaltik/salesetl/internal/table"
	"github.com/mustafasaltik/salesetl/internal/tsvload"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newLoader(buf *bytes.Buffer) *tsvload.Loader {
	return tsvload.New(slog.New(slog.NewTextHandler(buf, nil)))
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "products.csv",
		"Subscription ID\tPlan\tPrice\n"+
			"1\tBasic\t9.99\n"+
			"2\tPremium\t19\n")

	var logs bytes.Buffer
	res := newLoader(&logs).Load(path)

	tbl, ok := res.Table()
	require.True(t, ok)
	require.NoError(t, res.Reason())
	require.Equal(t, "products", tbl.Name)
	require.Equal(t, []string{"Subscription ID", "Plan", "Price"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())

	require.Equal(t, int64(1), tbl.Rows[0][0])
	require.Equal(t, "Premium", tbl.Rows[1][1])
	require.True(t, decimal.RequireFromString("9.99").Equal(tbl.Rows[0][2].(decimal.Decimal)))
	require.True(t, decimal.NewFromInt(19).Equal(tbl.Rows[1][2].(decimal.Decimal)))

	require.Contains(t, logs.String(), "loaded records")
	require.Contains(t, logs.String(), "rows=2")
}

func TestLoad_Missing(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		message string
	}{
		{
			name:    "no such file",
			path:    filepath.Join(dir, "absent.csv"),
			message: "absent.csv",
		},
		{
			name:    "empty file",
			path:    writeFile(t, "empty.csv", ""),
			message: "no columns to parse",
		},
		{
			name:    "row wider than header",
			path:    writeFile(t, "wide.csv", "a\tb\n1\t2\n1\t2\t3\n"),
			message: "line 3: expected 2 fields, saw 3",
		},
		{
			name:    "latin-1 bytes",
			path:    writeFile(t, "latin1.csv", "Customer ID\tCustomer Name\n1\tJos\xe9\n"),
			message: "invalid UTF-8",
		},
		{
			name:    "directory",
			path:    dir,
			message: "file access",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			res := newLoader(&logs).Load(tt.path)

			tbl, ok := res.Table()
			require.False(t, ok)
			require.Nil(t, tbl)
			require.Equal(t, tt.path, res.Path())
			require.True(t, tsvload.Error.Has(res.Reason()))
			require.Contains(t, res.Reason().Error(), tt.message)

			require.Contains(t, logs.String(), "level=WARN")
			require.Contains(t, logs.String(), "source unavailable")
		})
	}
}

func TestLoad_HeaderOnly(t *testing.T) {
	res := tsvload.New(nil).Load(writeFile(t, "users.csv", "Customer ID\tCustomer Name\n"))

	tbl, ok := res.Table()
	require.True(t, ok)
	require.Equal(t, []string{"Customer ID", "Customer Name"}, tbl.Columns)
	require.Zero(t, tbl.Len())
}

func TestRead_MissingMarkersAndShortRows(t *testing.T) {
	input := "id\tname\temail\n" +
		"1\tNA\ta@example.com\n" +
		"NULL\tBob\n" +
		"3\t\tnan\n"

	tbl, err := tsvload.New(nil).Read("users", strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []table.Row{
		{int64(1), nil, "a@example.com"},
		{nil, "Bob", nil},
		{int64(3), nil, nil},
	}, tbl.Rows)
}

func TestRead_TypeInference(t *testing.T) {
	input := "ints\tdecimals\tmixed\tempty\n" +
		"1\t1.5\t7\t\n" +
		"-20\t2\tx\tNA\n"

	tbl, err := tsvload.New(nil).Read("t", strings.NewReader(input))
	require.NoError(t, err)

	require.Equal(t, int64(-20), tbl.Rows[1][0])
	require.IsType(t, decimal.Decimal{}, tbl.Rows[1][1])
	require.Equal(t, "7", tbl.Rows[0][2])
	require.Nil(t, tbl.Rows[0][3])
	require.Nil(t, tbl.Rows[1][3])
}

func TestRead_Header(t *testing.T) {
	tbl, err := tsvload.New(nil).Read("t", strings.NewReader("a\t\ta\ta\nx\ty\tz\tw\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "Unnamed: 1", "a.1", "a.2"}, tbl.Columns)
}

func TestRead_ByteOrderMarks(t *testing.T) {
	text := "Customer ID\tCustomer Name\n7\tZoë\n"

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(text)
	require.NoError(t, err)

	inputs := map[string]string{
		"utf-8":    "\ufeff" + text,
		"utf-16le": utf16,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			tbl, err := tsvload.New(nil).Read("users", strings.NewReader(input))
			require.NoError(t, err)
			require.Equal(t, "Customer ID", tbl.Columns[0])
			require.Equal(t, table.Row{int64(7), "Zoë"}, tbl.Rows[0])
		})
	}
}

func TestRead_Delimiter(t *testing.T) {
	input := "Customer ID,Customer Name\n1,O\"Brien\n"

	tbl, err := tsvload.New(nil).WithDelimiter(',').Read("users", strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, table.Row{int64(1), `O"Brien`}, tbl.Rows[0])
}
