// Package tsvload reads delimited text files into tables. A source that
// cannot be read is reported as a missing result, never as an error, so one
// bad file does not stop the others from loading.
package tsvload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zeebo/errs"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mustafasaltik/salesetl/internal/table"
)

// Error is the class of file access errors. It is only ever carried inside
// a missing table.Result.
var Error = errs.Class("file access")

// DefaultDelimiter separates fields when none is configured.
const DefaultDelimiter = '\t'

// Loader reads delimited files.
type Loader struct {
	delimiter rune
	log       *slog.Logger
}

// New returns a tab-delimited Loader. A nil logger means slog.Default().
func New(log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{delimiter: DefaultDelimiter, log: log}
}

// WithDelimiter changes the field separator. Zero is ignored.
func (l *Loader) WithDelimiter(r rune) *Loader {
	if r != 0 {
		l.delimiter = r
	}
	return l
}

// Load reads the file at path. The table is named after the file without
// its extension.
func (l *Loader) Load(path string) table.Result {
	f, err := os.Open(path)
	if err != nil {
		return l.missing(path, Error.Wrap(err))
	}
	defer func() { _ = f.Close() }()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	t, err := l.Read(name, f)
	if err != nil {
		return l.missing(path, Error.New("%s: %w", path, err))
	}

	l.log.Info("loaded records", "file", path, "rows", t.Len(), "columns", len(t.Columns))
	return table.Ok(path, t)
}

func (l *Loader) missing(path string, err error) table.Result {
	l.log.Warn("source unavailable", "file", path, "error", err)
	return table.Missing(path, err)
}

// Read parses a delimited stream with a header row. A byte-order mark
// selects UTF-8 or UTF-16; without one the stream must be valid UTF-8 and
// an invalid byte is a read error rather than a replacement character.
func (l *Loader) Read(name string, r io.Reader) (*table.Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8Validator))

	reader := csv.NewReader(decoded)
	reader.Comma = l.delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("no columns to parse")
	}
	if err != nil {
		return nil, err
	}

	columns := uniqueColumns(header)
	var raw [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) > len(columns) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(columns), len(record))
		}
		raw = append(raw, record)
	}

	t := table.New(name, columns...)
	kinds := make([]kind, len(columns))
	for i := range columns {
		kinds[i] = inferKind(raw, i)
	}
	for _, record := range raw {
		row := make(table.Row, len(columns))
		for i := range columns {
			if i < len(record) {
				row[i] = convert(record[i], kinds[i])
			}
		}
		t.Append(row)
	}
	return t, nil
}

// uniqueColumns names blank header cells by position and suffixes repeats
// with .1, .2 and so on.
func uniqueColumns(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for n := 1; seen[name]; n++ {
			name = h + "." + strconv.Itoa(n)
		}
		seen[name] = true
		columns[i] = name
	}
	return columns
}
