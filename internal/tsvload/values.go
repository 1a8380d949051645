package tsvload

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mustafasaltik/salesetl/internal/table"
)

// missingMarkers are cell texts read as a missing value.
var missingMarkers = func() map[string]bool {
	markers := []string{
		"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
		"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
		"n/a", "nan", "null",
	}
	set := make(map[string]bool, len(markers))
	for _, m := range markers {
		set[m] = true
	}
	return set
}()

type kind int

const (
	kindInt kind = iota
	kindDecimal
	kindString
)

// inferKind picks the narrowest type every present cell of column i fits.
// A column with no present cells stays integer and loads as all nil.
func inferKind(records [][]string, i int) kind {
	k := kindInt
	for _, record := range records {
		if i >= len(record) || missingMarkers[record[i]] {
			continue
		}
		s := record[i]
		if k == kindInt {
			if _, err := strconv.ParseInt(s, 10, 64); err == nil {
				continue
			}
			k = kindDecimal
		}
		if _, err := decimal.NewFromString(s); err != nil {
			return kindString
		}
	}
	return k
}

func convert(s string, k kind) table.Value {
	if missingMarkers[s] {
		return nil
	}
	switch k {
	case kindInt:
		n, _ := strconv.ParseInt(s, 10, 64)
		return n
	case kindDecimal:
		return decimal.RequireFromString(s)
	}
	return s
}
