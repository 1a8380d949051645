package table

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Value is a single cell. It is one of nil (missing), int64,
// decimal.Decimal, string or time.Time.
type Value = any

// TimeLayout is how time values are rendered in keys and logs.
const TimeLayout = "2006-01-02 15:04:05"

// Numeric returns v as a decimal when it is a number.
func Numeric(v Value) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case int64:
		return decimal.NewFromInt(n), true
	case decimal.Decimal:
		return n, true
	}
	return decimal.Decimal{}, false
}

// Key returns a string that is equal for two values exactly when the values
// are equal. Numbers compare by value, so int64(1) and decimal 1.00 share a
// key.
func Key(v Value) string {
	if v == nil {
		return "-"
	}
	if d, ok := Numeric(v); ok {
		return "n:" + d.String()
	}
	switch x := v.(type) {
	case string:
		return "s:" + x
	case time.Time:
		return "t:" + x.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("?:%T:%v", v, v)
}

// RowKey returns a key for a whole row; two rows share a key exactly when
// every cell is equal.
func RowKey(r Row) string {
	var b strings.Builder
	for _, v := range r {
		k := Key(v)
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String()
}

// Compare orders values: nil first, then numbers, times and strings.
func Compare(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch ra {
	case 0:
		return 0
	case 1:
		da, _ := Numeric(a)
		db, _ := Numeric(b)
		return da.Cmp(db)
	case 2:
		return a.(time.Time).Compare(b.(time.Time))
	case 3:
		return strings.Compare(a.(string), b.(string))
	}
	return strings.Compare(Key(a), Key(b))
}

func rank(v Value) int {
	switch v.(type) {
	case nil:
		return 0
	case int64, decimal.Decimal:
		return 1
	case time.Time:
		return 2
	case string:
		return 3
	}
	return 4
}

var kindNames = [...]string{"missing", "number", "time", "text", "unknown"}

// Kind names the family a value belongs to. Values of different kinds
// never share a Key.
func Kind(v Value) string { return kindNames[rank(v)] }

// Format renders a value for logs.
func Format(v Value) string {
	switch x := v.(type) {
	case nil:
		return "NaN"
	case int64:
		return strconv.FormatInt(x, 10)
	case decimal.Decimal:
		return x.String()
	case string:
		return x
	case time.Time:
		return x.UTC().Format(TimeLayout)
	}
	return fmt.Sprint(v)
}
