package table

// Result is the outcome of loading one source: either a table, or a record
// of why the source is missing. Callers must check which one they hold.
type Result struct {
	path   string
	table  *Table
	reason error
}

// Ok wraps a loaded table.
func Ok(path string, t *Table) Result {
	return Result{path: path, table: t}
}

// Missing records that the source at path could not be loaded.
func Missing(path string, reason error) Result {
	return Result{path: path, reason: reason}
}

// Table returns the loaded table and true, or nil and false when the source
// is missing.
func (r Result) Table() (*Table, bool) {
	return r.table, r.table != nil
}

// Reason returns why the source is missing, or nil for a loaded table.
func (r Result) Reason() error { return r.reason }

// Path returns the source location.
func (r Result) Path() string { return r.path }
