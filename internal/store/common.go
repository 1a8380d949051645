// Package store writes tables into a relational database, replacing any
// previous table of the same name.
package store

import "github.com/zeebo/errs"

var (
	// Error is the class of store errors not covered by the classes below.
	Error = errs.Class("store")

	// ConnectionError is returned when the database cannot be reached or
	// rejects the credentials.
	ConnectionError = errs.Class("connection")

	// ConstraintError is returned when written data violates the declared
	// primary key.
	ConstraintError = errs.Class("constraint")
)
