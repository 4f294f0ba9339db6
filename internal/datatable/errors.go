package datatable

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration marks a table that cannot be built.
	ErrInvalidConfiguration = errors.New("invalid table configuration")

	// ErrNoColumns is returned when a table has no column definitions.
	ErrNoColumns = fmt.Errorf("%w: no column definitions", ErrInvalidConfiguration)

	// ErrFormatterNotFound is returned when a column names an unknown field formatter.
	ErrFormatterNotFound = fmt.Errorf("%w: field formatter not found", ErrInvalidConfiguration)

	// ErrUnknownTable is returned when no table is registered under a name.
	ErrUnknownTable = errors.New("unknown table")

	// ErrInvalidQuery is returned by DataQuery.Validate.
	ErrInvalidQuery = errors.New("invalid data query")
)
