package services

import (
	"fmt"
	"strings"
)

// SchemaError reports a required column missing from the list dataset.
type SchemaError struct {
	Field   string
	Columns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("list dataset is missing required column %q (have: %s)",
		e.Field, strings.Join(e.Columns, ", "))
}

// ConditionError reports a malformed condition.
type ConditionError struct {
	Category  string
	Threshold string
	Err       error
}

func (e *ConditionError) Error() string {
	return fmt.Sprintf("invalid condition %q with threshold %q: %v", e.Category, e.Threshold, e.Err)
}

func (e *ConditionError) Unwrap() error { return e.Err }

// LogReadError reports a single log dataset that could not be read or
// scrubbed. It never aborts sibling logs.
type LogReadError struct {
	Log   string
	Index int
	Err   error
}

func (e *LogReadError) Error() string {
	return fmt.Sprintf("log %d (%s): %v", e.Index, e.Log, e.Err)
}

func (e *LogReadError) Unwrap() error { return e.Err }
