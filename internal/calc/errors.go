package calc

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by any operation on a closed document.
	ErrClosed = errors.New("document closed")

	// ErrTabOccupied is returned when inserting at an index that already
	// holds a sheet.
	ErrTabOccupied = errors.New("tab index occupied")

	// ErrTabIndex is returned for a tab index past the end of the document.
	ErrTabIndex = errors.New("tab index out of range")

	// ErrDuplicateTabName is returned when a sheet name is already used.
	ErrDuplicateTabName = errors.New("duplicate tab name")

	// ErrStaleValue is returned when a formula cell is read after a
	// mutation and before a full recalculation.
	ErrStaleValue = errors.New("formula value is stale; recalculation required")
)

// FormulaError reports formula text the engine cannot compile.
type FormulaError struct {
	Cell    Address
	Formula string
	Reason  string
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("formula %q at %s: %s", e.Formula, e.Cell, e.Reason)
}

// CalcError reports a formula that failed during recalculation.
type CalcError struct {
	Cell Address
	Err  error
}

func (e *CalcError) Error() string {
	return fmt.Sprintf("calculate %s: %v", e.Cell, e.Err)
}

func (e *CalcError) Unwrap() error {
	return e.Err
}
