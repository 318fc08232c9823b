package grid

import "errors"

// Merge preconditions.
var (
	ErrInsufficientSelection  = errors.New("select at least 2 cells to merge")
	ErrCrossRowSelection      = errors.New("cannot merge cells from different rows")
	ErrNonContiguousSelection = errors.New("cells must be adjacent to merge")
)

// ErrMinimumColumns is returned when removing the last remaining column.
var ErrMinimumColumns = errors.New("cannot have fewer than 1 column")

// ErrEmptyInput indicates the grid holds no non-blank data rows.
var ErrEmptyInput = errors.New("please enter data")

var (
	ErrRowOutOfRange    = errors.New("row out of range")
	ErrColumnOutOfRange = errors.New("column out of range")
	ErrNotNumeric       = errors.New("value is not a number")
	ErrNotMerged        = errors.New("cell is not merged")
)
