package ledger

import "errors"

var (
	// ErrInvalidSplit is returned when split inputs cannot produce a valid
	// allocation, e.g. an Equal split with no members selected, or a total
	// that misses the expense amount by more than the allowed tolerance.
	ErrInvalidSplit = errors.New("invalid split")

	// ErrNotFound is returned when a referenced group, expense or member
	// does not exist.
	ErrNotFound = errors.New("not found")
)
