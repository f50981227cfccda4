package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("agent not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// QueryOptions mirrors the primary source's query capability: equality
// filter, pattern search, ordering by listing count, range pagination.
type QueryOptions struct {
	// City filters to records whose location equals this value exactly.
	// Empty string means no location filter.
	City string

	// NameSearch filters to records whose name contains this substring,
	// case-insensitively. Empty string means no name filter.
	NameSearch string

	// OrderByListings orders results by listing count, descending.
	// When false, results are ordered by name for a stable output.
	OrderByListings bool

	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return
	// (default: 100, max: 1000; 0 applies the default).
	Limit int
}

// Normalize applies defaults and validates the QueryOptions.
func (o *QueryOptions) Normalize() {
	if o.Offset < 0 {
		o.Offset = 0
	}

	if o.Limit < 1 {
		o.Limit = 100 // Default limit
	}

	if o.Limit > 1000 {
		o.Limit = 1000 // Max limit
	}
}
