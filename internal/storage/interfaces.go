// Package storage defines the structured-query access layer for agent
// records. The hosted backend is reachable over three transports — its
// REST API (internal/sources), a direct PostgreSQL connection, or a local
// SQLite database for development — and all of them satisfy the same
// small interface so the rest of the system never cares which one is in
// use.
package storage

import (
	"context"

	"github.com/estia-cy/estia/pkg/types"
)

// AgentStore provides the structured-query contract of the primary
// source: equality filter on location, case-insensitive name search,
// ordering by listing count, and range pagination.
type AgentStore interface {
	// Query retrieves raw agent records matching the options.
	// An empty result is not an error.
	Query(ctx context.Context, opts QueryOptions) ([]types.RawAgent, error)

	// GetByID retrieves a single record by its row identifier.
	// Returns ErrNotFound if no such record exists.
	GetByID(ctx context.Context, id string) (*types.RawAgent, error)

	// Insert adds records, assigning row identifiers where missing.
	// Records that already exist (same ID) are updated.
	Insert(ctx context.Context, agents []types.RawAgent) error

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
