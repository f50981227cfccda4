package sources

import (
	"context"
	"fmt"

	"github.com/estia-cy/estia/internal/storage"
	"github.com/estia-cy/estia/pkg/types"
)

// StoreSource adapts a storage.AgentStore into a Source, so a local
// SQLite file or a direct PostgreSQL connection can sit in the same
// fallback chain as the REST backend.
type StoreSource struct {
	name  string
	store storage.AgentStore
}

// NewStoreSource wraps store under the given source name.
func NewStoreSource(name string, store storage.AgentStore) *StoreSource {
	return &StoreSource{name: name, store: store}
}

// Name identifies the source in logs and health output.
func (s *StoreSource) Name() string { return s.name }

// Store exposes the underlying store, for the manager to close.
func (s *StoreSource) Store() storage.AgentStore { return s.store }

// Fetch returns every record in the store, ordered by listing count.
func (s *StoreSource) Fetch(ctx context.Context) ([]types.RawAgent, error) {
	agents, err := s.store.Query(ctx, storage.QueryOptions{
		OrderByListings: true,
		Limit:           1000,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("%w: store %q is empty", ErrUnavailable, s.name)
	}
	return agents, nil
}

// GetByID returns a single record, or storage.ErrNotFound.
func (s *StoreSource) GetByID(ctx context.Context, id string) (*types.RawAgent, error) {
	return s.store.GetByID(ctx, id)
}
