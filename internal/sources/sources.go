// Package sources provides the pluggable agent data sources the
// directory loads from: the hosted backend REST API, a static JSON
// fallback, and local database stores. Sources are tried in order and
// the first one that yields records wins.
package sources

import (
	"context"
	"errors"

	"github.com/estia-cy/estia/pkg/types"
)

// ErrUnavailable is returned when a source cannot produce records,
// whether because it is misconfigured, unreachable, or empty. Callers
// treat it as a signal to fall through to the next source.
var ErrUnavailable = errors.New("sources: source unavailable")

// Source is a provider of raw agent records.
type Source interface {
	// Name identifies the source in logs and health output.
	Name() string

	// Fetch returns every record the source holds. An empty result is
	// reported as ErrUnavailable so the caller falls through.
	Fetch(ctx context.Context) ([]types.RawAgent, error)
}

// Lookup is implemented by sources that support point queries. Sources
// without it are scanned linearly by the caller.
type Lookup interface {
	// GetByID returns a single record, or storage.ErrNotFound.
	GetByID(ctx context.Context, id string) (*types.RawAgent, error)
}
