// Package directory holds the agent directory: it loads raw records
// through the configured source chain, enriches them, and caches the
// result for the lifetime of the process.
package directory

import (
	"context"
	"log"
	"math"
	"strings"
	"sync"

	"github.com/estia-cy/estia/internal/enrich"
	"github.com/estia-cy/estia/internal/sources"
	"github.com/estia-cy/estia/internal/storage"
	"github.com/estia-cy/estia/pkg/types"
)

// LoadFunc observes the cache being populated: it receives the name of
// the source that won and the number of agents loaded.
type LoadFunc func(source string, agents int)

// Directory is an explicit stateful loader, created once and shared by
// the handlers that need agent data. The cache is a single slot: the
// first successful load fills it and every later call reads from it
// until the process restarts.
type Directory struct {
	chain  []sources.Source
	onLoad LoadFunc

	mu    sync.RWMutex
	cache []types.Agent
}

// New creates a directory over the given source chain. Sources are
// tried in order on every load until one succeeds.
func New(chain []sources.Source) *Directory {
	return &Directory{chain: chain}
}

// OnLoad registers a hook invoked once, when the cache is first
// populated. Set it before the directory starts serving; a load that
// falls back to the sample set does not fire it.
func (d *Directory) OnLoad(fn LoadFunc) {
	d.onLoad = fn
}

// Load returns the full enriched agent list. It never returns an
// error: if every source fails, the built-in sample set is returned
// instead, and the cache is left empty so the next call retries the
// real sources.
func (d *Directory) Load(ctx context.Context) []types.Agent {
	d.mu.RLock()
	cached := d.cache
	d.mu.RUnlock()
	if cached != nil {
		return cached
	}

	for _, src := range d.chain {
		raw, err := src.Fetch(ctx)
		if err != nil {
			log.Printf("directory: source %s unavailable: %v", src.Name(), err)
			continue
		}

		agents := enrich.EnrichAll(raw)
		if len(agents) == 0 {
			log.Printf("directory: source %s yielded no usable records", src.Name())
			continue
		}

		d.mu.Lock()
		// A concurrent load may have beaten us here; keep the first result.
		populated := d.cache == nil
		if populated {
			d.cache = agents
		}
		agents = d.cache
		d.mu.Unlock()

		if populated && d.onLoad != nil {
			d.onLoad(src.Name(), len(agents))
		}

		log.Printf("directory: loaded %d agents from %s", len(agents), src.Name())
		return agents
	}

	log.Printf("directory: all sources failed, serving built-in samples")
	return sources.SampleAgents()
}

// LoadByID returns a single enriched agent. It first attempts a point
// lookup against the earliest source that supports one; if that fails
// it loads the full list and scans it, matching on ID or exact name.
// Returns storage.ErrNotFound when no match exists in either path.
func (d *Directory) LoadByID(ctx context.Context, id string) (*types.Agent, error) {
	for _, src := range d.chain {
		lookup, ok := src.(sources.Lookup)
		if !ok {
			continue
		}
		raw, err := lookup.GetByID(ctx, id)
		if err != nil {
			break // fall back to the full list
		}
		if err := raw.Validate(); err != nil {
			break
		}
		agent := enrich.Enrich(*raw)
		return &agent, nil
	}

	for _, agent := range d.Load(ctx) {
		if agent.ID == id || agent.Name == id {
			return &agent, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetByCity returns the cached agents located in city. Like
// CityStatistics it reads only the cache: before the first successful
// load it returns an empty result without touching any source.
func (d *Directory) GetByCity(city string) []types.Agent {
	d.mu.RLock()
	cached := d.cache
	d.mu.RUnlock()

	var out []types.Agent
	for _, agent := range cached {
		if agent.Location == city {
			out = append(out, agent)
		}
	}
	return out
}

// GetByName returns the cached agents whose name contains the given
// substring, case-insensitively. It reads only the cache and never
// triggers a load.
func (d *Directory) GetByName(name string) []types.Agent {
	needle := strings.ToLower(name)

	d.mu.RLock()
	cached := d.cache
	d.mu.RUnlock()

	var out []types.Agent
	for _, agent := range cached {
		if strings.Contains(strings.ToLower(agent.Name), needle) {
			out = append(out, agent)
		}
	}
	return out
}

// CityStatistics aggregates the cached agents per city. It reads only
// the cache and never triggers a load: before the first successful
// load it returns an empty map, never an error.
func (d *Directory) CityStatistics() map[string]types.CityStats {
	d.mu.RLock()
	cached := d.cache
	d.mu.RUnlock()

	stats := make(map[string]types.CityStats)
	for _, agent := range cached {
		s := stats[agent.Location]
		s.Agents++
		s.RatingSum += agent.Rating
		s.ReviewSum += agent.ReviewCount
		stats[agent.Location] = s
	}
	for city, s := range stats {
		s.AverageRating = math.Round(s.RatingSum/float64(s.Agents)*10) / 10
		stats[city] = s
	}
	return stats
}

// Loaded reports whether the cache has been populated.
func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cache != nil
}
