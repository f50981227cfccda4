package sources

import "github.com/estia-cy/estia/pkg/types"

// SampleAgents returns the built-in demo entries shown when every
// configured source fails. They carry pre-set ratings and are served
// as-is: no enrichment runs on them, and the directory never caches
// them, so the next load retries the real sources.
func SampleAgents() []types.Agent {
	return []types.Agent{
		{
			ID:          "sample-1",
			Name:        "Kalogirou Real Estate",
			Location:    "Limassol",
			Type:        types.TypeAgent,
			Listings:    120,
			Rating:      4.5,
			ReviewCount: 47,
			Services:    []string{"Sales", "Rentals"},
			Tags:        []string{"Luxury Properties", "Beachfront"},
			Verified:    true,
		},
		{
			ID:          "sample-2",
			Name:        "CENTURY 21",
			Location:    "Nicosia",
			Type:        types.TypeAgent,
			Listings:    85,
			Rating:      4.2,
			ReviewCount: 31,
			Services:    []string{"Sales", "Property Management"},
			Tags:        []string{"Expat Friendly"},
			Verified:    true,
		},
		{
			ID:          "sample-3",
			Name:        "Cyprus Sothebys International Realty",
			Location:    "Paphos",
			Type:        types.TypeAgent,
			Listings:    64,
			Rating:      4.8,
			ReviewCount: 22,
			Services:    []string{"Sales", "Investment"},
			Tags:        []string{"Luxury Properties", "Retirement Specialist"},
			Verified:    true,
		},
	}
}
