// Package enrich derives stable synthetic attributes (rating, review
// count, services, tags) from an agent's name and metadata. The directory
// has no authoritative ratings for most agents, so repeated loads — and
// independent loaders reading the same raw data — must generate identical
// values without storing anything. Everything here is a pure function of
// the name hash.
package enrich

import (
	"math"

	"github.com/estia-cy/estia/pkg/types"
)

// maxCountedListings caps the listing count used for review generation so
// bulk developers do not end up with implausible review volumes.
const maxCountedListings = 200

// serviceChecks gates each optional service on divisibility of the name
// hash. The order is fixed: it determines insertion order in the output.
var serviceChecks = []struct {
	divisor int
	label   string
}{
	{2, "Rentals"},
	{3, "Commercial"},
	{5, "Property Management"},
	{7, "Investment"},
}

// Rating maps a name hash onto {3.5, 3.6, ..., 4.9}.
func Rating(hash int) float64 {
	return math.Round((3.5+float64(hash%15)/10)*10) / 10
}

// ReviewCount generates a review count from the listing volume and the
// generated rating: floor(min(listings, 200) * f) with a floor of 3,
// where f = 0.3 + (rating-3.5)/7 scales linearly from 0.3 at rating 3.5
// to 0.5 at rating 4.9. Higher-rated agents accumulate reviews faster.
func ReviewCount(listings int, rating float64) int {
	if listings > maxCountedListings {
		listings = maxCountedListings
	}
	if listings < 0 {
		listings = 0
	}
	f := 0.3 + (rating-3.5)/7
	n := int(math.Floor(float64(listings) * f))
	if n < 3 {
		n = 3
	}
	return n
}

// Services generates the service list for a name hash. "Sales" is always
// present; the remaining services are gated on hash divisibility in a
// fixed order.
func Services(hash int) []string {
	services := []string{"Sales"}
	for _, c := range serviceChecks {
		if hash%c.divisor == 0 {
			services = append(services, c.label)
		}
	}
	return services
}

// Tags generates the ordered tag list for a name hash. Developers get a
// developer-oriented tag chain, everyone else the agent chain, and both
// pick up location tags last. Each tag string is distinct per branch, so
// duplicates cannot occur.
func Tags(hash int, location string, agentType types.AgentType) []string {
	tags := []string{}

	if agentType.Normalize() == types.TypeDeveloper {
		tags = append(tags, "Developer")
		if hash%2 == 0 {
			tags = append(tags, "New Projects")
		}
		if hash%3 == 0 {
			tags = append(tags, "Luxury")
		}
	} else {
		if hash%3 == 0 {
			tags = append(tags, "Expat Friendly")
		}
		if hash%4 == 0 {
			tags = append(tags, "Luxury Properties")
		}
		if hash%5 == 0 {
			tags = append(tags, "New Builds")
		}
	}

	if location == "Limassol" && hash%2 == 0 {
		tags = append(tags, "Beachfront")
	}
	if location == "Paphos" && hash%3 == 0 {
		tags = append(tags, "Retirement Specialist")
	}

	return tags
}

// Enrich converts a raw source record into a directory entry. Raw fields
// pass through unchanged. Rating and review count come from the source
// when it supplies them (a third-party ratings feed) and are generated
// otherwise; services and tags are always generated — no source carries
// them.
func Enrich(raw types.RawAgent) types.Agent {
	hash := NameHash(raw.Name)

	agent := types.Agent{
		ID:       raw.ID,
		Name:     raw.Name,
		Location: raw.Location,
		Type:     raw.Type.Normalize(),
		Listings: raw.Listings,
		Phone:    raw.Phone,
		Website:  raw.Website,
		Verified: raw.Verified,
		Services: Services(hash),
		Tags:     Tags(hash, raw.Location, raw.Type),
	}

	if raw.Rating != nil {
		agent.Rating = *raw.Rating
	} else {
		agent.Rating = Rating(hash)
	}

	if raw.ReviewCount != nil {
		agent.ReviewCount = *raw.ReviewCount
	} else {
		agent.ReviewCount = ReviewCount(raw.Listings, agent.Rating)
	}

	return agent
}

// EnrichAll maps a batch of raw records, skipping records that fail
// validation (a record without a name cannot be enriched).
func EnrichAll(raws []types.RawAgent) []types.Agent {
	agents := make([]types.Agent, 0, len(raws))
	for _, raw := range raws {
		if err := raw.Validate(); err != nil {
			continue
		}
		agents = append(agents, Enrich(raw))
	}
	return agents
}
