// Package types defines the core domain types shared across the Estia
// agent directory: raw source records, enriched agents, and the city
// aggregates exposed by the stats API.
package types

// AgentType classifies a directory entry.
type AgentType string

const (
	// TypeAgent is a traditional real-estate agency or broker.
	TypeAgent AgentType = "agent"

	// TypeDeveloper is a property developer selling its own projects.
	TypeDeveloper AgentType = "developer"
)

// Normalize returns the type with the default applied.
// Any unknown or empty value is treated as a plain agent.
func (t AgentType) Normalize() AgentType {
	if t == TypeDeveloper {
		return TypeDeveloper
	}
	return TypeAgent
}

// RawAgent is an agent record as delivered by a source, before enrichment.
// The shape varies by source: the hosted backend supplies all fields, the
// static JSON document typically omits ratings, and imported files may
// carry only a name and a listing count.
type RawAgent struct {
	ID       string    `json:"id,omitempty"`       // Backend row identifier, empty for file records
	Name     string    `json:"name"`               // Required; seed for deterministic enrichment
	Location string    `json:"location,omitempty"` // City name (e.g., "Limassol")
	Type     AgentType `json:"type,omitempty"`     // "agent" or "developer", defaults to "agent"
	Listings int       `json:"listings"`           // Number of active listings (>= 0)
	Phone    string    `json:"phone,omitempty"`    // Pass-through contact field
	Website  string    `json:"website,omitempty"`  // Pass-through contact field
	Verified bool      `json:"verified,omitempty"` // Pass-through moderation flag

	// Externally measured values (e.g., from a third-party ratings feed).
	// When present they are used verbatim and generation is skipped.
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty"`
}

// Agent is an enriched directory entry. Once produced it is immutable:
// for a fixed (name, location, type) triple the generated fields are
// identical on every load, across process restarts, with no stored state.
type Agent struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name"`
	Location string    `json:"location,omitempty"`
	Type     AgentType `json:"type"`
	Listings int       `json:"listings"`
	Phone    string    `json:"phone,omitempty"`
	Website  string    `json:"website,omitempty"`
	Verified bool      `json:"verified,omitempty"`

	Rating      float64  `json:"rating"`       // [3.5, 5.0], one decimal
	ReviewCount int      `json:"review_count"` // >= 3
	Services    []string `json:"services"`     // "Sales" always present
	Tags        []string `json:"tags"`         // Ordered, may be empty
}

// Validate checks that a raw record is usable as an enrichment input.
func (r *RawAgent) Validate() error {
	if r.Name == "" {
		return ErrMissingName
	}
	if r.Listings < 0 {
		return ErrNegativeListings
	}
	return nil
}
