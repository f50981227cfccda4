package types

import "errors"

var (
	// ErrMissingName indicates a source record without a name; the name is
	// the enrichment seed, so such records cannot be processed.
	ErrMissingName = errors.New("agent name is required")

	// ErrNegativeListings indicates a source record with a negative
	// listing count.
	ErrNegativeListings = errors.New("listing count must be >= 0")
)

// CityStats aggregates the loaded directory per distinct location value.
type CityStats struct {
	// Agents is the number of directory entries in the city.
	Agents int `json:"agents"`

	// RatingSum is the sum of agent ratings, useful for re-aggregation.
	RatingSum float64 `json:"rating_sum"`

	// ReviewSum is the sum of agent review counts.
	ReviewSum int `json:"review_sum"`

	// AverageRating is RatingSum/Agents rounded to one decimal.
	AverageRating float64 `json:"average_rating"`
}
