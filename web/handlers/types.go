package handlers

import "github.com/estia-cy/estia/pkg/types"

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// AgentsResponse is the response format for GET /api/agents.
type AgentsResponse struct {
	Agents []types.Agent `json:"agents"`
	Total  int           `json:"total"`
	Page   int           `json:"page"`
	Pages  int           `json:"pages"`
}

// StatsResponse is the response format for GET /api/stats.
type StatsResponse struct {
	Agents int                        `json:"agents"`
	Cities int                        `json:"cities"`
	ByCity map[string]types.CityStats `json:"by_city"`
}

// HealthResponse is the response format for GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	Loaded bool   `json:"loaded"`
	Agents int    `json:"agents"`
}
