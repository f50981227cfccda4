// Package handlers provides HTTP handlers and middleware for the Estia
// directory API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/estia-cy/estia/internal/config"
	"github.com/estia-cy/estia/internal/storage"
	"github.com/estia-cy/estia/pkg/types"
)

// AgentDirectory is the slice of the directory the handlers need.
// GetByCity, GetByName and CityStatistics are cache-only reads: they
// return empty results before the first load.
type AgentDirectory interface {
	Load(ctx context.Context) []types.Agent
	LoadByID(ctx context.Context, id string) (*types.Agent, error)
	GetByCity(city string) []types.Agent
	GetByName(name string) []types.Agent
	CityStatistics() map[string]types.CityStats
	Loaded() bool
}

// APIHandlers contains HTTP handlers for the REST API.
type APIHandlers struct {
	dir    AgentDirectory
	config *config.Config
}

// NewAPIHandlers creates a new APIHandlers instance.
func NewAPIHandlers(dir AgentDirectory, cfg *config.Config) *APIHandlers {
	return &APIHandlers{
		dir:    dir,
		config: cfg,
	}
}

// ListAgents handles GET /api/agents - list agents with optional
// city/search filters and pagination.
func (h *APIHandlers) ListAgents(w http.ResponseWriter, r *http.Request) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	limit := parseInt(r.URL.Query().Get("limit"), 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	// Enforce maximum pagination limit to prevent resource exhaustion
	if limit > 1000 {
		limit = 1000
	}

	city := r.URL.Query().Get("city")
	search := r.URL.Query().Get("search")

	// Filtered listings read the cache only; the unfiltered listing is
	// what populates it.
	var agents []types.Agent
	switch {
	case city != "":
		agents = h.dir.GetByCity(city)
	case search != "":
		agents = h.dir.GetByName(search)
	default:
		agents = h.dir.Load(r.Context())
	}

	total := len(agents)
	pages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	respondJSON(w, http.StatusOK, AgentsResponse{
		Agents: agents[start:end],
		Total:  total,
		Page:   page,
		Pages:  pages,
	})
}

// GetAgent handles GET /api/agents/{id} - get a single agent by ID.
func (h *APIHandlers) GetAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "agent ID is required", nil)
		return
	}

	agent, err := h.dir.LoadByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "agent not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get agent", err)
		return
	}

	respondJSON(w, http.StatusOK, agent)
}

// Health handles GET /api/health - liveness plus cache state.
func (h *APIHandlers) Health(w http.ResponseWriter, r *http.Request) {
	agents := 0
	if h.dir.Loaded() {
		agents = len(h.dir.Load(r.Context()))
	}
	respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Loaded: h.dir.Loaded(),
		Agents: agents,
	})
}

// Helper functions

// parseInt parses an integer from a string, returning defaultValue if parsing fails.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// If encoding fails, log but don't try to write another response
		// (headers already sent)
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}
