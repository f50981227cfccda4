package handlers

import "net/http"

// GetStats handles GET /api/stats - per-city aggregates over the
// loaded directory. Before the first load it returns zero counts and
// an empty by_city mapping.
func (h *APIHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	byCity := h.dir.CityStatistics()

	total := 0
	for _, s := range byCity {
		total += s.Agents
	}

	respondJSON(w, http.StatusOK, StatsResponse{
		Agents: total,
		Cities: len(byCity),
		ByCity: byCity,
	})
}
