package handler

import (
	"net/http"

	"github.com/f9-energy/market-engine/internal/market"
	"github.com/f9-energy/market-engine/internal/metrics"
)

// Status reports per-feed connectivity, overall health, and the simulation
// percentage. Dashboards render the numbers regardless; the flags tell them
// how much is real.
func Status(agg *market.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := agg.Status(r.Context())
		metrics.SimulationPercentage.Set(st.SimulationPercentage)
		writeJSON(w, http.StatusOK, st)
	}
}
