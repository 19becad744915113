package handler

import (
	"net/http"

	"github.com/f9-energy/market-engine/internal/pricing"
)

// Sources lists the registered energy source fleet.
func Sources(registry *pricing.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, registry.List())
	}
}
