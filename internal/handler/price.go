package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/f9-energy/market-engine/internal/pricing"
)

// Price serves the current SMP snapshot for one source.
func Price(registry *pricing.Registry, calc *pricing.Calculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("sourceId")
		if id == "" {
			writeError(w, http.StatusBadRequest, "sourceId is required")
			return
		}

		src, err := registry.Get(id)
		if err != nil {
			if errors.Is(err, pricing.ErrUnknownSource) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "price lookup failed")
			return
		}

		writeJSON(w, http.StatusOK, calc.Snapshot(src, time.Now()))
	}
}
