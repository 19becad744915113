package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/f9-energy/market-engine/internal/pricing"
)

// Carbon serves the carbon credit valuation for an energy volume from one
// source.
func Carbon(registry *pricing.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("sourceId")
		if id == "" {
			writeError(w, http.StatusBadRequest, "sourceId is required")
			return
		}

		amount, err := strconv.ParseFloat(r.URL.Query().Get("amountKWh"), 64)
		if err != nil || amount <= 0 {
			writeError(w, http.StatusBadRequest, "amountKWh must be a positive number")
			return
		}

		src, err := registry.Get(id)
		if err != nil {
			if errors.Is(err, pricing.ErrUnknownSource) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "source lookup failed")
			return
		}

		value, err := pricing.Valuate(src.Type, amount)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, value)
	}
}
