package handler

import (
	"net/http"

	"github.com/f9-energy/market-engine/internal/pricing"
)

// Forecast serves the period-scaled revenue projection.
func Forecast(f *pricing.Forecaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, err := pricing.ParsePeriod(r.URL.Query().Get("period"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, f.Forecast(r.Context(), period))
	}
}

// EmpireStats serves the four-period portfolio composition.
func EmpireStats(f *pricing.Forecaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.Stats(r.Context()))
	}
}
