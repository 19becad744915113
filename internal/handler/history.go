package handler

import (
	"net/http"
	"strconv"

	"github.com/f9-energy/market-engine/internal/market"
	"github.com/f9-energy/market-engine/internal/store"
)

// History serves archived readings for one data kind. Without a configured
// store the endpoint reports unavailable rather than failing.
func History(st *store.Store) http.HandlerFunc {
	valid := make(map[string]bool, len(market.Kinds))
	for _, k := range market.Kinds {
		valid[string(k)] = true
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeError(w, http.StatusServiceUnavailable, "reading archive not configured")
			return
		}

		kind := r.URL.Query().Get("kind")
		if !valid[kind] {
			writeError(w, http.StatusBadRequest, "kind must be one of the data feeds")
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		readings, err := st.RecentReadings(r.Context(), kind, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "history query failed")
			return
		}
		if readings == nil {
			readings = []store.ArchivedReading{}
		}
		writeJSON(w, http.StatusOK, readings)
	}
}
