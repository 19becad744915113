package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/f9-energy/market-engine/internal/market"
)

func TestStatusHandlerAllLive(t *testing.T) {
	handler := Status(stubAggregator())

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var st market.Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.OverallHealth != 100 {
		t.Errorf("OverallHealth = %d, want 100", st.OverallHealth)
	}
	if st.SimulationPercentage != 0 {
		t.Errorf("SimulationPercentage = %v, want 0", st.SimulationPercentage)
	}
	if len(st.Sources) != 4 {
		t.Errorf("len(Sources) = %d, want 4", len(st.Sources))
	}
	if len(st.APIKeys) != 4 {
		t.Errorf("len(APIKeys) = %d, want 4", len(st.APIKeys))
	}
}

func TestStatusHandlerPartialOutage(t *testing.T) {
	handler := Status(stubAggregator(market.KindGridPrice, market.KindOnChainTVL))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var st market.Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.OverallHealth != 50 {
		t.Errorf("OverallHealth = %d, want 50", st.OverallHealth)
	}
	if st.SimulationPercentage != 50 {
		t.Errorf("SimulationPercentage = %v, want 50", st.SimulationPercentage)
	}
	grid := st.Sources[market.KindGridPrice]
	if grid.Connected {
		t.Error("failed grid feed reported connected")
	}
	if grid.Source != market.SourceFallback {
		t.Errorf("grid Source = %q, want %q", grid.Source, market.SourceFallback)
	}
}
