package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/f9-energy/market-engine/internal/market"
	"github.com/f9-energy/market-engine/internal/pricing"
)

func TestForecastHandler(t *testing.T) {
	handler := Forecast(pricing.NewForecaster(stubAggregator()))

	req := httptest.NewRequest(http.MethodGet, "/api/forecast?period=daily", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var f pricing.ROIForecast
	if err := json.NewDecoder(rec.Body).Decode(&f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(f.Streams) != 4 {
		t.Errorf("streams = %d, want 4", len(f.Streams))
	}
	if f.DataQuality.LiveDataPercentage != 100 {
		t.Errorf("LiveDataPercentage = %v, want 100", f.DataQuality.LiveDataPercentage)
	}
	if f.TotalRevenue <= 0 {
		t.Errorf("TotalRevenue = %v, want > 0 with all streams live", f.TotalRevenue)
	}
}

func TestForecastHandlerBadPeriod(t *testing.T) {
	handler := Forecast(pricing.NewForecaster(stubAggregator()))

	req := httptest.NewRequest(http.MethodGet, "/api/forecast?period=decade", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestForecastHandlerAllFallback(t *testing.T) {
	handler := Forecast(pricing.NewForecaster(stubAggregator(market.Kinds...)))

	req := httptest.NewRequest(http.MethodGet, "/api/forecast?period=monthly", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var f pricing.ROIForecast
	if err := json.NewDecoder(rec.Body).Decode(&f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.TotalRevenue != 0 {
		t.Errorf("TotalRevenue = %v, want 0 when every stream runs on fallback data", f.TotalRevenue)
	}
	if f.DataQuality.LiveDataPercentage != 0 {
		t.Errorf("LiveDataPercentage = %v, want 0", f.DataQuality.LiveDataPercentage)
	}
}

func TestEmpireStatsHandler(t *testing.T) {
	handler := EmpireStats(pricing.NewForecaster(stubAggregator()))

	req := httptest.NewRequest(http.MethodGet, "/api/empire-stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var stats pricing.EmpireStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.WeeklyRevenue <= stats.DailyRevenue {
		t.Errorf("WeeklyRevenue = %v, want > daily %v", stats.WeeklyRevenue, stats.DailyRevenue)
	}
	if stats.YearlyRevenue <= stats.MonthlyRevenue {
		t.Errorf("YearlyRevenue = %v, want > monthly %v", stats.YearlyRevenue, stats.MonthlyRevenue)
	}
}
