package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/f9-energy/market-engine/internal/market"
)

const teslaAPI = "https://fleet-api.prd.na.vn.cloud.tesla.com"

const milesToKM = 1.60934

// Tesla fetches the discharge-capable vehicle fleet from the Tesla fleet
// API using an OAuth access token.
type Tesla struct {
	client      *http.Client
	baseURL     string
	accessToken string
}

func NewTesla(accessToken string) *Tesla {
	return &Tesla{
		client:      &http.Client{Timeout: 15 * time.Second},
		baseURL:     teslaAPI,
		accessToken: accessToken,
	}
}

func (t *Tesla) Kind() market.Kind { return market.KindFleetTelemetry }
func (t *Tesla) Name() string      { return "tesla" }
func (t *Tesla) Configured() bool  { return t.accessToken != "" }

type teslaVehicleList struct {
	Response []struct {
		IDS         string `json:"id_s"`
		DisplayName string `json:"display_name"`
		State       string `json:"state"`
		ChargeState struct {
			BatteryLevel  float64 `json:"battery_level"`
			ChargingState string  `json:"charging_state"`
			BatteryRange  float64 `json:"battery_range"`
		} `json:"charge_state"`
	} `json:"response"`
	Count int `json:"count"`
}

func (t *Tesla) Fetch(ctx context.Context) (*market.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/api/1/vehicles", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+t.accessToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tesla fleet API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tesla fleet API status: %d", resp.StatusCode)
	}

	var body teslaVehicleList
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode vehicle list: %w", err)
	}

	vehicles := make([]market.Vehicle, 0, len(body.Response))
	for _, v := range body.Response {
		vehicles = append(vehicles, market.Vehicle{
			ID:           v.IDS,
			Model:        v.DisplayName,
			BatteryLevel: v.ChargeState.BatteryLevel,
			ChargeState:  v.ChargeState.ChargingState,
			RangeKM:      v.ChargeState.BatteryRange * milesToKM,
		})
	}

	return &market.Reading{
		Kind:      market.KindFleetTelemetry,
		Source:    t.Name(),
		IsLive:    true,
		FetchedAt: time.Now(),
		Fleet:     &market.FleetTelemetry{Vehicles: vehicles},
	}, nil
}

func (t *Tesla) Fallback(now time.Time) *market.Reading {
	// A fixed reference fleet. Deliberately small and deterministic so the
	// simulated numbers are repeatable across calls.
	return &market.Reading{
		Kind:      market.KindFleetTelemetry,
		Source:    market.SourceFallback,
		IsLive:    false,
		FetchedAt: now,
		Fleet: &market.FleetTelemetry{
			Vehicles: []market.Vehicle{
				{ID: "SIM-001", Model: "Model 3", BatteryLevel: 82, ChargeState: "Charging", RangeKM: 410},
				{ID: "SIM-002", Model: "Model Y", BatteryLevel: 64, ChargeState: "Stopped", RangeKM: 330},
				{ID: "SIM-003", Model: "Model S", BatteryLevel: 91, ChargeState: "Complete", RangeKM: 560},
			},
		},
	}
}
