package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/f9-energy/market-engine/internal/market"
)

const kepcoAPI = "https://openapi.kpx.or.kr/openapi/v1/smp/current"

// Kepco fetches the current system marginal price from the power-exchange
// open API.
type Kepco struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewKepco(apiKey string) *Kepco {
	return &Kepco{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: kepcoAPI,
		apiKey:  apiKey,
	}
}

func (k *Kepco) Kind() market.Kind { return market.KindGridPrice }
func (k *Kepco) Name() string      { return "kepco" }
func (k *Kepco) Configured() bool  { return k.apiKey != "" }

type kepcoResponse struct {
	SMP            float64 `json:"smp"`
	Unit           string  `json:"unit"`
	TradeVolumeMWh float64 `json:"trade_volume_mwh"`
}

func (k *Kepco) Fetch(ctx context.Context) (*market.Reading, error) {
	url := fmt.Sprintf("%s?serviceKey=%s", k.baseURL, k.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kepco API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kepco API status: %d", resp.StatusCode)
	}

	var body kepcoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode kepco smp: %w", err)
	}
	if body.SMP <= 0 {
		return nil, fmt.Errorf("kepco smp out of range: %v", body.SMP)
	}

	unit := body.Unit
	if unit == "" {
		unit = "KRW"
	}

	return &market.Reading{
		Kind:      market.KindGridPrice,
		Source:    k.Name(),
		IsLive:    true,
		FetchedAt: time.Now(),
		Grid: &market.GridPrice{
			PriceKRW:         body.SMP,
			Currency:         unit,
			TradingVolumeMWh: body.TradeVolumeMWh,
		},
	}, nil
}

// smpCurve is the last-known-good SMP shape by hour band, KRW/kWh. Used
// only when the live call fails, so the dashboard still shows a plausible
// number instead of a blank.
var smpCurve = []struct {
	fromHour int
	price    float64
}{
	{0, 95},   // overnight trough
	{7, 125},  // morning ramp
	{10, 150}, // midday peak
	{13, 135},
	{18, 165}, // evening peak
	{22, 110},
}

func (k *Kepco) Fallback(now time.Time) *market.Reading {
	hour := now.Hour()
	price := smpCurve[0].price
	for _, band := range smpCurve {
		if hour >= band.fromHour {
			price = band.price
		}
	}
	return &market.Reading{
		Kind:      market.KindGridPrice,
		Source:    market.SourceFallback,
		IsLive:    false,
		FetchedAt: now,
		Grid: &market.GridPrice{
			PriceKRW: price,
			Currency: "KRW",
		},
	}
}
