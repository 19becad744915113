package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/f9-energy/market-engine/internal/market"
)

const exchangeAPI = "https://api.upbit.com/v1/ticker?markets=KRW-F9E"

// fallbackKRWPerUnit is the reference settlement rate used when the ticker
// is unreachable.
const fallbackKRWPerUnit = 1350

// Exchange fetches the KRW price of the platform trade unit from the
// exchange ticker API.
type Exchange struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewExchange(apiKey string) *Exchange {
	return &Exchange{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: exchangeAPI,
		apiKey:  apiKey,
	}
}

func (e *Exchange) Kind() market.Kind { return market.KindExchangeRate }
func (e *Exchange) Name() string      { return "exchange" }
func (e *Exchange) Configured() bool  { return e.apiKey != "" }

type tickerResponse []struct {
	TradePrice       float64 `json:"trade_price"`
	SignedChangeRate float64 `json:"signed_change_rate"`
}

func (e *Exchange) Fetch(ctx context.Context) (*market.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange ticker API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange ticker API status: %d", resp.StatusCode)
	}

	var body tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode ticker: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("no ticker data")
	}
	if body[0].TradePrice <= 0 {
		return nil, fmt.Errorf("ticker price out of range: %v", body[0].TradePrice)
	}

	return &market.Reading{
		Kind:      market.KindExchangeRate,
		Source:    e.Name(),
		IsLive:    true,
		FetchedAt: time.Now(),
		FX: &market.ExchangeRate{
			KRWPerUnit: body[0].TradePrice,
			Change24h:  body[0].SignedChangeRate * 100,
		},
	}, nil
}

func (e *Exchange) Fallback(now time.Time) *market.Reading {
	return &market.Reading{
		Kind:      market.KindExchangeRate,
		Source:    market.SourceFallback,
		IsLive:    false,
		FetchedAt: now,
		FX: &market.ExchangeRate{
			KRWPerUnit: fallbackKRWPerUnit,
			Change24h:  0,
		},
	}
}
