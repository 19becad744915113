package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/f9-energy/market-engine/internal/market"
)

// stubProvider is a minimal market.Provider for handler tests.
type stubProvider struct {
	kind market.Kind
	name string
	fail bool
}

func (s *stubProvider) Kind() market.Kind { return s.kind }
func (s *stubProvider) Name() string      { return s.name }
func (s *stubProvider) Configured() bool  { return true }

func (s *stubProvider) Fetch(_ context.Context) (*market.Reading, error) {
	if s.fail {
		return nil, errors.New("stub provider down")
	}
	r := s.Fallback(time.Now())
	r.Source = s.name
	r.IsLive = true
	return r, nil
}

func (s *stubProvider) Fallback(now time.Time) *market.Reading {
	r := &market.Reading{Kind: s.kind, Source: market.SourceFallback, IsLive: false, FetchedAt: now}
	switch s.kind {
	case market.KindGridPrice:
		r.Grid = &market.GridPrice{PriceKRW: 130, Currency: "KRW"}
	case market.KindFleetTelemetry:
		r.Fleet = &market.FleetTelemetry{Vehicles: []market.Vehicle{{ID: "V1"}, {ID: "V2"}}}
	case market.KindExchangeRate:
		r.FX = &market.ExchangeRate{KRWPerUnit: 1350}
	case market.KindOnChainTVL:
		r.TVL = &market.ChainTVL{StakingKRW: 400, LiquidityKRW: 300, VaultKRW: 300, TotalKRW: 1000}
	}
	return r
}

// stubAggregator builds an aggregator over four stub providers, failing the
// listed kinds.
func stubAggregator(failing ...market.Kind) *market.Aggregator {
	failSet := make(map[market.Kind]bool, len(failing))
	for _, k := range failing {
		failSet[k] = true
	}
	agg := market.NewAggregator(market.NewMemoryCache(), slog.Default(), false)
	names := map[market.Kind]string{
		market.KindGridPrice:      "kepco",
		market.KindFleetTelemetry: "tesla",
		market.KindExchangeRate:   "exchange",
		market.KindOnChainTVL:     "chain",
	}
	for kind, name := range names {
		agg.Register(&stubProvider{kind: kind, name: name, fail: failSet[kind]})
	}
	return agg
}
