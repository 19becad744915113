package market

import "time"

// Kind identifies one of the four external data feeds the engine consumes.
type Kind string

const (
	KindGridPrice      Kind = "grid_price"
	KindFleetTelemetry Kind = "fleet_telemetry"
	KindExchangeRate   Kind = "exchange_rate"
	KindOnChainTVL     Kind = "onchain_tvl"
)

// Kinds lists every feed in a stable order.
var Kinds = []Kind{KindGridPrice, KindFleetTelemetry, KindExchangeRate, KindOnChainTVL}

// SourceFallback marks a reading that was synthesized locally because the
// real provider call failed. Downstream consumers must be able to tell a
// fallback reading from a live one, so the sentinel never appears on a
// reading with IsLive set.
const SourceFallback = "FALLBACK"

// Reading is one normalized measurement from a provider. Exactly one of the
// kind payloads is non-nil, matching Kind.
type Reading struct {
	Kind      Kind      `json:"kind"`
	Source    string    `json:"source"`
	IsLive    bool      `json:"is_live"`
	FetchedAt time.Time `json:"fetched_at"`

	Grid  *GridPrice      `json:"grid,omitempty"`
	Fleet *FleetTelemetry `json:"fleet,omitempty"`
	FX    *ExchangeRate   `json:"fx,omitempty"`
	TVL   *ChainTVL       `json:"tvl,omitempty"`
}

// GridPrice is the current system marginal price on the power exchange.
type GridPrice struct {
	PriceKRW         float64 `json:"price_krw"`
	Currency         string  `json:"currency"`
	TradingVolumeMWh float64 `json:"trading_volume_mwh"`
}

// Vehicle is one EV reported by the fleet telemetry provider.
type Vehicle struct {
	ID           string  `json:"id"`
	Model        string  `json:"model"`
	BatteryLevel float64 `json:"battery_level"`
	ChargeState  string  `json:"charge_state"`
	RangeKM      float64 `json:"range_km"`
}

type FleetTelemetry struct {
	Vehicles []Vehicle `json:"vehicles"`
}

// ExchangeRate is the KRW price of one platform trade unit.
type ExchangeRate struct {
	KRWPerUnit float64 `json:"krw_per_unit"`
	Change24h  float64 `json:"change_24h"`
}

// ChainTVL is the on-chain balance breakdown across the platform contracts.
type ChainTVL struct {
	VaultKRW     float64 `json:"vault_krw"`
	StakingKRW   float64 `json:"staking_krw"`
	LiquidityKRW float64 `json:"liquidity_krw"`
	TotalKRW     float64 `json:"total_krw"`
}

// Zeroed returns a copy with all payload values cleared. Used in strict mode
// so simulated data is numerically unmistakable.
func (r *Reading) Zeroed() *Reading {
	out := &Reading{
		Kind:      r.Kind,
		Source:    SourceFallback,
		IsLive:    false,
		FetchedAt: r.FetchedAt,
	}
	switch r.Kind {
	case KindGridPrice:
		out.Grid = &GridPrice{Currency: "KRW"}
	case KindFleetTelemetry:
		out.Fleet = &FleetTelemetry{Vehicles: []Vehicle{}}
	case KindExchangeRate:
		out.FX = &ExchangeRate{}
	case KindOnChainTVL:
		out.TVL = &ChainTVL{}
	}
	return out
}
