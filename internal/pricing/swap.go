package pricing

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/f9-energy/market-engine/internal/market"
	"github.com/f9-energy/market-engine/internal/metrics"
)

// ErrQuoteExpired is returned when execution is attempted past a quote's
// expiry. A caller must request a fresh quote; stale pricing is never
// silently reused.
var ErrQuoteExpired = errors.New("swap quote expired")

const (
	quoteTTL      = 30 * time.Second
	spreadRate    = 0.005 // 0.5% on the cost side only
	slippageRate  = 0.005 // per 100,000 kWh
	slippageCap   = 0.02
	slippageScale = 100_000
)

// ESG impact classification of a swap's carbon delta.
const (
	ImpactPositive = "POSITIVE"
	ImpactNeutral  = "NEUTRAL"
	ImpactNegative = "NEGATIVE"
)

// impactThresholdKg is the carbon delta beyond which a swap counts as a
// real ESG move rather than noise.
const impactThresholdKg = 100

// MarketData is the slice of the aggregator the pricing engine consumes.
type MarketData interface {
	Fetch(ctx context.Context, kind market.Kind) *market.Reading
}

// SwapQuote is a timed, expiring exchange quote between two sources. It is
// pure computation: no volume is reserved or locked by quoting.
type SwapQuote struct {
	ID           string    `json:"id"`
	FromSource   string    `json:"from_source"`
	ToSource     string    `json:"to_source"`
	FromAmount   float64   `json:"from_amount"`
	ToAmount     float64   `json:"to_amount"`
	ExchangeRate float64   `json:"exchange_rate"`
	TotalCost    float64   `json:"total_cost"`
	CarbonDelta  float64   `json:"carbon_delta"`
	ESGImpact    string    `json:"esg_impact"`
	Slippage     float64   `json:"slippage"`
	RateLive     bool      `json:"rate_live"`
	QuotedAt     time.Time `json:"quoted_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Engine issues swap quotes from current per-source prices.
type Engine struct {
	registry *Registry
	calc     *Calculator
	data     MarketData
}

func NewEngine(registry *Registry, calc *Calculator, data MarketData) *Engine {
	return &Engine{registry: registry, calc: calc, data: data}
}

// Quote prices an exchange of amountKWh from one source into another.
// Unknown source ids fail with ErrUnknownSource.
func (e *Engine) Quote(ctx context.Context, fromID, toID string, amountKWh float64, now time.Time) (*SwapQuote, error) {
	from, err := e.registry.Get(fromID)
	if err != nil {
		return nil, err
	}
	to, err := e.registry.Get(toID)
	if err != nil {
		return nil, err
	}

	fx := e.data.Fetch(ctx, market.KindExchangeRate)
	krwPerUnit := fx.FX.KRWPerUnit
	if krwPerUnit <= 0 {
		krwPerUnit = referenceKRWPerUnit
	}

	fromPrice := e.calc.Snapshot(from, now).CurrentPrice / krwPerUnit
	toPrice := e.calc.Snapshot(to, now).CurrentPrice / krwPerUnit

	rate := fromPrice / toPrice
	toAmount := math.Round(amountKWh * rate)

	fromIntensity, err := CarbonIntensity(from.Type)
	if err != nil {
		return nil, err
	}
	toIntensity, err := CarbonIntensity(to.Type)
	if err != nil {
		return nil, err
	}
	carbonDelta := (toIntensity*toAmount - fromIntensity*amountKWh) / 1000

	metrics.QuotesIssuedTotal.Inc()

	return &SwapQuote{
		ID:           uuid.NewString(),
		FromSource:   from.ID,
		ToSource:     to.ID,
		FromAmount:   amountKWh,
		ToAmount:     toAmount,
		ExchangeRate: rate,
		TotalCost:    amountKWh * fromPrice * (1 + spreadRate),
		CarbonDelta:  carbonDelta,
		ESGImpact:    classifyImpact(carbonDelta),
		Slippage:     Slippage(amountKWh),
		RateLive:     fx.IsLive,
		QuotedAt:     now,
		ExpiresAt:    now.Add(quoteTTL),
	}, nil
}

// Execute validates a quote for settlement. Quoting reserves nothing, so
// the only check is freshness.
func (e *Engine) Execute(q *SwapQuote, now time.Time) error {
	if now.After(q.ExpiresAt) {
		metrics.QuotesExpiredTotal.Inc()
		return ErrQuoteExpired
	}
	return nil
}

// Slippage is a linear-in-volume model capped at 2%.
func Slippage(amountKWh float64) float64 {
	return math.Min(slippageCap, amountKWh/slippageScale*slippageRate)
}

func classifyImpact(deltaKg float64) string {
	switch {
	case deltaKg < -impactThresholdKg:
		return ImpactPositive
	case deltaKg > impactThresholdKg:
		return ImpactNegative
	default:
		return ImpactNeutral
	}
}
