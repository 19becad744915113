package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/f9-energy/market-engine/internal/market"
)

// Period is a forecast horizon.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// ParsePeriod validates a period string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case Daily, Weekly, Monthly, Yearly:
		return Period(s), nil
	default:
		return "", fmt.Errorf("invalid period %q", s)
	}
}

// Days is the period's day-count multiplier.
func (p Period) Days() float64 {
	switch p {
	case Weekly:
		return 7
	case Monthly:
		return 30
	case Yearly:
		return 365
	default:
		return 1
	}
}

// Revenue modeling constants. Figures are in platform trade units unless
// noted.
const (
	tradingDailyVolumeKWh = 50_000
	tradingMarginFraction = 0.03
	dischargeRateUnits    = 2.5 // per vehicle-hour
	dischargeHoursPerDay  = 4
	liquidityAPY          = 0.08
	stakingAPY            = 0.12
)

// Stream confidences when the backing feed is live; a fallback-backed
// stream contributes zero.
const (
	tradingConfidence   = 95
	dischargeConfidence = 90
	poolConfidence      = 85
)

// RevenueStream is one modeled income component. PeriodRevenue is the
// confidence-weighted figure: a stream built on fallback data carries its
// modeled daily value for display but contributes nothing to the total.
type RevenueStream struct {
	Name          string  `json:"name"`
	DailyRevenue  float64 `json:"daily_revenue"`
	PeriodRevenue float64 `json:"period_revenue"`
	Confidence    float64 `json:"confidence"`
	Live          bool    `json:"live"`
}

// DataQuality records how much of a forecast rests on live data.
type DataQuality struct {
	LiveDataPercentage float64  `json:"liveDataPercentage"`
	LiveSources        []string `json:"live_sources"`
	FallbackSources    []string `json:"fallback_sources"`
}

// ROIForecast is the period-scaled revenue projection with provenance.
type ROIForecast struct {
	Period       Period          `json:"period"`
	Streams      []RevenueStream `json:"streams"`
	TotalRevenue float64         `json:"total_revenue"`
	TotalROI     float64         `json:"total_roi"`
	DataQuality  DataQuality     `json:"data_quality"`
	ComputedAt   time.Time       `json:"computed_at"`
}

// EmpireStats repackages the four period forecasts for the portfolio view.
type EmpireStats struct {
	DailyRevenue   float64     `json:"daily_revenue"`
	WeeklyRevenue  float64     `json:"weekly_revenue"`
	MonthlyRevenue float64     `json:"monthly_revenue"`
	YearlyRevenue  float64     `json:"yearly_revenue"`
	MonthlyROI     float64     `json:"monthly_roi"`
	YearlyROI      float64     `json:"yearly_roi"`
	DataQuality    DataQuality `json:"data_quality"`
}

// BulkFetcher is satisfied by the aggregator: one concurrent fetch of all
// four feeds.
type BulkFetcher interface {
	FetchAll(ctx context.Context) map[market.Kind]*market.Reading
}

// Forecaster blends the four data feeds into revenue projections.
type Forecaster struct {
	data BulkFetcher
	now  func() time.Time
}

func NewForecaster(data BulkFetcher) *Forecaster {
	return &Forecaster{data: data, now: time.Now}
}

// Forecast projects revenue over a period from the current readings. Each
// stream's daily figure is scaled by the period's day count and weighted by
// its confidence; ROI is revenue over on-chain TVL.
func (f *Forecaster) Forecast(ctx context.Context, period Period) ROIForecast {
	readings := f.data.FetchAll(ctx)

	grid := readings[market.KindGridPrice]
	fleet := readings[market.KindFleetTelemetry]
	fx := readings[market.KindExchangeRate]
	tvl := readings[market.KindOnChainTVL]

	krwPerUnit := fx.FX.KRWPerUnit

	// Energy trading margin on the daily traded volume.
	trading := stream("energy_trading",
		toUnits(grid.Grid.PriceKRW, krwPerUnit)*tradingDailyVolumeKWh*tradingMarginFraction,
		tradingConfidence, grid.IsLive, period)

	// Vehicle-to-grid discharge across the fleet.
	discharge := stream("fleet_discharge",
		float64(len(fleet.Fleet.Vehicles))*dischargeRateUnits*dischargeHoursPerDay,
		dischargeConfidence, fleet.IsLive, period)

	// Yield on the pool and staking balances. Both ride the TVL feed.
	liquidity := stream("liquidity_pool",
		toUnits(tvl.TVL.LiquidityKRW, krwPerUnit)*liquidityAPY/365,
		poolConfidence, tvl.IsLive, period)
	staking := stream("staking",
		toUnits(tvl.TVL.StakingKRW, krwPerUnit)*stakingAPY/365,
		poolConfidence, tvl.IsLive, period)

	streams := []RevenueStream{trading, discharge, liquidity, staking}

	total := 0.0
	for _, s := range streams {
		total += s.PeriodRevenue
	}

	totalTVLUnits := toUnits(tvl.TVL.TotalKRW, krwPerUnit)
	roi := 0.0
	if totalTVLUnits > 0 {
		roi = total / totalTVLUnits * 100
	}

	return ROIForecast{
		Period:       period,
		Streams:      streams,
		TotalRevenue: total,
		TotalROI:     roi,
		DataQuality:  quality(readings),
		ComputedAt:   f.now(),
	}
}

// Stats composes the four period forecasts into the portfolio view.
func (f *Forecaster) Stats(ctx context.Context) EmpireStats {
	daily := f.Forecast(ctx, Daily)
	weekly := f.Forecast(ctx, Weekly)
	monthly := f.Forecast(ctx, Monthly)
	yearly := f.Forecast(ctx, Yearly)

	return EmpireStats{
		DailyRevenue:   daily.TotalRevenue,
		WeeklyRevenue:  weekly.TotalRevenue,
		MonthlyRevenue: monthly.TotalRevenue,
		YearlyRevenue:  yearly.TotalRevenue,
		MonthlyROI:     monthly.TotalROI,
		YearlyROI:      yearly.TotalROI,
		DataQuality:    daily.DataQuality,
	}
}

func stream(name string, daily float64, confidence float64, live bool, period Period) RevenueStream {
	if !live {
		confidence = 0
	}
	return RevenueStream{
		Name:          name,
		DailyRevenue:  daily,
		PeriodRevenue: daily * period.Days() * confidence / 100,
		Confidence:    confidence,
		Live:          live,
	}
}

func toUnits(krw, krwPerUnit float64) float64 {
	if krwPerUnit <= 0 {
		return 0
	}
	return krw / krwPerUnit
}

func quality(readings map[market.Kind]*market.Reading) DataQuality {
	live := make([]string, 0, len(readings))
	fallback := make([]string, 0, len(readings))
	for _, kind := range market.Kinds {
		if readings[kind].IsLive {
			live = append(live, string(kind))
		} else {
			fallback = append(fallback, string(kind))
		}
	}
	return DataQuality{
		LiveDataPercentage: float64(len(live)) / float64(len(market.Kinds)) * 100,
		LiveSources:        live,
		FallbackSources:    fallback,
	}
}
