package pricing

import (
	"math"
	"time"
)

// basePrices are the marginal base rates per generation type, KRW/kWh. The
// ordering reflects real-world generation cost: nuclear cheapest, thermal
// most expensive.
var basePrices = map[SourceType]float64{
	Nuclear: 60,
	Hydro:   90,
	Biomass: 110,
	Wind:    115,
	Solar:   120,
	Thermal: 150,
}

const (
	forecastHours      = 24
	forecastBaseConf   = 85
	forecastConfDecay  = 2
	forecastNoiseRange = 0.075 // ±7.5%
)

// ForecastPoint is one hour of the forward price curve.
type ForecastPoint struct {
	Hour       int     `json:"hour"`
	PriceKRW   float64 `json:"price_krw"`
	Confidence float64 `json:"confidence"`
}

// SMPSnapshot is the computed marginal price view for one source. It is
// derived fresh on every request from cached inputs and never stored.
type SMPSnapshot struct {
	SourceID       string          `json:"source_id"`
	SourceType     SourceType      `json:"source_type"`
	BasePriceKRW   float64         `json:"base_price_krw"`
	CurrentPrice   float64         `json:"current_price"`
	HourlyFactor   float64         `json:"hourly_factor"`
	SeasonalFactor float64         `json:"seasonal_factor"`
	DemandFactor   float64         `json:"demand_factor"`
	Change24h      float64         `json:"change_24h"`
	Forecast       []ForecastPoint `json:"forecast"`
	ComputedAt     time.Time       `json:"computed_at"`
}

// HourlyFactor is the fixed time-of-day step function. It takes exactly the
// values {0.75, 1.0, 1.25, 1.35}, never interpolated.
func HourlyFactor(hour int) float64 {
	switch {
	case hour >= 0 && hour < 7:
		return 0.75 // off-peak
	case hour >= 10 && hour < 13:
		return 1.25
	case hour >= 18 && hour < 22:
		return 1.35 // evening peak
	default:
		return 1.0
	}
}

// SeasonalFactor raises prices for summer cooling and winter heating load.
func SeasonalFactor(month time.Month) float64 {
	switch month {
	case time.June, time.July, time.August:
		return 1.2
	case time.December, time.January, time.February:
		return 1.15
	default:
		return 1.0
	}
}

// Calculator derives SMP snapshots. The noise source models short-term
// demand deviation; inject a seeded one for deterministic output.
type Calculator struct {
	noise Noise
}

func NewCalculator(noise Noise) *Calculator {
	return &Calculator{noise: noise}
}

// BasePrice returns the tabulated base rate for a generation type. Unknown
// types return 0.
func BasePrice(t SourceType) float64 { return basePrices[t] }

// Snapshot computes the current marginal price and a 24-hour forward curve
// for one registered source.
func (c *Calculator) Snapshot(src EnergySource, now time.Time) SMPSnapshot {
	base := BasePrice(src.Type)
	hf := HourlyFactor(now.Hour())
	sf := SeasonalFactor(now.Month())
	demand := 0.95 + c.noise.Float64()*0.1 // [0.95, 1.05)

	current := math.Round(base * hf * sf * demand)

	forecast := make([]ForecastPoint, 0, forecastHours)
	for i := 1; i <= forecastHours; i++ {
		hour := (now.Hour() + i) % 24
		jitter := 1 + (c.noise.Float64()*2-1)*forecastNoiseRange
		conf := float64(forecastBaseConf - forecastConfDecay*i)
		if conf < 0 {
			conf = 0 // clamp so a longer horizon can never go negative
		}
		forecast = append(forecast, ForecastPoint{
			Hour:       hour,
			PriceKRW:   math.Round(base * HourlyFactor(hour) * sf * jitter),
			Confidence: conf,
		})
	}

	// Short-term drift against the same hour yesterday, bounded ±5%.
	change := math.Round((demand-1)*10000) / 100

	return SMPSnapshot{
		SourceID:       src.ID,
		SourceType:     src.Type,
		BasePriceKRW:   base,
		CurrentPrice:   current,
		HourlyFactor:   hf,
		SeasonalFactor: sf,
		DemandFactor:   demand,
		Change24h:      change,
		Forecast:       forecast,
		ComputedAt:     now,
	}
}
