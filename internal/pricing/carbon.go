package pricing

import (
	"fmt"
	"math"
)

// Carbon accounting constants. Offsets are measured against the coal
// baseline; credits settle at a fixed KRW carbon price converted into the
// platform trade unit at the reference rate.
const (
	coalBaselineG        = 820    // gCO2/kWh
	carbonPriceKRWPerTon = 15_000 // KRW per ton CO2
	referenceKRWPerUnit  = 1_350  // KRW per trade unit
)

// carbonIntensities are lifecycle emissions per generation type, gCO2/kWh.
var carbonIntensities = map[SourceType]float64{
	Solar:   0,
	Wind:    0,
	Hydro:   4,
	Nuclear: 12,
	Biomass: 50,
	Thermal: 450,
}

// CarbonCreditValue is the offset accounting for one energy volume.
type CarbonCreditValue struct {
	SourceType       SourceType `json:"source_type"`
	EnergyKWh        float64    `json:"energy_kwh"`
	CarbonIntensity  float64    `json:"carbon_intensity"`
	CarbonOffsetKg   float64    `json:"carbon_offset_kg"`
	CreditValueKRW   float64    `json:"credit_value_krw"`
	CreditValueUnits float64    `json:"credit_value_units"`
	RE100Eligible    bool       `json:"re100_eligible"`
	ESGScore         int        `json:"esg_score"`
}

// CarbonIntensity returns the gCO2/kWh figure for a generation type.
func CarbonIntensity(t SourceType) (float64, error) {
	v, ok := carbonIntensities[t]
	if !ok {
		return 0, fmt.Errorf("%w: no carbon intensity for type %q", ErrUnknownSource, t)
	}
	return v, nil
}

// Valuate converts an energy volume from one generation type into offset
// mass, credit value, ESG score, and RE100 eligibility. Pure computation.
func Valuate(t SourceType, energyKWh float64) (CarbonCreditValue, error) {
	intensity, err := CarbonIntensity(t)
	if err != nil {
		return CarbonCreditValue{}, err
	}

	offsetKg := (coalBaselineG - intensity) * energyKWh / 1000
	creditKRW := offsetKg / 1000 * carbonPriceKRWPerTon

	return CarbonCreditValue{
		SourceType:       t,
		EnergyKWh:        energyKWh,
		CarbonIntensity:  intensity,
		CarbonOffsetKg:   offsetKg,
		CreditValueKRW:   creditKRW,
		CreditValueUnits: creditKRW / referenceKRWPerUnit,
		RE100Eligible:    intensity == 0,
		ESGScore:         int(math.Round(100 - intensity/coalBaselineG*100)),
	}, nil
}
