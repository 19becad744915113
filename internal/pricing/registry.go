package pricing

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownSource is returned for source ids not present in the registry.
var ErrUnknownSource = errors.New("unknown energy source")

// SourceType classifies a generation asset.
type SourceType string

const (
	Solar   SourceType = "solar"
	Wind    SourceType = "wind"
	Thermal SourceType = "thermal"
	Hydro   SourceType = "hydro"
	Nuclear SourceType = "nuclear"
	Biomass SourceType = "biomass"
)

// SourceTypes lists every modeled generation type.
var SourceTypes = []SourceType{Solar, Wind, Thermal, Hydro, Nuclear, Biomass}

// EnergySource is one tradable generation asset. The registry rows are
// immutable reference data loaded once at startup; output and availability
// figures are refreshed by the pricing computation, never written from
// outside.
type EnergySource struct {
	ID              string     `yaml:"id" json:"id"`
	Name            string     `yaml:"name" json:"name"`
	Type            SourceType `yaml:"type" json:"type"`
	Location        string     `yaml:"location" json:"location"`
	CapacityMW      float64    `yaml:"capacity_mw" json:"capacity_mw"`
	CurrentOutputMW float64    `yaml:"current_output_mw" json:"current_output_mw"`
	BasePriceKRW    float64    `yaml:"base_price_krw" json:"base_price_krw"`
	RE100           bool       `yaml:"re100" json:"re100"`
	CarbonIntensity float64    `yaml:"carbon_intensity" json:"carbon_intensity"`
	ESGRating       string     `yaml:"esg_rating" json:"esg_rating"`
	AvailableKWh    float64    `yaml:"available_kwh" json:"available_kwh"`
	ReservedKWh     float64    `yaml:"reserved_kwh" json:"reserved_kwh"`
}

// Registry holds the energy source fleet keyed by id.
type Registry struct {
	byID map[string]EnergySource
}

// DefaultRegistry returns the built-in six-source fleet, one asset per
// generation type.
func DefaultRegistry() *Registry {
	return newRegistry([]EnergySource{
		{
			ID: "F9-SOLAR-001", Name: "Jeju Solar Park", Type: Solar,
			Location: "Jeju", CapacityMW: 80, CurrentOutputMW: 52,
			BasePriceKRW: 120, RE100: true, CarbonIntensity: 0, ESGRating: "AAA",
			AvailableKWh: 240_000, ReservedKWh: 35_000,
		},
		{
			ID: "F9-WIND-001", Name: "Gangwon Ridge Wind Farm", Type: Wind,
			Location: "Gangwon", CapacityMW: 120, CurrentOutputMW: 74,
			BasePriceKRW: 115, RE100: true, CarbonIntensity: 0, ESGRating: "AAA",
			AvailableKWh: 310_000, ReservedKWh: 48_000,
		},
		{
			ID: "F9-HYDRO-001", Name: "Chuncheon Hydro Station", Type: Hydro,
			Location: "Chuncheon", CapacityMW: 200, CurrentOutputMW: 145,
			BasePriceKRW: 90, RE100: false, CarbonIntensity: 4, ESGRating: "AA",
			AvailableKWh: 520_000, ReservedKWh: 90_000,
		},
		{
			ID: "F9-NUCLEAR-001", Name: "Uljin Unit 3", Type: Nuclear,
			Location: "Uljin", CapacityMW: 1400, CurrentOutputMW: 1330,
			BasePriceKRW: 60, RE100: false, CarbonIntensity: 12, ESGRating: "A",
			AvailableKWh: 4_800_000, ReservedKWh: 600_000,
		},
		{
			ID: "F9-BIOMASS-001", Name: "Jeonju Biomass Plant", Type: Biomass,
			Location: "Jeonju", CapacityMW: 50, CurrentOutputMW: 31,
			BasePriceKRW: 110, RE100: false, CarbonIntensity: 50, ESGRating: "BBB",
			AvailableKWh: 110_000, ReservedKWh: 12_000,
		},
		{
			ID: "F9-THERMAL-001", Name: "Dangjin Thermal Complex", Type: Thermal,
			Location: "Dangjin", CapacityMW: 500, CurrentOutputMW: 410,
			BasePriceKRW: 150, RE100: false, CarbonIntensity: 450, ESGRating: "B",
			AvailableKWh: 1_600_000, ReservedKWh: 210_000,
		},
	})
}

// LoadRegistry reads a source fleet from a YAML file. The file fully
// replaces the built-in defaults.
func LoadRegistry(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var doc struct {
		Sources []EnergySource `yaml:"sources"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	if len(doc.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s defines no sources", path)
	}
	for _, s := range doc.Sources {
		if s.ID == "" {
			return nil, fmt.Errorf("source %q has no id", s.Name)
		}
		if _, ok := basePrices[s.Type]; !ok {
			return nil, fmt.Errorf("source %s has unknown type %q", s.ID, s.Type)
		}
	}
	return newRegistry(doc.Sources), nil
}

func newRegistry(sources []EnergySource) *Registry {
	byID := make(map[string]EnergySource, len(sources))
	for _, s := range sources {
		byID[s.ID] = s
	}
	return &Registry{byID: byID}
}

// Get returns the source for id, or ErrUnknownSource.
func (r *Registry) Get(id string) (EnergySource, error) {
	s, ok := r.byID[id]
	if !ok {
		return EnergySource{}, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	return s, nil
}

// List returns all sources ordered by id.
func (r *Registry) List() []EnergySource {
	out := make([]EnergySource, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
