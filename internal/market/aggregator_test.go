package market

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

// fakeProvider is a scriptable adapter for aggregator tests.
type fakeProvider struct {
	kind       Kind
	name       string
	configured bool
	fail       bool
	fetches    int
}

func (f *fakeProvider) Kind() Kind       { return f.kind }
func (f *fakeProvider) Name() string     { return f.name }
func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) Fetch(_ context.Context) (*Reading, error) {
	f.fetches++
	if f.fail {
		return nil, errors.New("provider down")
	}
	r := &Reading{Kind: f.kind, Source: f.name, IsLive: true, FetchedAt: time.Now()}
	fillPayload(r)
	return r, nil
}

func (f *fakeProvider) Fallback(now time.Time) *Reading {
	r := &Reading{Kind: f.kind, Source: SourceFallback, IsLive: false, FetchedAt: now}
	fillPayload(r)
	return r
}

func fillPayload(r *Reading) {
	switch r.Kind {
	case KindGridPrice:
		r.Grid = &GridPrice{PriceKRW: 130, Currency: "KRW"}
	case KindFleetTelemetry:
		r.Fleet = &FleetTelemetry{Vehicles: []Vehicle{{ID: "V1"}}}
	case KindExchangeRate:
		r.FX = &ExchangeRate{KRWPerUnit: 1350}
	case KindOnChainTVL:
		r.TVL = &ChainTVL{TotalKRW: 1000}
	}
}

func newTestAggregator(strict bool, provs ...*fakeProvider) *Aggregator {
	agg := NewAggregator(NewMemoryCache(), slog.Default(), strict)
	for _, p := range provs {
		agg.Register(p)
	}
	return agg
}

func fullFleet(failing map[Kind]bool) []*fakeProvider {
	names := map[Kind]string{
		KindGridPrice:      "kepco",
		KindFleetTelemetry: "tesla",
		KindExchangeRate:   "exchange",
		KindOnChainTVL:     "chain",
	}
	out := make([]*fakeProvider, 0, len(Kinds))
	for _, k := range Kinds {
		out = append(out, &fakeProvider{kind: k, name: names[k], configured: true, fail: failing[k]})
	}
	return out
}

func TestFetchLiveIsCached(t *testing.T) {
	p := &fakeProvider{kind: KindGridPrice, name: "kepco", configured: true}
	agg := newTestAggregator(false, p)
	ctx := context.Background()

	r := agg.Fetch(ctx, KindGridPrice)
	if !r.IsLive || r.Source != "kepco" {
		t.Fatalf("first fetch: live=%v source=%q", r.IsLive, r.Source)
	}

	// Second call inside the TTL must not hit the provider
	agg.Fetch(ctx, KindGridPrice)
	if p.fetches != 1 {
		t.Errorf("fetches = %d, want 1 (second call served from cache)", p.fetches)
	}
}

func TestFetchFallbackNotCached(t *testing.T) {
	p := &fakeProvider{kind: KindGridPrice, name: "kepco", configured: true, fail: true}
	agg := newTestAggregator(false, p)
	ctx := context.Background()

	r := agg.Fetch(ctx, KindGridPrice)
	if r.IsLive {
		t.Fatal("failed provider produced a live reading")
	}
	if r.Source != SourceFallback {
		t.Errorf("Source = %q, want %q", r.Source, SourceFallback)
	}
	if r.Grid == nil || r.Grid.PriceKRW == 0 {
		t.Error("heuristic fallback should carry a non-zero price")
	}

	// Every subsequent call retries the provider; recovery is automatic
	agg.Fetch(ctx, KindGridPrice)
	agg.Fetch(ctx, KindGridPrice)
	if p.fetches != 3 {
		t.Errorf("fetches = %d, want 3 (fallbacks are never cached)", p.fetches)
	}

	p.fail = false
	r = agg.Fetch(ctx, KindGridPrice)
	if !r.IsLive {
		t.Error("recovered provider still serving fallback")
	}
}

func TestFetchStrictModeZeroesFallback(t *testing.T) {
	p := &fakeProvider{kind: KindGridPrice, name: "kepco", configured: true, fail: true}
	agg := newTestAggregator(true, p)

	r := agg.Fetch(context.Background(), KindGridPrice)
	if r.IsLive {
		t.Fatal("strict fallback marked live")
	}
	if r.Grid == nil || r.Grid.PriceKRW != 0 {
		t.Errorf("strict fallback price = %v, want 0", r.Grid.PriceKRW)
	}
}

func TestFetchUnconfiguredProvider(t *testing.T) {
	p := &fakeProvider{kind: KindExchangeRate, name: "exchange"}
	agg := newTestAggregator(false, p)

	r := agg.Fetch(context.Background(), KindExchangeRate)
	if r.IsLive {
		t.Error("unconfigured provider produced a live reading")
	}
	if p.fetches != 0 {
		t.Error("unconfigured provider was called")
	}
}

func TestFallbackInvariant(t *testing.T) {
	// !IsLive implies Source == FALLBACK, whatever the failure mode
	for _, p := range []*fakeProvider{
		{kind: KindGridPrice, name: "kepco", configured: true, fail: true},
		{kind: KindGridPrice, name: "kepco"},
	} {
		r := newTestAggregator(false, p).Fetch(context.Background(), KindGridPrice)
		if !r.IsLive && r.Source != SourceFallback {
			t.Errorf("non-live reading with source %q", r.Source)
		}
	}
}

func TestFetchAllResolvesEveryKind(t *testing.T) {
	agg := newTestAggregator(false, fullFleet(map[Kind]bool{KindOnChainTVL: true})...)

	readings := agg.FetchAll(context.Background())
	if len(readings) != len(Kinds) {
		t.Fatalf("len(readings) = %d, want %d", len(readings), len(Kinds))
	}
	for _, kind := range Kinds {
		if readings[kind] == nil {
			t.Errorf("kind %s missing from FetchAll result", kind)
		}
	}
	if readings[KindOnChainTVL].IsLive {
		t.Error("failed TVL feed reported live")
	}
	if !readings[KindGridPrice].IsLive {
		t.Error("healthy grid feed reported fallback")
	}
}

func TestStatusSimulationSteps(t *testing.T) {
	tests := []struct {
		failing    map[Kind]bool
		wantHealth int
		wantSim    float64
	}{
		{nil, 100, 0},
		{map[Kind]bool{KindGridPrice: true}, 75, 25},
		{map[Kind]bool{KindGridPrice: true, KindExchangeRate: true}, 50, 50},
		{map[Kind]bool{KindGridPrice: true, KindExchangeRate: true, KindFleetTelemetry: true}, 25, 75},
		{map[Kind]bool{KindGridPrice: true, KindExchangeRate: true, KindFleetTelemetry: true, KindOnChainTVL: true}, 0, 100},
	}
	for _, tt := range tests {
		st := newTestAggregator(false, fullFleet(tt.failing)...).Status(context.Background())
		if st.OverallHealth != tt.wantHealth {
			t.Errorf("%d failures: OverallHealth = %d, want %d", len(tt.failing), st.OverallHealth, tt.wantHealth)
		}
		if st.SimulationPercentage != tt.wantSim {
			t.Errorf("%d failures: SimulationPercentage = %v, want %v", len(tt.failing), st.SimulationPercentage, tt.wantSim)
		}
	}
}

func TestStatusReportsCredentials(t *testing.T) {
	provs := fullFleet(nil)
	provs[1].configured = false // tesla
	st := newTestAggregator(false, provs...).Status(context.Background())

	if len(st.APIKeys) != 4 {
		t.Fatalf("len(APIKeys) = %d, want 4", len(st.APIKeys))
	}
	byService := make(map[string]string)
	for _, k := range st.APIKeys {
		byService[k.Service] = k.Status
	}
	if byService["tesla"] != "missing" {
		t.Errorf("tesla credential status = %q, want missing", byService["tesla"])
	}
	if byService["kepco"] != "configured" {
		t.Errorf("kepco credential status = %q, want configured", byService["kepco"])
	}
}
