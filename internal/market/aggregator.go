package market

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/f9-energy/market-engine/internal/metrics"
)

// Archiver persists fetched readings for later inspection. The store
// satisfies it; a nil Archiver disables persistence.
type Archiver interface {
	SaveReading(ctx context.Context, r *Reading) error
}

// SourceStatus describes the last observed state of one feed.
type SourceStatus struct {
	Connected  bool      `json:"connected"`
	LastUpdate time.Time `json:"lastUpdate"`
	Source     string    `json:"source"`
}

// CredentialStatus reports whether a provider credential is present, without
// ever echoing the credential itself.
type CredentialStatus struct {
	Service string `json:"service"`
	Status  string `json:"status"`
}

// Status is the aggregate health view over all four feeds.
type Status struct {
	Sources              map[Kind]SourceStatus `json:"sources"`
	OverallHealth        int                   `json:"overallHealth"`
	SimulationPercentage float64               `json:"simulationPercentage"`
	StrictMode           bool                  `json:"strictMode"`
	APIKeys              []CredentialStatus    `json:"apiKeys"`
}

// Aggregator fronts the four providers with a shared TTL cache and absorbs
// every provider failure into a fallback reading. It is constructed once at
// startup and passed to every consumer; callers never receive an error from
// Fetch, only a reading whose IsLive flag tells them what they got.
type Aggregator struct {
	providers map[Kind]Provider
	cache     Cache
	archive   Archiver
	strict    bool
	logger    *slog.Logger
	now       func() time.Time
}

func NewAggregator(cache Cache, logger *slog.Logger, strict bool) *Aggregator {
	return &Aggregator{
		providers: make(map[Kind]Provider),
		cache:     cache,
		strict:    strict,
		logger:    logger,
		now:       time.Now,
	}
}

// Register adds a provider. Providers without credentials are still
// registered; they serve fallback readings until configured.
func (a *Aggregator) Register(p Provider) {
	a.providers[p.Kind()] = p
	if !p.Configured() {
		a.logger.Warn("provider credential missing, running in fallback mode",
			"kind", p.Kind(), "provider", p.Name())
	} else {
		a.logger.Info("registered provider", "kind", p.Kind(), "provider", p.Name())
	}
}

// SetArchiver attaches an optional reading archive.
func (a *Aggregator) SetArchiver(ar Archiver) { a.archive = ar }

// StrictMode reports whether fallback readings are zeroed.
func (a *Aggregator) StrictMode() bool { return a.strict }

// Fetch returns the current reading for kind: a cached live reading inside
// its 30s window, a fresh provider fetch otherwise, or a fallback reading
// when the provider fails. Fallbacks are never cached, so every call retries
// the provider until it recovers.
func (a *Aggregator) Fetch(ctx context.Context, kind Kind) *Reading {
	if r, ok := a.cache.Get(ctx, kind); ok {
		metrics.CacheHits.WithLabelValues(string(kind)).Inc()
		return r
	}
	metrics.CacheMisses.WithLabelValues(string(kind)).Inc()

	p, ok := a.providers[kind]
	if !ok {
		a.logger.Error("no provider registered", "kind", kind)
		return a.fallback(ctx, nil, kind)
	}
	if !p.Configured() {
		metrics.FetchTotal.WithLabelValues(string(kind), "unconfigured").Inc()
		return a.fallback(ctx, p, kind)
	}

	start := a.now()
	r, err := p.Fetch(ctx)
	metrics.FetchDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchTotal.WithLabelValues(string(kind), "error").Inc()
		a.logger.Warn("provider fetch failed, serving fallback",
			"kind", kind, "provider", p.Name(), "error", err)
		return a.fallback(ctx, p, kind)
	}

	metrics.FetchTotal.WithLabelValues(string(kind), "live").Inc()
	metrics.LastLiveFetch.WithLabelValues(string(kind)).Set(float64(r.FetchedAt.Unix()))
	a.cache.Set(ctx, kind, r, ReadingTTL)
	a.logger.Info("provider fetch", "kind", kind, "provider", p.Name(), "live", true)
	a.record(ctx, r)
	return r
}

func (a *Aggregator) fallback(ctx context.Context, p Provider, kind Kind) *Reading {
	metrics.FallbackTotal.WithLabelValues(string(kind)).Inc()
	var r *Reading
	if p != nil {
		r = p.Fallback(a.now())
	} else {
		r = (&Reading{Kind: kind, FetchedAt: a.now()}).Zeroed()
	}
	if a.strict {
		r = r.Zeroed()
	}
	a.record(ctx, r)
	return r
}

func (a *Aggregator) record(ctx context.Context, r *Reading) {
	if a.archive == nil {
		return
	}
	if err := a.archive.SaveReading(ctx, r); err != nil {
		a.logger.Warn("archive reading failed", "kind", r.Kind, "error", err)
	}
}

// FetchAll fetches all four kinds concurrently. Each fetch resolves to a
// reading (live or fallback) before FetchAll returns; there is no partial
// result.
func (a *Aggregator) FetchAll(ctx context.Context) map[Kind]*Reading {
	results := make([]*Reading, len(Kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range Kinds {
		i, kind := i, kind
		g.Go(func() error {
			results[i] = a.Fetch(gctx, kind)
			return nil
		})
	}
	_ = g.Wait() // fetches never error

	out := make(map[Kind]*Reading, len(Kinds))
	for i, kind := range Kinds {
		out[kind] = results[i]
	}
	return out
}

// Status fetches all feeds and reduces them to the aggregate health view:
// each live source contributes 25 points of health, each fallback source 25
// percentage points of simulation.
func (a *Aggregator) Status(ctx context.Context) Status {
	readings := a.FetchAll(ctx)

	live := 0
	sources := make(map[Kind]SourceStatus, len(readings))
	for kind, r := range readings {
		if r.IsLive {
			live++
		}
		sources[kind] = SourceStatus{
			Connected:  r.IsLive,
			LastUpdate: r.FetchedAt,
			Source:     r.Source,
		}
	}

	keys := make([]CredentialStatus, 0, len(Kinds))
	for _, kind := range Kinds {
		p, ok := a.providers[kind]
		if !ok {
			continue
		}
		status := "configured"
		if !p.Configured() {
			status = "missing"
		}
		keys = append(keys, CredentialStatus{Service: p.Name(), Status: status})
	}

	return Status{
		Sources:              sources,
		OverallHealth:        live * 25,
		SimulationPercentage: float64(len(Kinds)-live) / float64(len(Kinds)) * 100,
		StrictMode:           a.strict,
		APIKeys:              keys,
	}
}
