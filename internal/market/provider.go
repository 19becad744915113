package market

import (
	"context"
	"time"
)

// Provider defines the interface every external data adapter implements.
// To add a new feed, create a struct that implements this interface and
// register it with the Aggregator.
type Provider interface {
	// Kind returns the data kind this provider serves.
	Kind() Kind

	// Name returns the upstream provider identifier (e.g., "kepco").
	Name() string

	// Configured reports whether the provider has the credentials it needs.
	// Unconfigured providers are never called; the aggregator goes straight
	// to the fallback reading.
	Configured() bool

	// Fetch performs the real provider call and returns a normalized live
	// reading. The provider's own HTTP client bounds the call with a
	// timeout; any failure is returned as an error for the aggregator to
	// absorb.
	Fetch(ctx context.Context) (*Reading, error)

	// Fallback builds a deterministic non-live reading for the given time.
	// It never performs I/O.
	Fallback(now time.Time) *Reading
}
