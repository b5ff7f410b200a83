// Package marketdata implements the acquisition layer of spec.md §4.4: a
// per-(symbol,timeframe) TTL cache, a per-provider sliding-window rate
// limiter, and a priority-ordered provider chain with optional
// persistence-backed fill, exposed through a single Service.Get operation.
package marketdata

import (
	"time"

	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

// MarketStatus describes the venue's trading state for a symbol.
type MarketStatus string

const (
	MarketOpen   MarketStatus = "open"
	MarketClosed MarketStatus = "closed"
	MarketUnknown MarketStatus = "unknown"
)

// Result is the outcome of a market-data fetch (spec.md §3).
type Result struct {
	Success            bool
	Data               []ohlc.Bar
	ProviderName       string
	Cached             bool
	CacheExpiresAt      time.Time
	RateLimitRemaining float64 // serving provider's remaining hourly requests; +Inf for unlimited
	MarketStatus       MarketStatus
	Error              string
}

// Descriptor is a provider's static configuration (spec.md §3).
type Descriptor struct {
	Name             string
	Priority         int     // lower = higher precedence
	RateLimitPerHour float64 // math.Inf(1) for unbounded
	RequiresAPIKey   bool
}

// SimulatedPriority is the sentinel priority for the built-in fallback
// provider: effectively infinite (last resort) per spec.md §3.
const SimulatedPriority = 999
