package marketdata

import (
	"context"

	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

// Provider is the contract every market-data source implements (spec.md
// §6): fetch_ohlc, is_available, plus static descriptor fields.
type Provider interface {
	Name() string
	Priority() int
	RateLimitPerHour() float64
	RequiresAPIKey() bool
	FetchOHLC(ctx context.Context, symbol string, tf ohlc.Timeframe, periods int) (Result, error)
	IsAvailable() bool
}

// DescriptorOf extracts the static Descriptor for a Provider.
func DescriptorOf(p Provider) Descriptor {
	return Descriptor{
		Name:             p.Name(),
		Priority:         p.Priority(),
		RateLimitPerHour: p.RateLimitPerHour(),
		RequiresAPIKey:   p.RequiresAPIKey(),
	}
}

// ByPriority sorts providers ascending by priority (lower = higher
// precedence), the order the chain iterates in (spec.md §4.4).
type ByPriority []Provider

func (s ByPriority) Len() int           { return len(s) }
func (s ByPriority) Less(i, j int) bool { return s[i].Priority() < s[j].Priority() }
func (s ByPriority) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
