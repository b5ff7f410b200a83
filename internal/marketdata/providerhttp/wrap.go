// Package providerhttp supplies a shared http.RoundTripper for providers
// that perform real HTTP calls, grounded on the middleware-wrapper idiom of
// internal/net/client/wrap.go in the teacher repo. The market-data cache
// already sits above this at the service layer, so only throttling, a
// fixed per-call timeout, and a user-agent header are retained here — the
// teacher's additional cache/budget middleware layers are not needed.
package providerhttp

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "marketanalysis/1.0 (+respect provider terms of service)"

// Wrapper throttles all outbound requests through one shared token bucket and
// enforces a fixed per-call timeout (spec.md §5, recommended 10s).
type Wrapper struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
	timeout   time.Duration
}

// NewWrapper builds a Wrapper with the given requests-per-second/burst
// throttle and per-call timeout. A nil transport defaults to
// http.DefaultTransport.
func NewWrapper(transport http.RoundTripper, rps float64, burst int, timeout time.Duration) *Wrapper {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Wrapper{
		transport: transport,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		timeout:   timeout,
	}
}

// RoundTrip waits for throttle admission, applies the user agent, bounds
// the call with the configured timeout, and delegates to the inner
// transport.
func (w *Wrapper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), w.timeout)
	defer cancel()

	if err := w.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(ctx)
		req.Header.Set("User-Agent", userAgent)
	} else {
		req = req.Clone(ctx)
	}

	return w.transport.RoundTrip(req)
}
