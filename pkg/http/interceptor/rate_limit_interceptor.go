package httpinterceptor

import (
	"net/http"
	"time"

	"github.com/kinkando/photo-feed-service/pkg/option"
	"go.uber.org/ratelimit"
)

// RateLimiterTransport throttles outbound calls to the identity provider so a
// burst of sign-ins cannot trip the provider's quota. Requests whose context
// ends while waiting for a slot are not sent.
type RateLimiterTransport struct {
	transport http.RoundTripper
	limiter   ratelimit.Limiter
}

func NewRateLimiterTransport(opts ...option.HTTPInterceptorRateLimiterOption) *RateLimiterTransport {
	cfg := &option.HTTPInterceptorRateLimiter{
		Transport:   http.DefaultTransport,
		RateLimiter: ratelimit.New(10, ratelimit.Per(time.Second)),
	}
	for _, opt := range opts {
		opt.Apply(cfg)
	}
	return &RateLimiterTransport{transport: cfg.Transport, limiter: cfg.RateLimiter}
}

func (rt *RateLimiterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.limiter.Take()
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	return rt.transport.RoundTrip(req)
}
