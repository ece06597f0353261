package option

import (
	"net/http"
	"time"

	"go.uber.org/ratelimit"
)

type HTTPInterceptorRateLimiterOption interface {
	Apply(*HTTPInterceptorRateLimiter)
}

type httpInterceptorRateLimiterOptionFunc func(*HTTPInterceptorRateLimiter)

func (f httpInterceptorRateLimiterOptionFunc) Apply(o *HTTPInterceptorRateLimiter) {
	f(o)
}

func WithHTTPInterceptorRateLimiterTransport(transport http.RoundTripper) HTTPInterceptorRateLimiterOption {
	return httpInterceptorRateLimiterOptionFunc(func(o *HTTPInterceptorRateLimiter) {
		o.Transport = transport
	})
}

func WithHTTPInterceptorRateLimiterRateLimiter(rateLimiter ratelimit.Limiter) HTTPInterceptorRateLimiterOption {
	return httpInterceptorRateLimiterOptionFunc(func(o *HTTPInterceptorRateLimiter) {
		o.RateLimiter = rateLimiter
	})
}

// WithHTTPInterceptorRequestsPerSecond is a shorthand for a per-second limiter;
// non-positive values keep the default.
func WithHTTPInterceptorRequestsPerSecond(rps int) HTTPInterceptorRateLimiterOption {
	return httpInterceptorRateLimiterOptionFunc(func(o *HTTPInterceptorRateLimiter) {
		if rps > 0 {
			o.RateLimiter = ratelimit.New(rps, ratelimit.Per(time.Second))
		}
	})
}

type HTTPInterceptorRateLimiter struct {
	Transport   http.RoundTripper
	RateLimiter ratelimit.Limiter
}
