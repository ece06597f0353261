package httpinterceptor

import (
	"net/http"
)

// APIKeyTransport appends the Google web API key as the "key" query parameter.
type APIKeyTransport struct {
	Transport http.RoundTripper
	APIKey    string
}

func NewAPIKeyTransport(apiKey string, transport http.RoundTripper) *APIKeyTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &APIKeyTransport{Transport: transport, APIKey: apiKey}
}

func (at *APIKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if at.APIKey == "" {
		return at.Transport.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	query := clone.URL.Query()
	query.Set("key", at.APIKey)
	clone.URL.RawQuery = query.Encode()
	return at.Transport.RoundTrip(clone)
}
