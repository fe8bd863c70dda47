package repository

import (
	"golang.org/x/time/rate"
	"net/http"
)

// Doer issues HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RateLimitedClient waits on Limiter before each request.
type RateLimitedClient struct {
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewRateLimitedClient allows requestsPerSecond requests per second; zero or less
// means unlimited.
func NewRateLimitedClient(client *http.Client, requestsPerSecond float64) *RateLimitedClient {
	if client == nil {
		client = http.DefaultClient
	}

	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &RateLimitedClient{
		Client:  client,
		Limiter: rate.NewLimiter(limit, 1),
	}
}

func (c *RateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.Limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}
