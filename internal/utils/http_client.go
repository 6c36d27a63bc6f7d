package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a resty.Client preconfigured for JSON APIs. It embeds
// *resty.Client to expose all of its methods directly.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a client bound to baseURL. A positive timeout bounds
// every request; zero leaves requests bounded by their context only.
//
// Each call returns an independent client with its own connection pool.
//
// Example usage:
//
//	client := utils.NewHTTPClient("https://lists.example.com", 10*time.Second)
//	resp, err := client.R().SetContext(ctx).Get("/api/v1/lists")
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "go-list-sync")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &HTTPClient{Client: client}
}
