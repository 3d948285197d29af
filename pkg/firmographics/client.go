// Package firmographics wraps the company-enrichment API. The pipeline
// treats every attribute as optional: a company the API does not know
// yields a nil result, not an error.
package firmographics

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Employee ranges that satisfy the large-scale requirement on their own.
var largeScaleRanges = map[string]bool{
	"10001+":     true,
	"5001-10000": true,
}

// Result holds the firmographic attributes for one company. Zero values
// mean unknown.
type Result struct {
	EmployeeRange       string
	HeadquartersCountry string
	Fortune500          bool
	Global2000          bool
	Raw                 map[string]any
}

// LargeScale reports whether the employee range alone establishes the
// large-scale evidence flag.
func (r *Result) LargeScale() bool {
	if r == nil {
		return false
	}
	return largeScaleRanges[r.EmployeeRange]
}

// Client enriches a company by name.
type Client interface {
	Firmographics(ctx context.Context, company string) (*Result, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit caps enrichment requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a firmographics client.
func NewClient(apiKey, baseURL string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type enrichRequest struct {
	Company string `json:"company"`
}

func (c *httpClient) Firmographics(ctx context.Context, company string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "firmographics: rate limit wait")
	}

	body, err := json.Marshal(enrichRequest{Company: company})
	if err != nil {
		return nil, eris.Wrap(err, "firmographics: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/companies/enrich", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "firmographics: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "firmographics: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("firmographics: enrich returned %d", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "firmographics: decode response")
	}

	return parseResult(raw), nil
}

// parseResult maps the loose attribute names the API returns onto Result.
// Absent keys stay at their zero value.
func parseResult(raw map[string]any) *Result {
	r := &Result{Raw: raw}

	for _, key := range []string{"Number of employees range all sites", "employee_range"} {
		if s, ok := raw[key].(string); ok && s != "" {
			r.EmployeeRange = s
			break
		}
	}
	if s, ok := raw["headquarters_country"].(string); ok {
		r.HeadquartersCountry = s
	}
	if b, ok := raw["is_fortune_500"].(bool); ok {
		r.Fortune500 = b
	}
	if b, ok := raw["is_global_2000"].(bool); ok {
		r.Global2000 = b
	}

	return r
}
