// Package websearch provides the web search and page fetch client the
// discovery pipeline consumes. Search talks to a reader-style search API;
// Fetch downloads a page directly and reduces it to plain text.
package websearch

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/time/rate"
)

const (
	// maxPageBytes limits the amount of HTML downloaded per page.
	maxPageBytes = 512 * 1024

	// maxTextChars is the truncation limit for extracted page text.
	maxTextChars = 20000

	defaultUserAgent = "Mozilla/5.0 (compatible; icp-discovery/1.0)"
)

// Hit is one search result.
type Hit struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Page is a fetched page reduced to text. Text is truncated to
// maxTextChars; HTML keeps the raw body for callers that need it.
type Page struct {
	URL    string
	Text   string
	HTML   string
	Status int
}

// Client performs web search and page fetch.
type Client interface {
	Search(ctx context.Context, query string, maxResults int) ([]Hit, error)
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the search API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit caps requests per second across Search and Fetch.
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

// NewClient creates a search/fetch client.
func NewClient(apiKey, baseURL string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
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

type searchResponse struct {
	Results []struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"results"`
}

func (c *httpClient) Search(ctx context.Context, query string, maxResults int) ([]Hit, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "websearch: rate limit wait")
	}

	q := url.Values{}
	q.Set("q", query)
	if maxResults > 0 {
		q.Set("count", strconv.Itoa(maxResults))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: create search request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: send search request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("websearch: search returned %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, eris.Wrap(err, "websearch: decode search response")
	}

	hits := make([]Hit, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URL == "" {
			continue
		}
		hits = append(hits, Hit{URL: r.URL, Title: r.Title})
		if maxResults > 0 && len(hits) >= maxResults {
			break
		}
	}
	return hits, nil
}

func (c *httpClient) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Page{}, eris.Wrap(err, "websearch: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, eris.Wrap(err, "websearch: create fetch request")
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Page{}, eris.Wrap(err, "websearch: fetch page")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return Page{URL: rawURL, Status: resp.StatusCode}, eris.Errorf("websearch: page returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return Page{}, eris.Wrap(err, "websearch: read page body")
	}

	html := decodeBody(body, resp.Header.Get("Content-Type"))
	text := stripHTMLTags(html)
	if len(text) > maxTextChars {
		text = text[:maxTextChars]
	}

	return Page{URL: rawURL, Text: text, HTML: html, Status: resp.StatusCode}, nil
}

// decodeBody converts the body to UTF-8 using the charset the server
// declared; undeclared or unknown charsets fall through unchanged.
func decodeBody(body []byte, contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(body)
	}
	cs := params["charset"]
	if cs == "" || strings.EqualFold(cs, "utf-8") {
		return string(body)
	}
	enc, err := htmlindex.Get(cs)
	if err != nil || enc == nil {
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// stripHTMLTags removes HTML tags from a string, producing plain text.
func stripHTMLTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
