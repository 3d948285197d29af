package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "hospital epic go-live", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("count"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"url":"https://a.example/one","title":"One"},
			{"url":"","title":"dropped"},
			{"url":"https://a.example/two","title":"Two"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, WithRateLimit(1000))
	hits, err := c.Search(context.Background(), "hospital epic go-live", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, Hit{URL: "https://a.example/one", Title: "One"}, hits[0])
	assert.Equal(t, Hit{URL: "https://a.example/two", Title: "Two"}, hits[1])
}

func TestSearch_CapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"url":"https://a.example/1","title":"1"},
			{"url":"https://a.example/2","title":"2"},
			{"url":"https://a.example/3","title":"3"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, WithRateLimit(1000))
	hits, err := c.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, WithRateLimit(1000))
	_, err := c.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "icp-discovery")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><h1>Riverbend</h1><p>Epic go-live</p></body></html>"))
	}))
	defer srv.Close()

	c := NewClient("", "", WithRateLimit(1000))
	page, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.Status)
	assert.Contains(t, page.Text, "Riverbend")
	assert.Contains(t, page.Text, "Epic go-live")
	assert.NotContains(t, page.Text, "<h1>")
	assert.Contains(t, page.HTML, "<h1>")
}

func TestFetch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("", "", WithRateLimit(1000))
	page, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, page.Status)
}

func TestFetch_TruncatesText(t *testing.T) {
	long := strings.Repeat("a", maxTextChars+1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(long))
	}))
	defer srv.Close()

	c := NewClient("", "", WithRateLimit(1000))
	page, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, page.Text, maxTextChars)
}

func TestStripHTMLTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "hello", "hello"},
		{"tags removed", "<p>hello</p>", "hello"},
		{"nested", "<div><span>a</span> b</div>", "a  b"},
		{"unclosed tag", "start <broken", "start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripHTMLTags(tt.input))
		})
	}
}

func TestDecodeBody(t *testing.T) {
	assert.Equal(t, "plain", decodeBody([]byte("plain"), "text/html; charset=utf-8"))
	assert.Equal(t, "plain", decodeBody([]byte("plain"), ""))
	// ISO-8859-1 é (0xE9) decodes to UTF-8.
	got := decodeBody([]byte{0xE9}, "text/html; charset=iso-8859-1")
	assert.Equal(t, "é", got)
}
