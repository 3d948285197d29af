package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/keystone-gtm/icp-discovery/internal/model"
	"github.com/keystone-gtm/icp-discovery/pkg/firmographics"
	"github.com/keystone-gtm/icp-discovery/pkg/websearch"
)

type mockSearchClient struct {
	hits  []websearch.Hit
	pages map[string]websearch.Page

	mu       sync.Mutex
	searches int
	fetches  int
}

func (m *mockSearchClient) Search(ctx context.Context, query string, maxResults int) ([]websearch.Hit, error) {
	m.mu.Lock()
	m.searches++
	m.mu.Unlock()
	if len(m.hits) > maxResults {
		return m.hits[:maxResults], nil
	}
	return m.hits, nil
}

func (m *mockSearchClient) Fetch(ctx context.Context, rawURL string) (websearch.Page, error) {
	m.mu.Lock()
	m.fetches++
	m.mu.Unlock()
	page, ok := m.pages[rawURL]
	if !ok {
		return websearch.Page{}, eris.Errorf("no page for %s", rawURL)
	}
	return page, nil
}

type mockEnrichClient struct {
	results map[string]*firmographics.Result
}

func (m *mockEnrichClient) Firmographics(ctx context.Context, company string) (*firmographics.Result, error) {
	return m.results[company], nil
}

type mockStore struct {
	mu       sync.Mutex
	members  map[model.Segment]map[string]struct{}
	upserted []model.LedgerEntry
}

func newMockStore() *mockStore {
	return &mockStore{members: map[model.Segment]map[string]struct{}{}}
}

func (m *mockStore) Members(ctx context.Context, segment model.Segment) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{}, len(m.members[segment]))
	for k := range m.members[segment] {
		out[k] = struct{}{}
	}
	return out, nil
}

func (m *mockStore) Upsert(ctx context.Context, entries []model.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted = append(m.upserted, entries...)
	return nil
}

func (m *mockStore) List(ctx context.Context, segment model.Segment) ([]model.LedgerEntry, error) {
	return nil, nil
}

func (m *mockStore) Counts(ctx context.Context) (map[model.Segment]int, error) {
	return map[model.Segment]int{}, nil
}

func (m *mockStore) Migrate(ctx context.Context) error { return nil }
func (m *mockStore) Close() error                      { return nil }
