package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/store-directory/api/internal/graphql"
	"github.com/sngm3741/store-directory/api/internal/public/domain"
)

type fakeExecutor struct {
	responses map[string]string
	err       error
	calls     []graphql.Request
}

func (f *fakeExecutor) Execute(_ context.Context, req graphql.Request) (json.RawMessage, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.responses[req.OperationName]), nil
}

type mapCache map[string][]byte

func (c mapCache) Get(key string) ([]byte, bool) {
	v, ok := c[key]
	return v, ok
}

func (c mapCache) Set(key string, value []byte) {
	c[key] = value
}

type memorySearchLog struct {
	entries []domain.MenuItemSearch
	err     error
}

func (m *memorySearchLog) Record(_ context.Context, search domain.MenuItemSearch) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, search)
	return nil
}

func (m *memorySearchLog) Recent(_ context.Context, limit int) ([]domain.MenuItemSearch, error) {
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	return m.entries[:limit], nil
}

func newTestService(t *testing.T, exec *fakeExecutor, cache ResponseCache, searches SearchLogRepository) StoreQueryService {
	t.Helper()
	schema, err := graphql.LoadStoreSchema()
	require.NoError(t, err)
	return NewStoreQueryService(StoreQueryServiceConfig{
		Executor:  exec,
		Validator: schema,
		Cache:     cache,
		Searches:  searches,
		Now:       func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func TestNextPage(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]string{
		"Stores": `{"stores":[{"URI":"a","name":"A"},{"URI":"b","name":"B"}],"storesCount":26}`,
	}}
	svc := newTestService(t, exec, nil, nil)
	builder := NewStoreQueryBuilder()

	page, err := svc.NextPage(context.Background(), builder)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Offset)
	assert.Equal(t, 26, page.Total)
	assert.Len(t, page.Stores, 2)
	assert.True(t, page.HasMore)

	page, err = svc.NextPage(context.Background(), builder)
	require.NoError(t, err)
	assert.Equal(t, 24, page.Offset)
	assert.False(t, page.HasMore)

	require.Len(t, exec.calls, 2)
	assert.Equal(t, 24, exec.calls[1].Variables["skip"])
}

func TestFeaturedUsesCache(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]string{
		"FeaturedStores": `{"featuredStores":[{"URI":"a","name":"A"}]}`,
	}}
	cache := mapCache{}
	svc := newTestService(t, exec, cache, nil)

	for i := 0; i < 3; i++ {
		stores, err := svc.Featured(context.Background())
		require.NoError(t, err)
		require.Len(t, stores, 1)
		assert.Equal(t, "A", stores[0].Name)
	}
	assert.Len(t, exec.calls, 1)
}

func TestDetail(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]string{
		"Store": `{"store":{"URI":"trattoria","name":"Trattoria","description":{"en":"Pasta","it":"Pasta fresca"},"menu":{"items":[{"food":{"category":"pizza"}},{"drink":{"category":"wine"}}]}}}`,
	}}
	svc := newTestService(t, exec, nil, nil)

	store, err := svc.Detail(context.Background(), "trattoria")
	require.NoError(t, err)
	assert.Equal(t, "Trattoria", store.Name)
	assert.Equal(t, "Pasta fresca", store.Description.In(domain.LanguageItalian))

	drinks := store.Menu.ItemsByKind(domain.MenuItemDrink)
	require.Len(t, drinks, 1)
	assert.Equal(t, "drink", drinks[0].Action())
}

func TestDetailErrors(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]string{"Store": `{"store":null}`}}
	svc := newTestService(t, exec, nil, nil)

	_, err := svc.Detail(context.Background(), "missing")
	require.ErrorIs(t, err, ErrStoreNotFound)

	_, err = svc.Detail(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Len(t, exec.calls, 1, "invalid URIs never reach the store API")
}

func TestUpstreamErrorsPropagate(t *testing.T) {
	upstream := &graphql.ResponseError{OperationName: "FeaturedStores", Errors: []graphql.ErrorEntry{{Message: "boom"}}}
	svc := newTestService(t, &fakeExecutor{err: upstream}, nil, nil)

	_, err := svc.Featured(context.Background())
	require.ErrorIs(t, err, graphql.ErrUpstream)
}

func TestMalformedDataIsUpstreamError(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]string{"FeaturedStores": `{"featuredStores":"nope"}`}}
	svc := newTestService(t, exec, nil, nil)

	_, err := svc.Featured(context.Background())
	require.ErrorIs(t, err, graphql.ErrUpstream)
}

func TestSearchByMenuItemRecordsSearch(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]string{
		"StoresByMenuItem": `{"stores":[{"URI":"a","name":"A"},{"URI":"b","name":"B"},{"URI":"c","name":"C"}]}`,
	}}
	searches := &memorySearchLog{}
	svc := newTestService(t, exec, nil, searches)
	builder := NewStoreQueryBuilder()

	item, err := domain.NewMenuItem("drink", " wine ")
	require.NoError(t, err)
	stores, err := svc.SearchByMenuItem(context.Background(), builder, MenuItemSearchCommand{
		SessionID: "session-1",
		Item:      item,
		Language:  "es-MX",
		From404:   true,
	})
	require.NoError(t, err)
	assert.Len(t, stores, 3)
	assert.True(t, builder.SearchFrom404())

	require.Len(t, searches.entries, 1)
	entry := searches.entries[0]
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "session-1", entry.SessionID)
	assert.Equal(t, domain.MenuItemDrink, entry.Kind)
	assert.Equal(t, "wine", entry.Category)
	assert.Equal(t, domain.LanguageSpanish, entry.Language)
	assert.True(t, entry.From404)
	assert.Equal(t, 3, entry.ResultCount)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), entry.SearchedAt)

	recent, err := svc.RecentSearches(context.Background(), 20)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestSearchLogFailureIsNotReturned(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]string{"StoresByMenuItem": `{"stores":[]}`}}
	svc := newTestService(t, exec, nil, &memorySearchLog{err: errors.New("mongo down")})

	item, err := domain.NewMenuItem("food", "pizza")
	require.NoError(t, err)
	stores, err := svc.SearchByMenuItem(context.Background(), NewStoreQueryBuilder(), MenuItemSearchCommand{Item: item, Language: "en"})
	require.NoError(t, err)
	assert.Empty(t, stores)
}

func TestSearchByMenuItemRejectsLanguage(t *testing.T) {
	exec := &fakeExecutor{}
	svc := newTestService(t, exec, nil, nil)

	item, err := domain.NewMenuItem("food", "pizza")
	require.NoError(t, err)
	_, err = svc.SearchByMenuItem(context.Background(), NewStoreQueryBuilder(), MenuItemSearchCommand{Item: item, Language: "de"})
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, exec.calls)
}

func TestClampRecentLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: -5, want: 20},
		{in: 0, want: 20},
		{in: 1, want: 1},
		{in: 50, want: 50},
		{in: 100, want: 100},
		{in: 101, want: 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampRecentLimit(tt.in), "limit %d", tt.in)
	}
}
