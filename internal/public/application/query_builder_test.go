package application

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/store-directory/api/internal/graphql"
	"github.com/sngm3741/store-directory/api/internal/public/domain"
)

func mustMenuItem(t *testing.T, kind, category string) domain.MenuItem {
	t.Helper()
	item, err := domain.NewMenuItem(kind, category)
	require.NoError(t, err)
	return item
}

func TestGetAllAdvancesSkipCounter(t *testing.T) {
	b := NewStoreQueryBuilder()
	require.Equal(t, 0, b.SkipCounter())

	for _, want := range []int{0, 24, 48} {
		req := b.GetAll()
		assert.Equal(t, "Stores", req.OperationName)
		assert.Equal(t, want, req.Variables["skip"])
		assert.Equal(t, Limit, req.Variables["limit"])
	}
	assert.Equal(t, 72, b.SkipCounter())
}

func TestResetSkipCounter(t *testing.T) {
	b := NewStoreQueryBuilder()
	for i := 0; i < 3; i++ {
		b.GetAll()
	}
	require.Equal(t, 72, b.SkipCounter())

	b.ResetSkipCounter()
	assert.Equal(t, 0, b.SkipCounter())
	assert.Equal(t, 0, b.GetAll().Variables["skip"])

	b.ResetSkipCounter()
	b.ResetSkipCounter()
	assert.Equal(t, 0, b.SkipCounter())
}

func TestGetAllFeaturedLeavesCounter(t *testing.T) {
	b := NewStoreQueryBuilder()
	b.GetAll()

	req := b.GetAllFeatured()
	assert.Equal(t, "FeaturedStores", req.OperationName)
	assert.Empty(t, req.Variables)
	assert.Equal(t, Limit, b.SkipCounter())
	assert.Equal(t, req, b.GetAllFeatured())
}

func TestGetStore(t *testing.T) {
	b := NewStoreQueryBuilder()

	req, err := b.GetStore("  trattoria-roma  ")
	require.NoError(t, err)
	assert.Equal(t, "Store", req.OperationName)
	assert.Equal(t, "trattoria-roma", req.Variables["uri"])
	assert.Equal(t, 0, b.SkipCounter())

	tests := []struct {
		name string
		uri  string
	}{
		{name: "empty", uri: ""},
		{name: "blank", uri: "   "},
		{name: "quote", uri: `a"b`},
		{name: "brace", uri: "a}{b"},
		{name: "inner space", uri: "a b"},
		{name: "backslash", uri: `a\b`},
		{name: "bad escape", uri: "a%zz"},
		{name: "too long", uri: strings.Repeat("a", 257)},
		{name: "injection", uri: `x") { name } evil: store(URI: "y`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.GetStore(tt.uri)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	for _, uri := range []string{"bar-%C3%A9", "city/rome/da-mario", "a~b.c_d", strings.Repeat("a", 256)} {
		_, err := b.GetStore(uri)
		assert.NoError(t, err, uri)
	}
}

func TestGetAllByMenuItem(t *testing.T) {
	b := NewStoreQueryBuilder()
	b.GetAll()

	req, err := b.GetAllByMenuItem(mustMenuItem(t, "food", "pizza"), "en")
	require.NoError(t, err)
	assert.Equal(t, "StoresByMenuItem", req.OperationName)
	assert.Equal(t, map[string]any{"type": "food", "name": "pizza", "language": "en"}, req.Variables)
	assert.False(t, b.SearchFrom404())
	assert.Equal(t, Limit, b.SkipCounter())

	_, err = b.GetAllByMenuItem(mustMenuItem(t, "drink", "wine"), "it-IT", FromNotFound(true))
	require.NoError(t, err)
	assert.True(t, b.SearchFrom404())

	req, err = b.GetAllByMenuItem(mustMenuItem(t, "drink", "wine"), "es")
	require.NoError(t, err)
	assert.Equal(t, "drink", req.Variables["type"])
	assert.False(t, b.SearchFrom404())
}

func TestGetAllByMenuItemRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		item     domain.MenuItem
		language string
	}{
		{name: "unknown kind", item: domain.MenuItem{Kind: "dessert", MenuItemFields: domain.MenuItemFields{Category: "cake"}}, language: "en"},
		{name: "zero kind", item: domain.MenuItem{MenuItemFields: domain.MenuItemFields{Category: "cake"}}, language: "en"},
		{name: "empty category", item: domain.MenuItem{Kind: domain.MenuItemFood}, language: "en"},
		{name: "unsupported language", item: domain.MenuItem{Kind: domain.MenuItemFood, MenuItemFields: domain.MenuItemFields{Category: "pizza"}}, language: "fr"},
		{name: "empty language", item: domain.MenuItem{Kind: domain.MenuItemFood, MenuItemFields: domain.MenuItemFields{Category: "pizza"}}, language: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewStoreQueryBuilder()
			_, err := b.GetAllByMenuItem(domain.MenuItem{Kind: domain.MenuItemFood, MenuItemFields: domain.MenuItemFields{Category: "x"}}, "en", FromNotFound(true))
			require.NoError(t, err)

			_, err = b.GetAllByMenuItem(tt.item, tt.language)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.True(t, b.SearchFrom404(), "failed searches keep the previous origin")
		})
	}
}

func TestCallerValuesOnlyTravelInVariables(t *testing.T) {
	b := NewStoreQueryBuilder()
	hostile := `pizza" } } mutation { drop`

	req, err := b.GetAllByMenuItem(mustMenuItem(t, "food", hostile), "en")
	require.NoError(t, err)
	assert.NotContains(t, req.Query, hostile)
	assert.Equal(t, hostile, req.Variables["name"])
	assert.Equal(t, storesByMenuItemQuery, req.Query)
}

func TestBuiltRequestsPassSchemaValidation(t *testing.T) {
	schema, err := graphql.LoadStoreSchema()
	require.NoError(t, err)

	b := NewStoreQueryBuilder()
	store, err := b.GetStore("trattoria-roma")
	require.NoError(t, err)
	search, err := b.GetAllByMenuItem(mustMenuItem(t, "drink", "espresso"), "it")
	require.NoError(t, err)

	for _, req := range []graphql.Request{b.GetAll(), b.GetAllFeatured(), store, search} {
		assert.NoError(t, schema.Validate(req), req.OperationName)
	}
}
