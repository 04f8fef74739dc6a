package application

import (
	"context"
	"encoding/json"

	"github.com/sngm3741/store-directory/api/internal/graphql"
	"github.com/sngm3741/store-directory/api/internal/public/domain"
)

// Executor sends query descriptors to the store API.
// Executor は上流の店舗 API にクエリを送るためのポート。
type Executor interface {
	Execute(ctx context.Context, req graphql.Request) (json.RawMessage, error)
}

// RequestValidator checks a descriptor before it is executed.
type RequestValidator interface {
	Validate(req graphql.Request) error
}

// ResponseCache stores raw response data keyed by request.
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// SearchLogRepository はメニュー検索履歴を永続化するポート。
type SearchLogRepository interface {
	Record(ctx context.Context, search domain.MenuItemSearch) error
	Recent(ctx context.Context, limit int) ([]domain.MenuItemSearch, error)
}

const (
	defaultRecentSearches = 20
	maxRecentSearches     = 100
)

// ClampRecentLimit keeps limit within 1..100, defaulting to 20 when unset.
func ClampRecentLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultRecentSearches
	case limit > maxRecentSearches:
		return maxRecentSearches
	default:
		return limit
	}
}

// StorePage is one page of the store listing.
type StorePage struct {
	Stores  []domain.StoreSummary
	Offset  int
	Total   int
	HasMore bool
}

// MenuItemSearchCommand captures a search for stores serving a menu item.
type MenuItemSearchCommand struct {
	SessionID string
	Item      domain.MenuItem
	Language  string
	From404   bool
}

// StoreQueryService describes read use-cases.
// StoreQueryService は店舗に関するユースケースを提供するリーダーモデル。
type StoreQueryService interface {
	NextPage(ctx context.Context, builder *StoreQueryBuilder) (StorePage, error)
	Featured(ctx context.Context) ([]domain.StoreSummary, error)
	Detail(ctx context.Context, uri string) (*domain.Store, error)
	SearchByMenuItem(ctx context.Context, builder *StoreQueryBuilder, cmd MenuItemSearchCommand) ([]domain.StoreSummary, error)
	RecentSearches(ctx context.Context, limit int) ([]domain.MenuItemSearch, error)
}
