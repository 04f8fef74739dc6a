package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sngm3741/store-directory/api/internal/graphql"
	"github.com/sngm3741/store-directory/api/internal/public/domain"
)

// StoreQueryServiceConfig defines dependencies required by the store query service.
type StoreQueryServiceConfig struct {
	Executor  Executor
	Validator RequestValidator
	Cache     ResponseCache
	Searches  SearchLogRepository
	Logger    *zap.SugaredLogger
	Now       func() time.Time
}

// storeQueryService is the concrete implementation of StoreQueryService.
type storeQueryService struct {
	executor  Executor
	validator RequestValidator
	cache     ResponseCache
	searches  SearchLogRepository
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// NewStoreQueryService creates a new store query service.
// Cache and Searches are optional.
func NewStoreQueryService(cfg StoreQueryServiceConfig) StoreQueryService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &storeQueryService{
		executor:  cfg.Executor,
		validator: cfg.Validator,
		cache:     cfg.Cache,
		searches:  cfg.Searches,
		logger:    logger,
		now:       now,
	}
}

type storesPayload struct {
	Stores      []domain.StoreSummary `json:"stores"`
	StoresCount int                   `json:"storesCount"`
}

type featuredPayload struct {
	FeaturedStores []domain.StoreSummary `json:"featuredStores"`
}

type storePayload struct {
	Store *domain.Store `json:"store"`
}

func (s *storeQueryService) NextPage(ctx context.Context, builder *StoreQueryBuilder) (StorePage, error) {
	offset := builder.SkipCounter()
	req := builder.GetAll()

	var payload storesPayload
	if err := s.run(ctx, req, false, &payload); err != nil {
		return StorePage{}, err
	}

	stores := payload.Stores
	if stores == nil {
		stores = []domain.StoreSummary{}
	}
	return StorePage{
		Stores:  stores,
		Offset:  offset,
		Total:   payload.StoresCount,
		HasMore: offset+len(stores) < payload.StoresCount,
	}, nil
}

func (s *storeQueryService) Featured(ctx context.Context) ([]domain.StoreSummary, error) {
	req := NewStoreQueryBuilder().GetAllFeatured()

	var payload featuredPayload
	if err := s.run(ctx, req, true, &payload); err != nil {
		return nil, err
	}
	if payload.FeaturedStores == nil {
		return []domain.StoreSummary{}, nil
	}
	return payload.FeaturedStores, nil
}

func (s *storeQueryService) Detail(ctx context.Context, uri string) (*domain.Store, error) {
	req, err := NewStoreQueryBuilder().GetStore(uri)
	if err != nil {
		return nil, err
	}

	var payload storePayload
	if err := s.run(ctx, req, true, &payload); err != nil {
		return nil, err
	}
	if payload.Store == nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, req.Variables["uri"])
	}
	return payload.Store, nil
}

func (s *storeQueryService) SearchByMenuItem(ctx context.Context, builder *StoreQueryBuilder, cmd MenuItemSearchCommand) ([]domain.StoreSummary, error) {
	req, err := builder.GetAllByMenuItem(cmd.Item, cmd.Language, FromNotFound(cmd.From404))
	if err != nil {
		return nil, err
	}

	var payload storesPayload
	if err := s.run(ctx, req, false, &payload); err != nil {
		return nil, err
	}
	stores := payload.Stores
	if stores == nil {
		stores = []domain.StoreSummary{}
	}

	s.recordSearch(ctx, req, cmd, builder.SearchFrom404(), len(stores))
	return stores, nil
}

func (s *storeQueryService) RecentSearches(ctx context.Context, limit int) ([]domain.MenuItemSearch, error) {
	if s.searches == nil {
		return []domain.MenuItemSearch{}, nil
	}
	return s.searches.Recent(ctx, ClampRecentLimit(limit))
}

func (s *storeQueryService) recordSearch(ctx context.Context, req graphql.Request, cmd MenuItemSearchCommand, from404 bool, count int) {
	if s.searches == nil {
		return
	}
	language, _ := req.Variables["language"].(string)
	category, _ := req.Variables["name"].(string)
	entry := domain.MenuItemSearch{
		ID:          uuid.NewString(),
		SessionID:   cmd.SessionID,
		Kind:        cmd.Item.Kind,
		Category:    category,
		Language:    domain.Language(language),
		From404:     from404,
		ResultCount: count,
		SearchedAt:  s.now().UTC(),
	}
	if err := s.searches.Record(ctx, entry); err != nil {
		s.logger.Warnf("メニュー検索履歴の保存に失敗しました session=%s err=%v", cmd.SessionID, err)
	}
}

// run validates req, consults the cache when cacheable and decodes the data member into out.
func (s *storeQueryService) run(ctx context.Context, req graphql.Request, cacheable bool, out any) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	key := req.CacheKey()
	if cacheable && s.cache != nil && key != "" {
		if data, ok := s.cache.Get(key); ok {
			if err := json.Unmarshal(data, out); err == nil {
				return nil
			}
		}
	}

	data, err := s.executor.Execute(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s data: %v", graphql.ErrUpstream, req.OperationName, err)
	}

	if cacheable && s.cache != nil && key != "" {
		s.cache.Set(key, data)
	}
	return nil
}
