package admin

import (
	"context"
	"net/http"
	"sort"

	"github.com/sngm3741/store-directory/api/internal/interfaces/http/common"
	publicapp "github.com/sngm3741/store-directory/api/internal/public/application"
	"github.com/sngm3741/store-directory/api/internal/public/domain"
)

const defaultSearchLimit = 20

func (h *Handler) searchListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		limit, _ := common.ParsePositiveInt(r.URL.Query().Get("limit"), defaultSearchLimit)
		limit = publicapp.ClampRecentLimit(limit)
		searches, err := h.storeQueries.RecentSearches(ctx, limit)
		if err != nil {
			h.logger.Errorf("search log fetch failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "検索履歴の取得に失敗しました"})
			return
		}

		items := make([]searchResponse, 0, len(searches))
		for _, search := range searches {
			items = append(items, buildSearchResponse(search))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, searchListResponse{Items: items, Limit: limit})
	}
}

// searchSummaryHandler は直近の検索履歴を種別・カテゴリ単位で集計する。
func (h *Handler) searchSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		limit, _ := common.ParsePositiveInt(r.URL.Query().Get("limit"), 100)
		searches, err := h.storeQueries.RecentSearches(ctx, limit)
		if err != nil {
			h.logger.Errorf("search log fetch failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "検索履歴の取得に失敗しました"})
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, summarizeSearches(searches))
	}
}

func buildSearchResponse(search domain.MenuItemSearch) searchResponse {
	return searchResponse{
		ID:          search.ID,
		SessionID:   search.SessionID,
		Type:        search.Kind.String(),
		Action:      search.Kind.Action(),
		Category:    search.Category,
		Language:    search.Language.String(),
		From404:     search.From404,
		ResultCount: search.ResultCount,
		SearchedAt:  search.SearchedAt,
	}
}

func summarizeSearches(searches []domain.MenuItemSearch) searchSummaryResponse {
	type key struct {
		kind     domain.MenuItemKind
		category string
	}
	counts := make(map[key]*searchBucket)
	summary := searchSummaryResponse{Total: len(searches)}
	for _, search := range searches {
		if search.From404 {
			summary.From404++
		}
		if search.ResultCount == 0 {
			summary.NoResults++
		}
		k := key{kind: search.Kind, category: search.Category}
		bucket, ok := counts[k]
		if !ok {
			bucket = &searchBucket{Type: search.Kind.String(), Category: search.Category}
			counts[k] = bucket
		}
		bucket.Count++
	}

	summary.Buckets = make([]searchBucket, 0, len(counts))
	for _, bucket := range counts {
		summary.Buckets = append(summary.Buckets, *bucket)
	}
	sort.Slice(summary.Buckets, func(i, j int) bool {
		if summary.Buckets[i].Count == summary.Buckets[j].Count {
			if summary.Buckets[i].Type == summary.Buckets[j].Type {
				return summary.Buckets[i].Category < summary.Buckets[j].Category
			}
			return summary.Buckets[i].Type < summary.Buckets[j].Type
		}
		return summary.Buckets[i].Count > summary.Buckets[j].Count
	})
	return summary
}
