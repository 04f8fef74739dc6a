package public

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/store-directory/api/internal/interfaces/http/common"
	publicapp "github.com/sngm3741/store-directory/api/internal/public/application"
	"github.com/sngm3741/store-directory/api/internal/public/domain"
)

func (h *Handler) storeListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		var page publicapp.StorePage
		err := h.withBuilder(r, func(_ string, b *publicapp.StoreQueryBuilder) error {
			var err error
			page, err = h.storeQueries.NextPage(ctx, b)
			return err
		})
		if err != nil {
			h.logger.Warnf("store list fetch failed: %v", err)
			common.WriteError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, storeListResponse{
			Items:   page.Stores,
			Offset:  page.Offset,
			Limit:   publicapp.Limit,
			Total:   page.Total,
			HasMore: page.HasMore,
		})
	}
}

func (h *Handler) storeResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var state sessionStateResponse
		err := h.withBuilder(r, func(_ string, b *publicapp.StoreQueryBuilder) error {
			b.ResetSkipCounter()
			state = buildSessionState(b)
			return nil
		})
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, state)
	}
}

func (h *Handler) featuredStoresHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		stores, err := h.storeQueries.Featured(ctx)
		if err != nil {
			h.logger.Warnf("featured stores fetch failed: %v", err)
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, featuredStoresResponse{Items: stores})
	}
}

func (h *Handler) storeDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		uri, err := storeURIParam(r)
		if err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "店舗URIの形式が不正です"})
			return
		}

		lang := domain.LanguageEnglish
		if raw := strings.TrimSpace(r.URL.Query().Get("lang")); raw != "" {
			parsed, err := domain.ParseLanguage(raw)
			if err != nil {
				common.WriteError(h.logger, w, fmt.Errorf("%w: %v", publicapp.ErrInvalidArgument, err))
				return
			}
			lang = parsed
		}

		store, err := h.storeQueries.Detail(ctx, uri)
		if err != nil {
			if common.StatusForError(err) >= http.StatusInternalServerError {
				h.logger.Warnf("store detail fetch failed uri=%q err=%v", uri, err)
			}
			common.WriteError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildStoreDetailResponse(*store, lang))
	}
}

// storeURIParam は {uri} を一度だけデコードして返す。
// chi は RawPath があればエスケープ済みのまま、なければデコード済みの Path でマッチする。
func storeURIParam(r *http.Request) (string, error) {
	uri := chi.URLParam(r, "uri")
	if r.URL.RawPath == "" {
		return uri, nil
	}
	return url.PathUnescape(uri)
}

func (h *Handler) menuItemSearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		query := r.URL.Query()
		item, err := domain.NewMenuItem(query.Get("type"), query.Get("category"))
		if err != nil {
			common.WriteError(h.logger, w, fmt.Errorf("%w: %v", publicapp.ErrInvalidArgument, err))
			return
		}
		from404, err := common.ParseBool(query.Get("from404"))
		if err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "from404 は true/false で指定してください"})
			return
		}
		lang := query.Get("lang")
		if strings.TrimSpace(lang) == "" {
			lang = domain.LanguageEnglish.String()
		}

		var (
			stores []domain.StoreSummary
			state  sessionStateResponse
		)
		err = h.withBuilder(r, func(sessionID string, b *publicapp.StoreQueryBuilder) error {
			var err error
			stores, err = h.storeQueries.SearchByMenuItem(ctx, b, publicapp.MenuItemSearchCommand{
				SessionID: sessionID,
				Item:      item,
				Language:  lang,
				From404:   from404,
			})
			state = buildSessionState(b)
			return err
		})
		if err != nil {
			if common.StatusForError(err) >= http.StatusInternalServerError {
				h.logger.Warnf("menu item search failed type=%s category=%q err=%v", item.Kind, item.Category, err)
			}
			common.WriteError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, menuItemSearchResponse{
			Items:         stores,
			Action:        item.Action(),
			SearchFrom404: state.SearchFrom404,
		})
	}
}

func (h *Handler) sessionStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var state sessionStateResponse
		err := h.withBuilder(r, func(_ string, b *publicapp.StoreQueryBuilder) error {
			state = buildSessionState(b)
			return nil
		})
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, state)
	}
}
