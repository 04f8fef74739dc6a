package public

import (
	publicapp "github.com/sngm3741/store-directory/api/internal/public/application"
	publicdomain "github.com/sngm3741/store-directory/api/internal/public/domain"
)

type storeListResponse struct {
	Items   []publicdomain.StoreSummary `json:"items"`
	Offset  int                         `json:"offset"`
	Limit   int                         `json:"limit"`
	Total   int                         `json:"total"`
	HasMore bool                        `json:"hasMore"`
}

type featuredStoresResponse struct {
	Items []publicdomain.StoreSummary `json:"items"`
}

type menuItemSearchResponse struct {
	Items         []publicdomain.StoreSummary `json:"items"`
	Action        string                      `json:"action"`
	SearchFrom404 bool                        `json:"searchFrom404"`
}

type sessionStateResponse struct {
	Skip          int  `json:"skip"`
	SearchFrom404 bool `json:"searchFrom404"`
}

type menuItemResponse struct {
	Kind           string             `json:"kind"`
	Action         string             `json:"action"`
	Name           string             `json:"name"`
	Category       string             `json:"category"`
	PaymentMethods []string           `json:"paymentMethods,omitempty"`
	Picture        string             `json:"picture,omitempty"`
	Price          publicdomain.Price `json:"price"`
}

type reviewResponse struct {
	ClientName    string  `json:"clientName"`
	ClientPicture string  `json:"clientPicture,omitempty"`
	Date          string  `json:"date"`
	Points        float64 `json:"points"`
	Text          string  `json:"text"`
}

type storeDetailResponse struct {
	URI         string             `json:"URI"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Points      float64            `json:"points"`
	Category    string             `json:"category"`
	Address     string             `json:"address"`
	City        string             `json:"city"`
	Country     string             `json:"country"`
	Lat         float64            `json:"lat"`
	Lng         float64            `json:"lng"`
	Image       string             `json:"image"`
	Language    string             `json:"language"`
	Foods       []menuItemResponse `json:"foods"`
	Drinks      []menuItemResponse `json:"drinks"`
	Reviews     []reviewResponse   `json:"reviews"`
}

// buildStoreDetailResponse は Store ドメインモデルを指定言語の詳細表示用 DTO に変換する。
func buildStoreDetailResponse(store publicdomain.Store, lang publicdomain.Language) storeDetailResponse {
	reviews := make([]reviewResponse, 0, len(store.Reviews))
	for _, review := range store.Reviews {
		reviews = append(reviews, reviewResponse{
			ClientName:    review.ClientName,
			ClientPicture: review.ClientPicture,
			Date:          review.Date,
			Points:        review.Points,
			Text:          review.Text.In(lang),
		})
	}

	return storeDetailResponse{
		URI:         store.URI,
		Name:        store.Name,
		Description: store.Description.In(lang),
		Points:      store.Points,
		Category:    store.Category,
		Address:     store.Address,
		City:        store.City,
		Country:     store.Country,
		Lat:         store.Lat,
		Lng:         store.Lng,
		Image:       store.Image,
		Language:    lang.String(),
		Foods:       buildMenuItems(store.Menu.ItemsByKind(publicdomain.MenuItemFood), lang),
		Drinks:      buildMenuItems(store.Menu.ItemsByKind(publicdomain.MenuItemDrink), lang),
		Reviews:     reviews,
	}
}

func buildMenuItems(items []publicdomain.MenuItem, lang publicdomain.Language) []menuItemResponse {
	result := make([]menuItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, menuItemResponse{
			Kind:           item.Kind.String(),
			Action:         item.Action(),
			Name:           item.Name.In(lang),
			Category:       item.Category,
			PaymentMethods: append([]string{}, item.PaymentMethods...),
			Picture:        item.Picture,
			Price:          item.Price,
		})
	}
	return result
}

func buildSessionState(b *publicapp.StoreQueryBuilder) sessionStateResponse {
	return sessionStateResponse{Skip: b.SkipCounter(), SearchFrom404: b.SearchFrom404()}
}
