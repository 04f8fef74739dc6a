package domain

// StoreSummary is the subset of a store shown in lists and search results.
type StoreSummary struct {
	URI      string `json:"URI"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Image    string `json:"image"`
}

// Store represents a publicly visible store entity as served by the store API.
// The gateway only reads stores; it never mutates them.
type Store struct {
	URI         string        `json:"URI,omitempty"`
	Name        string        `json:"name"`
	Description LocalizedText `json:"description"`
	Points      float64       `json:"points"`
	Category    string        `json:"category"`
	Address     string        `json:"address"`
	City        string        `json:"city"`
	Country     string        `json:"country"`
	Lat         float64       `json:"lat"`
	Lng         float64       `json:"lng"`
	Image       string        `json:"image"`
	Menu        Menu          `json:"menu"`
	Reviews     []Review      `json:"reviews"`
}

// Menu groups the items a store serves.
type Menu struct {
	Items []MenuEntry `json:"items"`
}

// MenuEntry mirrors the upstream menu entry. The schema lets one entry carry food, drink, or both.
type MenuEntry struct {
	Food  *MenuItemFields `json:"food,omitempty"`
	Drink *MenuItemFields `json:"drink,omitempty"`
}

// Items resolves the entry into tagged MenuItems, food first.
func (e MenuEntry) Items() []MenuItem {
	items := make([]MenuItem, 0, 2)
	if e.Food != nil {
		items = append(items, MenuItem{Kind: MenuItemFood, MenuItemFields: *e.Food})
	}
	if e.Drink != nil {
		items = append(items, MenuItem{Kind: MenuItemDrink, MenuItemFields: *e.Drink})
	}
	return items
}

// ItemsByKind flattens the menu into tagged items of the given kind.
// An empty kind returns every item.
func (m Menu) ItemsByKind(kind MenuItemKind) []MenuItem {
	items := make([]MenuItem, 0, len(m.Items))
	for _, entry := range m.Items {
		for _, item := range entry.Items() {
			if kind != "" && item.Kind != kind {
				continue
			}
			items = append(items, item)
		}
	}
	return items
}

// Review is a client review attached to a store.
type Review struct {
	ClientID      string        `json:"clientId"`
	ClientName    string        `json:"clientName"`
	ClientPicture string        `json:"clientPicture"`
	Date          string        `json:"date"`
	Points        float64       `json:"points"`
	Text          LocalizedText `json:"text"`
}
