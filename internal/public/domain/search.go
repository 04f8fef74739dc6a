package domain

import "time"

// MenuItemSearch records one search of stores by menu item.
// From404 keeps whether the search started from the not-found fallback page.
type MenuItemSearch struct {
	ID          string
	SessionID   string
	Kind        MenuItemKind
	Category    string
	Language    Language
	From404     bool
	ResultCount int
	SearchedAt  time.Time
}
