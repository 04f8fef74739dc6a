package domain

import (
	"fmt"
	"strings"
)

// MenuItemKind tags a menu item as one of a closed set of variants.
type MenuItemKind string

const (
	MenuItemFood  MenuItemKind = "food"
	MenuItemDrink MenuItemKind = "drink"
)

var menuItemActions = map[MenuItemKind]string{
	MenuItemFood:  "eat",
	MenuItemDrink: "drink",
}

// ParseMenuItemKind accepts the wire name of a kind, case-insensitively.
func ParseMenuItemKind(value string) (MenuItemKind, error) {
	kind := MenuItemKind(strings.ToLower(strings.TrimSpace(value)))
	if kind == "" {
		return "", fmt.Errorf("menu item type is required")
	}
	if !kind.Valid() {
		return "", fmt.Errorf("invalid menu item type: %s", value)
	}
	return kind, nil
}

// Valid reports whether k is one of the known variants.
func (k MenuItemKind) Valid() bool {
	_, ok := menuItemActions[k]
	return ok
}

// Action returns the verb describing how an item of this kind is consumed.
func (k MenuItemKind) Action() string {
	return menuItemActions[k]
}

func (k MenuItemKind) String() string {
	return string(k)
}

// Price is an amount in a given currency.
type Price struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

// MenuItemFields holds the attributes shared by every menu item variant.
type MenuItemFields struct {
	Name           LocalizedText `json:"name"`
	Category       string        `json:"category"`
	PaymentMethods []string      `json:"paymentMethods"`
	Picture        string        `json:"picture"`
	Price          Price         `json:"price"`
}

// MenuItem is a purchasable entry (food or drink) embedded in a store's menu.
type MenuItem struct {
	Kind MenuItemKind `json:"kind"`
	MenuItemFields
}

// NewMenuItem builds the minimal item used to search stores by menu: a kind and a category.
func NewMenuItem(kind, category string) (MenuItem, error) {
	k, err := ParseMenuItemKind(kind)
	if err != nil {
		return MenuItem{}, err
	}
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return MenuItem{}, fmt.Errorf("menu item category is required")
	}
	return MenuItem{Kind: k, MenuItemFields: MenuItemFields{Category: trimmed}}, nil
}

// Action returns the verb for the item's kind ("eat" for food, "drink" for drinks).
func (m MenuItem) Action() string {
	return m.Kind.Action()
}
