package application

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sngm3741/store-directory/api/internal/graphql"
	"github.com/sngm3741/store-directory/api/internal/public/domain"
)

// Limit is the number of stores requested per page.
const Limit = 24

const maxStoreURILength = 256

// storeURIPattern allows RFC 3986 unreserved, sub-delim and path characters plus percent escapes.
var storeURIPattern = regexp.MustCompile(`^(?:[A-Za-z0-9\-._~:/@!$&'()*+,;=]|%[0-9A-Fa-f]{2})+$`)

const storeSummaryFields = `
    URI
    name
    category
    address
    city
    image`

const localizedFields = `{
      en
      es
      it
    }`

const menuItemFields = `{
          name {
            en
            es
            it
          }
          category
          paymentMethods
          picture
          price {
            currency
            value
          }
        }`

const (
	opStores           = "Stores"
	opFeaturedStores   = "FeaturedStores"
	opStore            = "Store"
	opStoresByMenuItem = "StoresByMenuItem"
)

var (
	storesQuery = `query Stores($skip: Int, $limit: Int) {
  stores(skip: $skip, limit: $limit) {` + storeSummaryFields + `
  }
  storesCount
}`

	featuredStoresQuery = `query FeaturedStores {
  featuredStores {` + storeSummaryFields + `
  }
}`

	storeQuery = `query Store($uri: String!) {
  store(URI: $uri) {
    URI
    name
    description ` + localizedFields + `
    points
    category
    address
    city
    country
    lat
    lng
    image
    menu {
      items {
        food ` + menuItemFields + `
        drink ` + menuItemFields + `
      }
    }
    reviews {
      clientId
      clientName
      clientPicture
      date
      points
      text ` + localizedFields + `
    }
  }
}`

	storesByMenuItemQuery = `query StoresByMenuItem($type: String, $name: String, $language: String) {
  stores(menuItemType: $type, menuItemName: $name, language: $language) {` + storeSummaryFields + `
  }
}`
)

// SearchOption adjusts a menu item search.
type SearchOption func(*searchOptions)

type searchOptions struct {
	from404 bool
}

// FromNotFound marks the search as started from the not-found fallback page.
func FromNotFound(from404 bool) SearchOption {
	return func(o *searchOptions) {
		o.from404 = from404
	}
}

// StoreQueryBuilder turns UI intents into query descriptors for the store API and
// keeps the pagination cursor for successive store list pages.
//
// A builder is not safe for concurrent use; its owner serializes calls.
type StoreQueryBuilder struct {
	skipCounter   int
	searchFrom404 bool
}

// NewStoreQueryBuilder returns a builder positioned at the first page.
func NewStoreQueryBuilder() *StoreQueryBuilder {
	return &StoreQueryBuilder{}
}

// SkipCounter returns the offset the next GetAll call will request.
func (b *StoreQueryBuilder) SkipCounter() int {
	return b.skipCounter
}

// SearchFrom404 reports the origin flag recorded by the last menu item search.
func (b *StoreQueryBuilder) SearchFrom404() bool {
	return b.searchFrom404
}

// ResetSkipCounter moves the cursor back to the first page. Call it whenever the
// search context changes so the first page of the new listing is not skipped.
func (b *StoreQueryBuilder) ResetSkipCounter() {
	b.skipCounter = 0
}

// GetAll requests the next page of stores together with the total store count
// and advances the cursor by Limit.
func (b *StoreQueryBuilder) GetAll() graphql.Request {
	req := graphql.Request{
		Query:         storesQuery,
		OperationName: opStores,
		Variables: map[string]any{
			"skip":  b.skipCounter,
			"limit": Limit,
		},
	}
	b.skipCounter += Limit
	return req
}

// GetAllFeatured requests every featured store. The cursor is untouched.
func (b *StoreQueryBuilder) GetAllFeatured() graphql.Request {
	return graphql.Request{
		Query:         featuredStoresQuery,
		OperationName: opFeaturedStores,
	}
}

// GetStore requests the full record of one store by its URI.
func (b *StoreQueryBuilder) GetStore(uri string) (graphql.Request, error) {
	normalized, err := normalizeStoreURI(uri)
	if err != nil {
		return graphql.Request{}, err
	}
	return graphql.Request{
		Query:         storeQuery,
		OperationName: opStore,
		Variables:     map[string]any{"uri": normalized},
	}, nil
}

// GetAllByMenuItem requests the stores whose menu holds an item of the same kind
// and category as item, with names in language. It records the search origin,
// which defaults to false when FromNotFound is not given.
func (b *StoreQueryBuilder) GetAllByMenuItem(item domain.MenuItem, language string, opts ...SearchOption) (graphql.Request, error) {
	if !item.Kind.Valid() {
		return graphql.Request{}, fmt.Errorf("%w: unknown menu item type %q", ErrInvalidArgument, item.Kind)
	}
	category := strings.TrimSpace(item.Category)
	if category == "" {
		return graphql.Request{}, fmt.Errorf("%w: menu item category is required", ErrInvalidArgument)
	}
	lang, err := domain.ParseLanguage(language)
	if err != nil {
		return graphql.Request{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	var options searchOptions
	for _, opt := range opts {
		opt(&options)
	}
	b.searchFrom404 = options.from404

	return graphql.Request{
		Query:         storesByMenuItemQuery,
		OperationName: opStoresByMenuItem,
		Variables: map[string]any{
			"type":     item.Kind.String(),
			"name":     category,
			"language": lang.String(),
		},
	}, nil
}

func normalizeStoreURI(uri string) (string, error) {
	trimmed := strings.TrimSpace(uri)
	if trimmed == "" {
		return "", fmt.Errorf("%w: store URI is required", ErrInvalidArgument)
	}
	if len(trimmed) > maxStoreURILength {
		return "", fmt.Errorf("%w: store URI exceeds %d characters", ErrInvalidArgument, maxStoreURILength)
	}
	if !storeURIPattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: malformed store URI %q", ErrInvalidArgument, trimmed)
	}
	return trimmed, nil
}
