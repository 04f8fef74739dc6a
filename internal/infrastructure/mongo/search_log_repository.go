package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/store-directory/api/internal/public/application"
	"github.com/sngm3741/store-directory/api/internal/public/domain"
)

// SearchLogRepository implements application.SearchLogRepository using MongoDB.
type SearchLogRepository struct {
	collection *mongo.Collection
}

// NewSearchLogRepository creates a new Mongo-backed search log.
func NewSearchLogRepository(db *mongo.Database, collectionName string) *SearchLogRepository {
	return &SearchLogRepository{collection: db.Collection(collectionName)}
}

// Record inserts one search entry.
func (r *SearchLogRepository) Record(ctx context.Context, search domain.MenuItemSearch) error {
	_, err := r.collection.InsertOne(ctx, toSearchDocument(search))
	return err
}

// Recent returns the newest searches first.
func (r *SearchLogRepository) Recent(ctx context.Context, limit int) ([]domain.MenuItemSearch, error) {
	opts := options.Find().SetSort(bson.D{{Key: "searchedAt", Value: -1}})
	opts.SetLimit(int64(application.ClampRecentLimit(limit)))

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	searches := make([]domain.MenuItemSearch, 0)
	for cursor.Next(ctx) {
		var doc SearchDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		searches = append(searches, fromSearchDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return searches, nil
}

func toSearchDocument(search domain.MenuItemSearch) SearchDocument {
	return SearchDocument{
		ID:          search.ID,
		SessionID:   search.SessionID,
		Kind:        search.Kind.String(),
		Category:    search.Category,
		Language:    search.Language.String(),
		From404:     search.From404,
		ResultCount: search.ResultCount,
		SearchedAt:  search.SearchedAt.UTC(),
	}
}

func fromSearchDocument(doc SearchDocument) domain.MenuItemSearch {
	return domain.MenuItemSearch{
		ID:          doc.ID,
		SessionID:   doc.SessionID,
		Kind:        domain.MenuItemKind(doc.Kind),
		Category:    doc.Category,
		Language:    domain.Language(doc.Language),
		From404:     doc.From404,
		ResultCount: doc.ResultCount,
		SearchedAt:  doc.SearchedAt,
	}
}
