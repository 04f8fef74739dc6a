package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoPing is returned when the pings collection is empty.
var ErrNoPing = errors.New("ping document not found")

// PingRepository reads and seeds the pings collection used by /ping.
type PingRepository struct {
	collection *mongo.Collection
}

// NewPingRepository creates a new ping repository.
func NewPingRepository(db *mongo.Database, collectionName string) *PingRepository {
	return &PingRepository{collection: db.Collection(collectionName)}
}

// Latest returns the newest ping document.
func (r *PingRepository) Latest(ctx context.Context) (*PingDocument, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var doc PingDocument
	err := r.collection.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoPing
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// EnsureSample は pings コレクションに最低1件のドキュメントがある状態を保証する。
func (r *PingRepository) EnsureSample(ctx context.Context, now time.Time) error {
	count, err := r.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = r.collection.InsertOne(ctx, bson.M{
		"message":   "pong",
		"createdAt": now,
	})
	return err
}
