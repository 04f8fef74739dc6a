package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SearchDocument は MongoDB 上でのメニュー検索履歴スキーマを表現したもの。
type SearchDocument struct {
	ID          string    `bson:"_id"`
	SessionID   string    `bson:"sessionId,omitempty"`
	Kind        string    `bson:"kind"`
	Category    string    `bson:"category"`
	Language    string    `bson:"language"`
	From404     bool      `bson:"from404"`
	ResultCount int       `bson:"resultCount"`
	SearchedAt  time.Time `bson:"searchedAt"`
}

// PingDocument は疎通確認用 pings コレクションのドキュメント。
type PingDocument struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Message   string             `json:"message" bson:"message"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
