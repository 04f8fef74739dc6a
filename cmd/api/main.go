package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/store-directory/api/internal/config"
	"github.com/sngm3741/store-directory/api/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env を読み込めませんでした (環境変数のみを使用します): %v", err)
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		cfg.ServerLog.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}

	app, err := server.New(cfg, client)
	if err != nil {
		cfg.ServerLog.Fatalf("サーバーの初期化に失敗: %v", err)
	}
	if err := app.Run(); err != nil {
		cfg.ServerLog.Fatalf("サーバー起動に失敗: %v", err)
	}
}
