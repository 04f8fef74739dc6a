package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/sngm3741/store-directory/api/internal/config"
	"github.com/sngm3741/store-directory/api/internal/graphql"
	"github.com/sngm3741/store-directory/api/internal/infrastructure/cache"
	mongodoc "github.com/sngm3741/store-directory/api/internal/infrastructure/mongo"
	adminhttp "github.com/sngm3741/store-directory/api/internal/interfaces/http/admin"
	publichttp "github.com/sngm3741/store-directory/api/internal/interfaces/http/public"
	publicapp "github.com/sngm3741/store-directory/api/internal/public/application"
)

const sessionSweepInterval = time.Minute

// pinger is satisfied by *mongo.Client.
type pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// pingSource is satisfied by *mongodoc.PingRepository.
type pingSource interface {
	Latest(ctx context.Context) (*mongodoc.PingDocument, error)
	EnsureSample(ctx context.Context, now time.Time) error
}

// Server は HTTP サーバーのライフサイクルを管理し、Public/Admin の各ハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger            *zap.SugaredLogger
	client            *mongo.Client
	mongoPing         pinger
	pings             pingSource
	storeAPI          *graphql.Client
	responseCache     *cache.ResponseCache
	sessions          *publichttp.SessionStore
	storeQueryService publicapp.StoreQueryService
	registry          *prometheus.Registry
	cfg               config.Config
}

// New は Config と Mongo クライアントを受け取り、アプリケーションサービスとハンドラを組み立てた Server を返す。
func New(cfg config.Config, client *mongo.Client) (*Server, error) {
	logger := cfg.ServerLog
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	schema, err := graphql.LoadStoreSchema()
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	storeAPI := graphql.NewClient(graphql.ClientConfig{
		Endpoint:   cfg.StoreAPIURL,
		HTTPClient: &http.Client{Timeout: cfg.StoreAPITimeout},
		Logger:     logger,
		Attempts:   cfg.StoreAPIRetries,
		RetryDelay: cfg.StoreAPIRetryWait,
		Metrics:    graphql.NewMetrics(registry),
	})

	responseCache, err := cache.NewResponseCache(cache.Config{TTL: cfg.CacheTTL, MaxCost: cfg.CacheMaxCost})
	if err != nil {
		return nil, err
	}

	database := client.Database(cfg.MongoDatabase)
	searchRepo := mongodoc.NewSearchLogRepository(database, cfg.SearchCollection)

	srv := &Server{
		logger:        logger,
		client:        client,
		mongoPing:     client,
		pings:         mongodoc.NewPingRepository(database, cfg.PingCollection),
		storeAPI:      storeAPI,
		responseCache: responseCache,
		sessions:      publichttp.NewSessionStore(cfg.SessionTTL),
		registry:      registry,
		cfg:           cfg,
	}
	srv.storeQueryService = publicapp.NewStoreQueryService(publicapp.StoreQueryServiceConfig{
		Executor:  storeAPI,
		Validator: schema,
		Cache:     responseCache,
		Searches:  searchRepo,
		Logger:    logger,
	})
	return srv, nil
}

// Run はHTTPサーバーを起動し、シグナルを受けるまでブロックする。
func (s *Server) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := s.pings.EnsureSample(ctx, time.Now()); err != nil {
		s.logger.Warnf("サンプル ping ドキュメントの用意に失敗しました: %v", err)
	}
	cancel()

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go s.sessions.RunSweeper(sweepCtx, sessionSweepInterval, func(removed int) {
		s.logger.Debugf("期限切れセッションを削除しました count=%d", removed)
	})

	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Infof("HTTP サーバー起動: http://%s", s.cfg.Addr)
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(httpServer, errChan, s)
}

// routes はミドルウェアと Public/Admin のルーティングを組み立てる。
func (s *Server) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.cfg.AllowedOrigins))

	router.Get("/healthz", s.healthHandler())
	router.Get("/ping", s.pingHandler())
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:        s.logger,
		StoreQueries:  s.storeQueryService,
		Sessions:      s.sessions,
		SessionSecret: s.cfg.SessionSecret,
		SessionIssuer: s.cfg.SessionIssuer,
		SessionTTL:    s.cfg.SessionTTL,
		CookieSecure:  s.cfg.SessionSecure,
	})
	publicHandler.Register(router)

	adminHandler := adminhttp.NewHandler(adminhttp.Config{
		Logger:       s.logger,
		StoreQueries: s.storeQueryService,
	})
	router.Route("/admin", adminHandler.Register)

	return router
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler は MongoDB への疎通と上流 API の設定有無を返す。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if s.storeAPI.Endpoint() == "" {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  "store api endpoint is not configured",
			})
			return
		}
		if err := s.mongoPing.Ping(ctx, readpref.Primary()); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"storeApi": s.storeAPI.Endpoint(),
			"time":     time.Now().Format(time.RFC3339),
		})
	}
}

// pingHandler は pings コレクションから最新レコードを返す検証用エンドポイント。
func (s *Server) pingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		doc, err := s.pings.Latest(ctx)
		if errors.Is(err, mongodoc.ErrNoPing) {
			s.writeJSON(w, http.StatusNotFound, map[string]string{
				"status":  "not_found",
				"message": "ping コレクションにドキュメントが存在しません",
			})
			return
		}
		if err != nil {
			s.logger.Errorf("ping コレクションのドキュメント取得に失敗: %v", err)
			s.writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "ping コレクションのドキュメント取得に失敗しました",
			})
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]any{
			"message":   doc.Message,
			"createdAt": doc.CreatedAt,
			"id":        doc.ID.Hex(),
		})
	}
}

// writeJSON は JSON レスポンスの共通書き込み処理。
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Errorf("JSON エンコードに失敗: %v", err)
	}
}

// shutdown はキャッシュと MongoDB クライアントを解放する。
func (s *Server) shutdown(ctx context.Context) {
	s.responseCache.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Errorf("MongoDB 切断時にエラー: %v", err)
	}
	_ = s.logger.Sync()
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("サーバーが異常終了: %w", err)
		}
	case sig := <-sigChan:
		srv.logger.Infof("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Errorf("サーバー停止時にエラー: %v", err)
		}
	}

	srv.shutdown(context.Background())
	return runErr
}
