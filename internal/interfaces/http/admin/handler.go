package admin

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	publicapp "github.com/sngm3741/store-directory/api/internal/public/application"
)

// Handler wires admin HTTP endpoints to application services.
type Handler struct {
	logger       *zap.SugaredLogger
	storeQueries publicapp.StoreQueryService
}

// Config provides dependencies for Handler.
type Config struct {
	Logger       *zap.SugaredLogger
	StoreQueries publicapp.StoreQueryService
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{
		logger:       logger,
		storeQueries: cfg.StoreQueries,
	}
}

// Register mounts admin routes onto router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/searches", h.searchListHandler())
	r.Get("/searches/summary", h.searchSummaryHandler())
}
