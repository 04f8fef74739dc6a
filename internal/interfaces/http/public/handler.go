package public

import (
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	publicapp "github.com/sngm3741/store-directory/api/internal/public/application"
)

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger        *zap.SugaredLogger
	storeQueries  publicapp.StoreQueryService
	sessions      *SessionStore
	sessionSecret []byte
	sessionIssuer string
	sessionTTL    time.Duration
	cookieSecure  bool
	now           func() time.Time
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger        *zap.SugaredLogger
	StoreQueries  publicapp.StoreQueryService
	Sessions      *SessionStore
	SessionSecret []byte
	SessionIssuer string
	SessionTTL    time.Duration
	CookieSecure  bool
	Now           func() time.Time
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	sessions := cfg.Sessions
	if sessions == nil {
		sessions = NewSessionStore(ttl)
	}
	return &Handler{
		logger:        logger,
		storeQueries:  cfg.StoreQueries,
		sessions:      sessions,
		sessionSecret: cfg.SessionSecret,
		sessionIssuer: cfg.SessionIssuer,
		sessionTTL:    ttl,
		cookieSecure:  cfg.CookieSecure,
		now:           now,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.sessionMiddleware)
		r.Get("/stores", h.storeListHandler())
		r.Post("/stores/reset", h.storeResetHandler())
		r.Get("/stores/featured", h.featuredStoresHandler())
		r.Get("/stores/search", h.menuItemSearchHandler())
		r.Get("/store/{uri}", h.storeDetailHandler())
		r.Get("/session", h.sessionStateHandler())
	})
}
