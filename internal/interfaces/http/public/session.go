package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sngm3741/store-directory/api/internal/interfaces/http/common"
	publicapp "github.com/sngm3741/store-directory/api/internal/public/application"
)

// session owns the query builder of one UI session. mu serializes every call on builder.
type session struct {
	mu       sync.Mutex
	builder  *publicapp.StoreQueryBuilder
	lastSeen time.Time
}

// SessionStore keeps one StoreQueryBuilder per UI session and forgets idle sessions.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
}

// NewSessionStore creates an empty store whose sessions expire after ttl of inactivity.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{sessions: make(map[string]*session), ttl: ttl}
}

func (s *SessionStore) get(id string, now time.Time) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || now.Sub(sess.lastSeen) > s.ttl {
		sess = &session{builder: publicapp.NewStoreQueryBuilder()}
		s.sessions[id] = sess
	}
	sess.lastSeen = now
	return sess
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many were removed.
func (s *SessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done.
func (s *SessionStore) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := s.Sweep(now); removed > 0 && onSweep != nil {
				onSweep(removed)
			}
		}
	}
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// sessionMiddleware resolves the session id from the signed cookie, issuing a new
// session when the cookie is missing, tampered or expired.
func (h *Handler) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := h.now()
		id := ""
		var expiresAt time.Time
		if cookie, err := r.Cookie(common.SessionCookieName); err == nil {
			claims, err := h.parseSessionToken(cookie.Value, now)
			if err == nil {
				id = claims.Subject
				if claims.ExpiresAt != nil {
					expiresAt = claims.ExpiresAt.Time
				}
			} else {
				h.logger.Debugf("セッショントークンを破棄します: %v", err)
			}
		}

		if id == "" {
			id = uuid.NewString()
		}
		// sliding expiry: refresh the cookie once half its lifetime has passed
		if expiresAt.IsZero() || expiresAt.Sub(now) < h.sessionTTL/2 {
			if err := h.issueSessionCookie(w, id, now); err != nil {
				h.logger.Errorf("セッショントークンの発行に失敗: %v", err)
				common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "セッションを開始できませんでした"})
				return
			}
		}

		ctx := common.ContextWithSessionID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) issueSessionCookie(w http.ResponseWriter, id string, now time.Time) error {
	claims := sessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   id,
		Issuer:    h.sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.sessionTTL)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.sessionSecret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessionTTL / time.Second),
	})
	return nil
}

// parseSessionToken verifies the HS256 signature, issuer and expiry of a session token.
func (h *Handler) parseSessionToken(tokenString string, now time.Time) (*sessionClaims, error) {
	if len(h.sessionSecret) == 0 {
		return nil, errors.New("session secret not configured")
	}
	claims := &sessionClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if h.sessionIssuer != "" {
		opts = append(opts, jwt.WithIssuer(h.sessionIssuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return h.sessionSecret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}
	return claims, nil
}

// withBuilder runs fn with exclusive access to the request session's builder.
func (h *Handler) withBuilder(r *http.Request, fn func(sessionID string, b *publicapp.StoreQueryBuilder) error) error {
	id, ok := common.SessionIDFromContext(r.Context())
	if !ok {
		return errors.New("session missing from request context")
	}
	sess := h.sessions.get(id, h.now())
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(id, sess.builder)
}
