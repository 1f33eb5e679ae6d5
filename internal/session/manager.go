package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/roomeasy-api/internal/logger"
	"github.com/yourorg/roomeasy-api/internal/model"
)

type Config struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
}

type Manager struct {
	store Store
	cfg   Config
	now   func() time.Time
}

func NewManager(s Store, cfg Config) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "roomeasy_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	return &Manager{store: s, cfg: cfg, now: time.Now}
}

type ctxKey struct{}

// Middleware loads the visitor's session into the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.Load(r)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

// From returns the session loaded by Middleware, or a fresh one.
func From(r *http.Request) model.ViewerSession {
	if sess, ok := r.Context().Value(ctxKey{}).(model.ViewerSession); ok {
		return sess
	}
	return model.ViewerSession{ID: uuid.NewString()}
}

// Load reads the session named by the request cookie. A missing cookie,
// unknown id or store failure yields a fresh anonymous session.
func (m *Manager) Load(r *http.Request) model.ViewerSession {
	c, err := r.Cookie(m.cfg.CookieName)
	if err != nil || uuid.Validate(c.Value) != nil {
		return model.ViewerSession{ID: uuid.NewString()}
	}
	sess, err := m.store.Load(r.Context(), c.Value)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Ctx(r.Context()).Warn().Err(err).Msg("session load failed")
		}
		return model.ViewerSession{ID: uuid.NewString()}
	}
	sess.ID = c.Value
	return sess
}

func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, sess model.ViewerSession) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	sess.UpdatedAt = m.now()
	if err := m.store.Save(ctx, sess); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL / time.Second),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Renew moves the session to a new id, keeping its contents. Called on
// login so a pre-auth id never becomes an authenticated one.
func (m *Manager) Renew(ctx context.Context, w http.ResponseWriter, sess model.ViewerSession) (model.ViewerSession, error) {
	old := sess.ID
	sess.ID = uuid.NewString()
	if err := m.Save(ctx, w, sess); err != nil {
		return sess, err
	}
	if old != "" {
		if err := m.store.Delete(ctx, old); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("delete superseded session")
		}
	}
	return sess, nil
}

// Clear deletes the session and expires the cookie.
func (m *Manager) Clear(ctx context.Context, w http.ResponseWriter, sess model.ViewerSession) error {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	if sess.ID == "" {
		return nil
	}
	return m.store.Delete(ctx, sess.ID)
}
