package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"
)

// CookieName is the HttpOnly cookie that carries the signed handle.
const CookieName = "session"

// TokenCodec signs a handle into a cookie value and back. *auth.TokenService
// satisfies it.
type TokenCodec interface {
	GenerateWithDuration(subject string, d time.Duration) (string, error)
	Validate(token string) (string, error)
}

// Manager binds a Store to the cookie transport.
type Manager struct {
	store  Store
	tokens TokenCodec
	ttl    time.Duration
	secure bool
	logger *slog.Logger
}

// NewManager creates a Manager. ttl bounds both the store slot and the
// cookie; secure sets the cookie's Secure flag (turn it on behind HTTPS).
func NewManager(store Store, tokens TokenCodec, ttl time.Duration, secure bool, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		tokens: tokens,
		ttl:    ttl,
		secure: secure,
		logger: logger,
	}
}

// Store returns the underlying store, for services that clear slots.
func (m *Manager) Store() Store {
	return m.store
}

// Establish stores p under a fresh handle and sets the session cookie.
// It does not touch any slot the request already had; callers that replace
// a session delete the old handle first.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, p Principal) error {
	if p.IsAnonymous() {
		return errors.New("session: cannot establish an anonymous session")
	}

	handle := xid.New().String()
	if err := m.store.Set(ctx, handle, p, m.ttl); err != nil {
		return fmt.Errorf("session: storing principal: %w", err)
	}

	token, err := m.tokens.GenerateWithDuration(handle, m.ttl)
	if err != nil {
		_ = m.store.Delete(ctx, handle)
		return fmt.Errorf("session: signing handle: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Load resolves r's cookie to a handle and principal. Any failure (no
// cookie, bad signature, unknown or expired slot) yields an empty handle and
// the anonymous principal.
func (m *Manager) Load(r *http.Request) (string, Principal) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", Anonymous()
	}

	handle, err := m.tokens.Validate(cookie.Value)
	if err != nil {
		m.logger.Debug("session cookie rejected", slog.String("error", err.Error()))
		return "", Anonymous()
	}

	p, err := m.store.Get(r.Context(), handle)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			m.logger.Warn("session lookup failed", slog.String("error", err.Error()))
		}
		return "", Anonymous()
	}
	return handle, p
}

// Middleware attaches the caller's principal (and handle, if any) to the
// request context. It never rejects a request; use auth.RequireUser or
// auth.RequireAdmin for that.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle, p := m.Load(r)
		ctx := NewContext(r.Context(), p)
		if handle != "" {
			ctx = WithHandle(ctx, handle)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClearCookie expires the session cookie on the client.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
