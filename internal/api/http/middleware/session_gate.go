package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/edgeengage/oauth-server/internal/logger"
	"github.com/edgeengage/oauth-server/internal/metrics"
	"github.com/edgeengage/oauth-server/internal/model"
)

// Route layout the gate enforces.
const (
	ProtectedPrefix = "/projects"
	LoginPath       = "/login"
	AuthPrefix      = "/auth"
	CallbackPrefix  = "/auth/callback"
	LandingPath     = "/projects"
)

// SessionGate resolves the browser session on every request, exposes the user id
// to downstream handlers and redirects between protected and sign-in routes.
type SessionGate struct {
	sessions       model.SessionStore
	cookieName     string
	contextManager model.ContextManager
	metrics        *metrics.Metrics
	logger         *logger.Logger
}

// NewSessionGate creates a new SessionGate middleware instance.
func NewSessionGate(
	sessions model.SessionStore,
	cookieName string,
	contextManager model.ContextManager,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *SessionGate {
	return &SessionGate{
		sessions:       sessions,
		cookieName:     cookieName,
		contextManager: contextManager,
		metrics:        metrics,
		logger:         logger,
	}
}

// Handle wraps next with the gate.
func (g *SessionGate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasSession := false
		if userID, ok := g.resolve(r); ok {
			hasSession = true
			r = r.WithContext(g.contextManager.SetUserIDToContext(r.Context(), userID))
		}

		if target, redirect := GateDecision(r.URL.Path, hasSession); redirect {
			g.metrics.GateRedirects.WithLabelValues(redirectLabel(target)).Inc()
			http.Redirect(w, r, target, http.StatusTemporaryRedirect)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GateDecision returns the redirect target for a request to path, if any.
func GateDecision(path string, hasSession bool) (string, bool) {
	isProtected := strings.HasPrefix(path, ProtectedPrefix)
	isAuth := strings.HasPrefix(path, LoginPath) || strings.HasPrefix(path, AuthPrefix)

	if isProtected && !hasSession {
		return LoginURL(path), true
	}

	if isAuth && hasSession && !strings.HasPrefix(path, CallbackPrefix) {
		return LandingPath, true
	}

	return "", false
}

// LoginURL is the sign-in page that returns to returnTo afterwards.
func LoginURL(returnTo string) string {
	return LoginPath + "?" + url.Values{"redirect": []string{returnTo}}.Encode()
}

func (g *SessionGate) resolve(r *http.Request) (uuid.UUID, bool) {
	cookie, err := r.Cookie(g.cookieName)
	if err != nil || cookie.Value == "" {
		return uuid.Nil, false
	}

	userID, err := g.sessions.GetUserID(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			g.logger.Error("SessionGate: failed to resolve session",
				"path", r.URL.Path,
				"error", err.Error())
		}
		return uuid.Nil, false
	}

	return userID, true
}

func redirectLabel(target string) string {
	if strings.HasPrefix(target, LoginPath) {
		return "login"
	}
	return "landing"
}
