package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/edgeengage/oauth-server/internal/api/http/handler"
	"github.com/edgeengage/oauth-server/internal/api/http/middleware"
	"github.com/edgeengage/oauth-server/internal/logger"
	"github.com/edgeengage/oauth-server/internal/metrics"
	"github.com/edgeengage/oauth-server/internal/model"
)

// Router wires the HTTP surface of the authorization server.
type Router struct {
	oauth          *handler.OAuth
	consent        *handler.Consent
	health         *handler.Health
	sessions       model.SessionStore
	cookieName     string
	contextManager model.ContextManager
	metrics        *metrics.Metrics
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	oauth *handler.OAuth,
	consent *handler.Consent,
	health *handler.Health,
	sessions model.SessionStore,
	cookieName string,
	contextManager model.ContextManager,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Router {
	return &Router{
		oauth:          oauth,
		consent:        consent,
		health:         health,
		sessions:       sessions,
		cookieName:     cookieName,
		contextManager: contextManager,
		metrics:        metrics,
		logger:         logger,
	}
}

// Register builds the handler tree. The session gate runs on every request.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger, r.metrics)
	gate := middleware.NewSessionGate(r.sessions, r.cookieName, r.contextManager, r.metrics, r.logger)

	mux := chi.NewRouter()
	mux.Use(
		chimw.RequestID,
		chimw.RealIP,
		logging.Handle,
		chimw.Recoverer,
		gate.Handle,
	)

	mux.Method(http.MethodGet, "/healthz", r.health)
	mux.Method(http.MethodGet, "/metrics", r.metrics.Handler())

	mux.Route("/api/oauth", func(api chi.Router) {
		api.Post("/token", r.oauth.Token)
		api.Get("/userinfo", r.oauth.UserInfo)
		api.Post("/revoke", r.oauth.Revoke)
	})

	mux.Get("/oauth/consent", r.consent.Show)
	mux.Post("/oauth/consent", r.consent.Decide)

	return mux
}
