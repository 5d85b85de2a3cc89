package handler

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/google/uuid"

	"github.com/edgeengage/oauth-server/internal/api/http/middleware"
	"github.com/edgeengage/oauth-server/internal/logger"
	"github.com/edgeengage/oauth-server/internal/metrics"
	"github.com/edgeengage/oauth-server/internal/model"
	"github.com/edgeengage/oauth-server/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

var consentTemplate = template.Must(template.ParseFS(templatesFS, "templates/consent.html"))

// ConsentAuthorizer turns a consent decision into the client redirect.
type ConsentAuthorizer interface {
	Authorize(ctx context.Context, userID uuid.UUID, req model.ConsentRequest, decision model.Decision) (string, error)
}

// ConsentTickets binds the rendered consent form to the user it was shown to.
type ConsentTickets interface {
	Issue(userID uuid.UUID, req model.ConsentRequest) (string, error)
	Verify(ticket string, userID uuid.UUID) (model.ConsentRequest, error)
}

type consentPage struct {
	ClientID    string
	RedirectURI string
	Scopes      []string
	Ticket      string
	Error       string
}

// Consent serves the browser-facing consent page.
type Consent struct {
	authorizer     ConsentAuthorizer
	tickets        ConsentTickets
	contextManager model.ContextManager
	metrics        *metrics.Metrics
	logger         *logger.Logger
}

// NewConsent creates a new Consent handler.
func NewConsent(
	authorizer ConsentAuthorizer,
	tickets ConsentTickets,
	contextManager model.ContextManager,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Consent {
	return &Consent{
		authorizer:     authorizer,
		tickets:        tickets,
		contextManager: contextManager,
		metrics:        metrics,
		logger:         logger,
	}
}

// Show handles GET /oauth/consent.
func (h *Consent) Show(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.LoginURL(r.URL.RequestURI()), http.StatusFound)
		return
	}

	q := r.URL.Query()
	req := model.ConsentRequest{
		ClientID:     q.Get("client_id"),
		RedirectURI:  q.Get("redirect_uri"),
		Scope:        q.Get("scope"),
		State:        q.Get("state"),
		ResponseType: q.Get("response_type"),
	}
	if req.Scope == "" {
		req.Scope = model.DefaultScope
	}
	if req.ResponseType == "" {
		req.ResponseType = model.ResponseTypeCode
	}

	if err := service.ValidateConsentRequest(req); err != nil {
		h.renderError(w, err)
		return
	}

	ticket, err := h.tickets.Issue(userID, req)
	if err != nil {
		h.logger.Error("Consent handler: failed to issue consent ticket",
			"user_id", userID,
			"client_id", req.ClientID,
			"error", err.Error())
		h.renderError(w, model.NewOAuthError(model.ServerError, "Failed to prepare authorization request"))
		return
	}

	h.render(w, http.StatusOK, consentPage{
		ClientID:    req.ClientID,
		RedirectURI: req.RedirectURI,
		Scopes:      model.ParseScope(req.Scope).Descriptions(),
		Ticket:      ticket,
	})
}

// Decide handles POST /oauth/consent.
func (h *Consent) Decide(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		h.render(w, http.StatusUnauthorized, consentPage{Error: "Your session has expired. Please sign in again."})
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderError(w, model.NewOAuthError(model.InvalidRequest, "Invalid consent form"))
		return
	}

	decision, ok := model.ParseDecision(r.PostForm.Get("decision"))
	if !ok {
		h.renderError(w, model.NewOAuthError(model.InvalidRequest, "Invalid consent decision"))
		return
	}

	req, err := h.tickets.Verify(r.PostForm.Get("ticket"), userID)
	if err != nil {
		h.logger.Warn("Consent handler: rejected consent ticket",
			"user_id", userID,
			"error", err.Error())
		h.renderError(w, model.NewOAuthError(model.InvalidRequest, "Invalid or expired authorization request"))
		return
	}

	target, err := h.authorizer.Authorize(r.Context(), userID, req, decision)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.metrics.Authorizations.WithLabelValues(decision.String()).Inc()
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Consent) renderError(w http.ResponseWriter, err error) {
	oauthErr := asOAuthError(err)
	status := http.StatusBadRequest
	if oauthErr.Kind == model.ServerError {
		status = http.StatusInternalServerError
	}
	h.render(w, status, consentPage{Error: oauthErr.Description})
}

func (h *Consent) render(w http.ResponseWriter, status int, page consentPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := consentTemplate.Execute(w, page); err != nil {
		h.logger.Error("Consent handler: failed to render page",
			"error", err.Error())
	}
}
