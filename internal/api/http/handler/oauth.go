package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/edgeengage/oauth-server/internal/logger"
	"github.com/edgeengage/oauth-server/internal/metrics"
	"github.com/edgeengage/oauth-server/internal/model"
)

// TokenExchanger redeems authorization codes.
type TokenExchanger interface {
	Exchange(ctx context.Context, req model.TokenRequest) (model.TokenResponse, error)
}

// TokenIntrospector resolves and revokes bearer tokens.
type TokenIntrospector interface {
	UserInfo(ctx context.Context, accessToken string) (model.UserInfo, error)
	Revoke(ctx context.Context, token string) error
}

// OAuth serves the machine-facing OAuth endpoints. Every response is JSON.
type OAuth struct {
	exchanger    TokenExchanger
	introspector TokenIntrospector
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

// NewOAuth creates a new OAuth handler.
func NewOAuth(exchanger TokenExchanger, introspector TokenIntrospector, metrics *metrics.Metrics, logger *logger.Logger) *OAuth {
	return &OAuth{
		exchanger:    exchanger,
		introspector: introspector,
		metrics:      metrics,
		logger:       logger,
	}
}

// Token handles POST /api/oauth/token.
func (h *OAuth) Token(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")

	req, err := decodeTokenRequest(r)
	if err != nil {
		h.logger.Debug("OAuth handler: unparseable token request",
			"error", err.Error())
		h.metrics.TokenExchanges.WithLabelValues(model.InvalidRequest.String()).Inc()
		writeOAuthError(w, model.NewOAuthError(model.InvalidRequest, "Invalid request body"))
		return
	}

	resp, err := h.exchanger.Exchange(r.Context(), req)
	if err != nil {
		oauthErr := writeOAuthError(w, err)
		h.metrics.TokenExchanges.WithLabelValues(oauthErr.Kind.String()).Inc()
		return
	}

	h.metrics.TokenExchanges.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, resp)
}

// UserInfo handles GET /api/oauth/userinfo.
func (h *OAuth) UserInfo(w http.ResponseWriter, r *http.Request) {
	accessToken, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		h.metrics.UserInfo.WithLabelValues(model.InvalidToken.String()).Inc()
		writeOAuthError(w, model.NewOAuthError(model.InvalidToken, "Missing or invalid Authorization header"))
		return
	}

	info, err := h.introspector.UserInfo(r.Context(), accessToken)
	if err != nil {
		oauthErr := writeOAuthError(w, err)
		h.metrics.UserInfo.WithLabelValues(oauthErr.Kind.String()).Inc()
		return
	}

	h.metrics.UserInfo.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, info)
}

// Revoke handles POST /api/oauth/revoke. Unknown tokens are not an error.
func (h *OAuth) Revoke(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, model.NewOAuthError(model.InvalidRequest, "Invalid request body"))
		return
	}

	if err := h.introspector.Revoke(r.Context(), r.PostForm.Get("token")); err != nil {
		writeOAuthError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func decodeTokenRequest(r *http.Request) (model.TokenRequest, error) {
	var req model.TokenRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("failed to parse form: %w", err)
		}
		req.GrantType = r.PostForm.Get("grant_type")
		req.Code = r.PostForm.Get("code")
		req.ClientID = r.PostForm.Get("client_id")
		req.ClientSecret = r.PostForm.Get("client_secret")
		req.RedirectURI = r.PostForm.Get("redirect_uri")
		return req, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("failed to decode json: %w", err)
	}
	return req, nil
}

// bearerToken extracts the token of a "Bearer <token>" header. The scheme is
// matched case-insensitively.
func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
