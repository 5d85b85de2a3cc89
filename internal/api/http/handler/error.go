package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edgeengage/oauth-server/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// asOAuthError maps any service error to the OAuth error it is reported as.
func asOAuthError(err error) *model.OAuthError {
	var oauthErr *model.OAuthError
	if errors.As(err, &oauthErr) {
		return oauthErr
	}
	return model.NewOAuthError(model.ServerError, "Internal server error")
}

func writeOAuthError(w http.ResponseWriter, err error) *model.OAuthError {
	oauthErr := asOAuthError(err)
	if oauthErr.Kind == model.InvalidToken {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	writeJSON(w, oauthErr.Kind.HTTPStatus(), oauthErr.Response())
	return oauthErr
}
