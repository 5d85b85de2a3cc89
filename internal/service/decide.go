package service

import (
	"net/url"
	"strings"

	"github.com/edgeengage/oauth-server/internal/model"
)

// DeniedFallbackURL is where a denial without a redirect URI lands.
const DeniedFallbackURL = "/"

const deniedDescription = "User denied access"

// Decide computes where the user agent goes after answering a consent request.
// code is the already-issued authorization code and is only read on approval.
func Decide(req model.ConsentRequest, decision model.Decision, code string) (string, error) {
	if decision == model.DecisionDeny {
		if req.RedirectURI == "" {
			return DeniedFallbackURL, nil
		}
		if err := validateRedirectURI(req.RedirectURI); err != nil {
			return "", err
		}
		return withQuery(req.RedirectURI,
			"error", model.AccessDenied.String(),
			"error_description", deniedDescription,
			"state", req.State,
		), nil
	}

	if err := ValidateConsentRequest(req); err != nil {
		return "", err
	}

	if req.ResponseType != model.ResponseTypeCode {
		return withQuery(req.RedirectURI,
			"error", model.UnsupportedResponseType.String(),
			"error_description", "Only the code response type is supported",
			"state", req.State,
		), nil
	}

	return withQuery(req.RedirectURI,
		"code", code,
		"state", req.State,
	), nil
}

// ValidateConsentRequest checks the parameters that must be present before any
// redirect to the client may happen.
func ValidateConsentRequest(req model.ConsentRequest) error {
	if req.ClientID == "" || req.RedirectURI == "" {
		return model.NewOAuthError(model.InvalidRequest, "Missing required OAuth parameters")
	}
	return validateRedirectURI(req.RedirectURI)
}

func validateRedirectURI(redirectURI string) error {
	u, err := url.Parse(redirectURI)
	if err != nil || !u.IsAbs() {
		return model.NewOAuthError(model.InvalidRequest, "Invalid redirect_uri")
	}
	return nil
}

// withQuery appends key/value pairs to base in order, skipping empty values.
// Spaces are encoded as %20.
func withQuery(base string, kv ...string) string {
	var b strings.Builder
	b.WriteString(base)

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}

	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		b.WriteString(sep)
		b.WriteString(queryEscape(kv[i]))
		b.WriteByte('=')
		b.WriteString(queryEscape(kv[i+1]))
		sep = "&"
	}

	return b.String()
}

func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
