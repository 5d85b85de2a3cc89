package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edgeengage/oauth-server/internal/logger"
	"github.com/edgeengage/oauth-server/internal/model"
	"github.com/edgeengage/oauth-server/internal/token"
)

// Authorizer issues authorization codes for approved consent requests.
type Authorizer struct {
	store     model.AuthorizationStore
	codeTTL   time.Duration
	logger    *logger.Logger
	now       func() time.Time
	newSecret func() (string, error)
}

func NewAuthorizer(store model.AuthorizationStore, codeTTL time.Duration, logger *logger.Logger) *Authorizer {
	if codeTTL <= 0 {
		codeTTL = model.DefaultAuthorizationCodeTTL
	}
	return &Authorizer{
		store:     store,
		codeTTL:   codeTTL,
		logger:    logger,
		now:       time.Now,
		newSecret: token.NewOpaque,
	}
}

// Authorize records the user's decision and returns the URL to redirect to.
// Errors are *model.OAuthError; none of them carry a redirect.
func (a *Authorizer) Authorize(ctx context.Context, userID uuid.UUID, req model.ConsentRequest, decision model.Decision) (string, error) {
	if decision == model.DecisionDeny {
		a.logger.Info("Authorizer: consent denied",
			"user_id", userID,
			"client_id", req.ClientID)
		return Decide(req, decision, "")
	}

	if err := ValidateConsentRequest(req); err != nil {
		return "", err
	}
	if req.ResponseType != model.ResponseTypeCode {
		return Decide(req, decision, "")
	}

	code, err := a.issueCode(ctx, userID, req)
	if err != nil {
		a.logger.Error("Authorizer: failed to issue authorization code",
			"user_id", userID,
			"client_id", req.ClientID,
			"error", err.Error())
		return "", model.NewOAuthError(model.ServerError, "Failed to grant authorization")
	}

	a.logger.Info("Authorizer: authorization code issued",
		"user_id", userID,
		"client_id", req.ClientID,
		"scope", req.Scope)

	return Decide(req, decision, code)
}

func (a *Authorizer) issueCode(ctx context.Context, userID uuid.UUID, req model.ConsentRequest) (string, error) {
	code, err := a.newSecret()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	scope := req.Scope
	if scope == "" {
		scope = model.DefaultScope
	}

	authorization := model.AuthorizationCode{
		ID:          uuid.New(),
		UserID:      userID,
		ClientID:    req.ClientID,
		Scope:       scope,
		CodeHash:    token.Hash(code),
		RedirectURI: req.RedirectURI,
		ExpiresAt:   a.now().Add(a.codeTTL),
	}
	if err := a.store.Create(ctx, authorization); err != nil {
		return "", fmt.Errorf("persist authorization: %w", err)
	}

	return code, nil
}
