package service

import (
	"context"
	"errors"
	"time"

	"github.com/edgeengage/oauth-server/internal/logger"
	"github.com/edgeengage/oauth-server/internal/model"
	"github.com/edgeengage/oauth-server/internal/token"
)

// Introspector resolves bearer access tokens to scoped user claims and revokes tokens.
type Introspector struct {
	tokens model.TokenStore
	users  model.UserStore
	logger *logger.Logger
	now    func() time.Time
}

func NewIntrospector(tokens model.TokenStore, users model.UserStore, logger *logger.Logger) *Introspector {
	return &Introspector{
		tokens: tokens,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// UserInfo returns the claims the token's scope grants. Errors are *model.OAuthError.
func (s *Introspector) UserInfo(ctx context.Context, accessToken string) (model.UserInfo, error) {
	if accessToken == "" {
		return model.UserInfo{}, model.NewOAuthError(model.InvalidToken, "Missing or invalid Authorization header")
	}

	t, err := s.tokens.GetByAccessToken(ctx, token.Hash(accessToken))
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.logger.Error("Introspector: failed to look up access token", "error", err.Error())
		}
		return model.UserInfo{}, model.NewOAuthError(model.InvalidToken, "Invalid access token")
	}

	if t.RevokedAt != nil {
		return model.UserInfo{}, model.NewOAuthError(model.InvalidToken, "Invalid access token")
	}

	if t.Expired(s.now()) {
		return model.UserInfo{}, model.NewOAuthError(model.InvalidToken, "Access token has expired")
	}

	user, err := s.users.GetByID(ctx, t.UserID)
	if err != nil {
		s.logger.Error("Introspector: token references unknown user",
			"user_id", t.UserID,
			"token_id", t.ID,
			"error", err.Error())
		return model.UserInfo{}, model.NewOAuthError(model.ServerError, "Failed to retrieve user information")
	}

	return ScopedClaims(user, model.ParseScope(t.Scope)), nil
}

// ScopedClaims builds the userinfo claims a scope set may see.
func ScopedClaims(user model.User, scopes model.ScopeSet) model.UserInfo {
	info := model.UserInfo{
		Sub:   user.ID.String(),
		Email: user.Email,
	}

	if scopes.Has(model.ScopeProfile, model.ScopeRead) {
		info.Name = user.FullName
		info.Picture = user.AvatarURL
	}

	if scopes.Has(model.ScopePhone) {
		info.PhoneNumber = user.PhoneNumber
	}

	return info
}

// Revoke invalidates the access/refresh pair containing presented. Unknown tokens
// are not an error.
func (s *Introspector) Revoke(ctx context.Context, presented string) error {
	if presented == "" {
		return model.NewOAuthError(model.InvalidRequest, "Missing token parameter")
	}

	revoked, err := s.tokens.Revoke(ctx, token.Hash(presented), s.now())
	if err != nil {
		s.logger.Error("Introspector: failed to revoke token", "error", err.Error())
		return model.NewOAuthError(model.ServerError, "Failed to revoke token")
	}

	s.logger.Info("Introspector: revocation processed", "revoked", revoked)
	return nil
}
