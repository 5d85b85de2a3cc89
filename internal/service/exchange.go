package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/edgeengage/oauth-server/internal/logger"
	"github.com/edgeengage/oauth-server/internal/model"
	"github.com/edgeengage/oauth-server/internal/token"
)

// GrantTypeAuthorizationCode is the only grant the token endpoint accepts.
const GrantTypeAuthorizationCode = "authorization_code"

// Exchanger redeems authorization codes for access/refresh token pairs.
type Exchanger struct {
	store     model.AuthorizationStore
	accessTTL time.Duration
	validate  *validator.Validate
	logger    *logger.Logger
	now       func() time.Time
	newSecret func() (string, error)
}

func NewExchanger(store model.AuthorizationStore, accessTTL time.Duration, logger *logger.Logger) *Exchanger {
	if accessTTL <= 0 {
		accessTTL = model.DefaultAccessTokenTTL
	}
	return &Exchanger{
		store:     store,
		accessTTL: accessTTL,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
		newSecret: token.NewOpaque,
	}
}

// Exchange validates req and, if the code is live and unused, mints a token pair.
// Only one caller can ever succeed for a given code. Errors are *model.OAuthError.
func (s *Exchanger) Exchange(ctx context.Context, req model.TokenRequest) (model.TokenResponse, error) {
	if req.GrantType != GrantTypeAuthorizationCode {
		return model.TokenResponse{}, model.NewOAuthError(model.UnsupportedGrantType,
			"Only authorization_code grant type is supported")
	}

	if err := s.validate.Struct(req); err != nil {
		return model.TokenResponse{}, model.NewOAuthError(model.InvalidRequest, "Missing required parameters")
	}

	authorization, err := s.store.GetByCode(ctx, token.Hash(req.Code), req.ClientID, req.RedirectURI)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.TokenResponse{}, model.NewOAuthError(model.InvalidGrant,
				"Invalid or expired authorization code")
		}
		s.logger.Error("Exchanger: failed to look up authorization code",
			"client_id", req.ClientID,
			"error", err.Error())
		return model.TokenResponse{}, model.NewOAuthError(model.ServerError, "An unexpected error occurred")
	}

	now := s.now()

	if authorization.Expired(now) {
		if err := s.store.Delete(ctx, authorization.ID); err != nil {
			s.logger.Warn("Exchanger: failed to delete expired authorization",
				"authorization_id", authorization.ID,
				"error", err.Error())
		}
		return model.TokenResponse{}, model.NewOAuthError(model.InvalidGrant, "Authorization code has expired")
	}

	if authorization.Used {
		s.logger.Warn("Exchanger: authorization code replayed",
			"authorization_id", authorization.ID,
			"client_id", req.ClientID)
		return model.TokenResponse{}, model.NewOAuthError(model.InvalidGrant,
			"Authorization code has already been used")
	}

	accessToken, refreshToken, err := s.newPair()
	if err != nil {
		s.logger.Error("Exchanger: failed to generate tokens", "error", err.Error())
		return model.TokenResponse{}, model.NewOAuthError(model.ServerError, "Failed to generate access token")
	}

	issued := model.AccessToken{
		ID:               uuid.New(),
		UserID:           authorization.UserID,
		ClientID:         req.ClientID,
		AccessTokenHash:  token.Hash(accessToken),
		RefreshTokenHash: token.Hash(refreshToken),
		Scope:            authorization.Scope,
		ExpiresAt:        now.Add(s.accessTTL),
	}

	if err := s.store.Redeem(ctx, authorization.ID, now, issued); err != nil {
		if errors.Is(err, model.ErrCodeAlreadyUsed) {
			s.logger.Warn("Exchanger: authorization code redeemed concurrently",
				"authorization_id", authorization.ID,
				"client_id", req.ClientID)
			return model.TokenResponse{}, model.NewOAuthError(model.InvalidGrant,
				"Authorization code has already been used")
		}
		s.logger.Error("Exchanger: failed to store tokens",
			"authorization_id", authorization.ID,
			"error", err.Error())
		return model.TokenResponse{}, model.NewOAuthError(model.ServerError, "Failed to generate access token")
	}

	s.logger.Info("Exchanger: authorization code redeemed",
		"authorization_id", authorization.ID,
		"user_id", authorization.UserID,
		"client_id", req.ClientID)

	return model.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    model.TokenTypeBearer,
		ExpiresIn:    int64(s.accessTTL / time.Second),
		RefreshToken: refreshToken,
		Scope:        authorization.Scope,
	}, nil
}

func (s *Exchanger) newPair() (string, string, error) {
	access, err := s.newSecret()
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.newSecret()
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}
	return access, refresh, nil
}
