package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/edgeengage/oauth-server/internal/model"
)

// ErrTicketUserMismatch is returned when a ticket is presented by another user.
var ErrTicketUserMismatch = errors.New("consent ticket issued to another user")

const typeConsent = "consent"

// ConsentClaims binds a consent request to the user it was shown to.
type ConsentClaims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID            `json:"user_id"`
	TokenType string               `json:"typ"`
	Request   model.ConsentRequest `json:"req"`
}

// ConsentTickets signs and verifies the hidden form field of the consent page,
// so a POST can only approve a request the same user was actually shown.
type ConsentTickets struct {
	secretKey string
	ttl       time.Duration
}

// NewConsentTickets creates a ticket signer using HMAC with secretKey.
func NewConsentTickets(secretKey string, ttl time.Duration) *ConsentTickets {
	return &ConsentTickets{secretKey: secretKey, ttl: ttl}
}

// Issue signs req for userID.
func (c *ConsentTickets) Issue(userID uuid.UUID, req model.ConsentRequest) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, ConsentClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UserID:    userID,
		TokenType: typeConsent,
		Request:   req,
	})

	s, err := t.SignedString([]byte(c.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign consent ticket: %w", err)
	}
	return s, nil
}

// Verify checks the ticket signature, expiry and owner, and returns the bound request.
func (c *ConsentTickets) Verify(ticket string, userID uuid.UUID) (model.ConsentRequest, error) {
	claims := &ConsentClaims{}
	t, err := jwt.ParseWithClaims(ticket, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(c.secretKey), nil
	})
	if err != nil {
		return model.ConsentRequest{}, fmt.Errorf("failed to parse consent ticket: %w", err)
	}
	if !t.Valid {
		return model.ConsentRequest{}, fmt.Errorf("consent ticket is invalid")
	}
	if claims.TokenType != typeConsent {
		return model.ConsentRequest{}, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	if claims.UserID != userID {
		return model.ConsentRequest{}, ErrTicketUserMismatch
	}
	return claims.Request, nil
}
