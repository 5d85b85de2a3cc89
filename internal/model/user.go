package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore resolves user profiles.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
}

// User represents a user profile as exposed to OAuth clients.
type User struct {
	ID          uuid.UUID
	Email       string
	FullName    *string
	AvatarURL   *string
	PhoneNumber *string
	Role        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserInfo holds the claims returned from the userinfo endpoint.
type UserInfo struct {
	Sub         string  `json:"sub"`
	Email       string  `json:"email"`
	Name        *string `json:"name,omitempty"`
	Picture     *string `json:"picture,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}
