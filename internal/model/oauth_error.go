package model

import (
	"fmt"
	"net/http"
)

// OAuthErrorKind enumerates the error codes the authorization server emits.
type OAuthErrorKind int

const (
	InvalidRequest OAuthErrorKind = iota + 1
	InvalidGrant
	UnsupportedGrantType
	UnsupportedResponseType
	InvalidToken
	ServerError
	AccessDenied
)

// String returns the wire error code.
func (k OAuthErrorKind) String() string {
	switch k {
	case InvalidRequest:
		return "invalid_request"
	case InvalidGrant:
		return "invalid_grant"
	case UnsupportedGrantType:
		return "unsupported_grant_type"
	case UnsupportedResponseType:
		return "unsupported_response_type"
	case InvalidToken:
		return "invalid_token"
	case ServerError:
		return "server_error"
	case AccessDenied:
		return "access_denied"
	default:
		return fmt.Sprintf("OAuthErrorKind(%d)", int(k))
	}
}

// HTTPStatus returns the status code a JSON endpoint answers with.
func (k OAuthErrorKind) HTTPStatus() int {
	switch k {
	case InvalidToken:
		return http.StatusUnauthorized
	case ServerError:
		return http.StatusInternalServerError
	case AccessDenied:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// OAuthError is an error reported to OAuth clients.
type OAuthError struct {
	Kind        OAuthErrorKind
	Description string
}

// NewOAuthError creates an OAuthError of the given kind.
func NewOAuthError(kind OAuthErrorKind, description string) *OAuthError {
	return &OAuthError{Kind: kind, Description: description}
}

func (e *OAuthError) Error() string {
	return e.Kind.String() + ": " + e.Description
}

// OAuthErrorResponse is the JSON body of an OAuth error.
type OAuthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Response converts the error into its wire body.
func (e *OAuthError) Response() OAuthErrorResponse {
	return OAuthErrorResponse{Error: e.Kind.String(), ErrorDescription: e.Description}
}
