package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpctx "github.com/edgeengage/oauth-server/internal/api/http/context"
	"github.com/edgeengage/oauth-server/internal/metrics"
	"github.com/edgeengage/oauth-server/internal/mocks"
	"github.com/edgeengage/oauth-server/internal/model"
	"github.com/edgeengage/oauth-server/internal/service"
	ltestutil "github.com/edgeengage/oauth-server/internal/testutil"
	"github.com/edgeengage/oauth-server/internal/token"
)

var ticketField = regexp.MustCompile(`name="ticket" value="([^"]+)"`)

type consentFixture struct {
	handler *Consent
	store   *mocks.AuthorizationStore
	ctx     *httpctx.Manager
	metrics *metrics.Metrics
	tickets *token.ConsentTickets
}

func newConsentFixture(t *testing.T) consentFixture {
	t.Helper()

	lg := ltestutil.MakeNoopLogger()
	store := mocks.NewAuthorizationStore(t)
	ctxManager := httpctx.NewManager()
	m := metrics.New()
	tickets := token.NewConsentTickets("test-secret", 10*time.Minute)
	authorizer := service.NewAuthorizer(store, 0, lg)

	return consentFixture{
		handler: NewConsent(authorizer, tickets, ctxManager, m, lg),
		store:   store,
		ctx:     ctxManager,
		metrics: m,
		tickets: tickets,
	}
}

func (f consentFixture) signedIn(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(f.ctx.SetUserIDToContext(req.Context(), userID))
}

func postDecision(ticket, decision string) *http.Request {
	form := url.Values{"ticket": {ticket}, "decision": {decision}}
	req := httptest.NewRequest(http.MethodPost, "/oauth/consent", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestConsent_Show_RedirectsAnonymousToLogin(t *testing.T) {
	f := newConsentFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/oauth/consent?client_id=c1&redirect_uri=https%3A%2F%2Fapp%2Fcb", nil)
	rec := httptest.NewRecorder()

	f.handler.Show(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, "/oauth/consent?client_id=c1&redirect_uri=https%3A%2F%2Fapp%2Fcb", loc.Query().Get("redirect"))
}

func TestConsent_Show_InvalidRequest(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantText string
	}{
		{name: "missing client id", query: "redirect_uri=https%3A%2F%2Fapp%2Fcb", wantText: "Missing required OAuth parameters"},
		{name: "missing redirect uri", query: "client_id=c1", wantText: "Missing required OAuth parameters"},
		{name: "relative redirect uri", query: "client_id=c1&redirect_uri=%2Fcb", wantText: "Invalid redirect_uri"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newConsentFixture(t)

			req := f.signedIn(httptest.NewRequest(http.MethodGet, "/oauth/consent?"+tt.query, nil), uuid.New())
			rec := httptest.NewRecorder()

			f.handler.Show(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, rec.Header().Get("Location"))
			assert.Contains(t, rec.Body.String(), tt.wantText)
			assert.NotContains(t, rec.Body.String(), `name="ticket"`)
		})
	}
}

func TestConsent_Show_RendersScopes(t *testing.T) {
	f := newConsentFixture(t)
	userID := uuid.New()

	req := f.signedIn(httptest.NewRequest(http.MethodGet,
		"/oauth/consent?client_id=c1&redirect_uri=https%3A%2F%2Fapp%2Fcb&scope=profile+custom", nil), userID)
	rec := httptest.NewRecorder()

	f.handler.Show(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "c1")
	assert.Contains(t, body, "View your name and profile picture")
	assert.Contains(t, body, "Access to custom")

	match := ticketField.FindStringSubmatch(body)
	require.Len(t, match, 2)
	req2, err := f.tickets.Verify(match[1], userID)
	require.NoError(t, err)
	assert.Equal(t, model.ConsentRequest{
		ClientID:     "c1",
		RedirectURI:  "https://app/cb",
		Scope:        "profile custom",
		ResponseType: "code",
	}, req2)
}

func TestConsent_Show_DefaultsScope(t *testing.T) {
	f := newConsentFixture(t)
	userID := uuid.New()

	req := f.signedIn(httptest.NewRequest(http.MethodGet, "/oauth/consent?client_id=c1&redirect_uri=https%3A%2F%2Fapp%2Fcb", nil), userID)
	rec := httptest.NewRecorder()

	f.handler.Show(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "View your profile and project information")
}

func TestConsent_ApproveRoundTrip(t *testing.T) {
	f := newConsentFixture(t)
	userID := uuid.New()

	f.store.On("Create", mock.Anything, mock.MatchedBy(func(a model.AuthorizationCode) bool {
		return a.UserID == userID && a.ClientID == "c1" && a.RedirectURI == "https://app/cb" &&
			a.Scope == "read profile" && len(a.CodeHash) == 64 && !a.Used
	})).Return(nil).Once()

	show := f.signedIn(httptest.NewRequest(http.MethodGet,
		"/oauth/consent?client_id=c1&redirect_uri=https%3A%2F%2Fapp%2Fcb&scope=read+profile&state=xyz", nil), userID)
	rec := httptest.NewRecorder()
	f.handler.Show(rec, show)
	require.Equal(t, http.StatusOK, rec.Code)
	match := ticketField.FindStringSubmatch(rec.Body.String())
	require.Len(t, match, 2)

	rec = httptest.NewRecorder()
	f.handler.Decide(rec, f.signedIn(postDecision(match[1], "approve"), userID))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Regexp(t, `^https://app/cb\?code=[0-9a-f]{64}&state=xyz$`, rec.Header().Get("Location"))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Authorizations.WithLabelValues("approve")))
}

func TestConsent_Deny(t *testing.T) {
	f := newConsentFixture(t)
	userID := uuid.New()

	ticket, err := f.tickets.Issue(userID, model.ConsentRequest{
		ClientID:     "c1",
		RedirectURI:  "https://app/cb",
		Scope:        "read",
		State:        "s1",
		ResponseType: "code",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	f.handler.Decide(rec, f.signedIn(postDecision(ticket, "deny"), userID))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://app/cb?error=access_denied&error_description=User%20denied%20access&state=s1",
		rec.Header().Get("Location"))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Authorizations.WithLabelValues("deny")))
}

func TestConsent_Decide_Rejections(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		request    func(f consentFixture) *http.Request
		wantStatus int
		wantText   string
	}{
		{
			name: "no session",
			request: func(f consentFixture) *http.Request {
				return postDecision("t", "approve")
			},
			wantStatus: http.StatusUnauthorized,
			wantText:   "Please sign in again",
		},
		{
			name: "unknown decision",
			request: func(f consentFixture) *http.Request {
				return f.signedIn(postDecision("t", "maybe"), userID)
			},
			wantStatus: http.StatusBadRequest,
			wantText:   "Invalid consent decision",
		},
		{
			name: "forged ticket",
			request: func(f consentFixture) *http.Request {
				return f.signedIn(postDecision("not-a-jwt", "approve"), userID)
			},
			wantStatus: http.StatusBadRequest,
			wantText:   "Invalid or expired authorization request",
		},
		{
			name: "ticket of another user",
			request: func(f consentFixture) *http.Request {
				ticket, err := f.tickets.Issue(uuid.New(), model.ConsentRequest{ClientID: "c1", RedirectURI: "https://app/cb", ResponseType: "code"})
				require.NoError(t, err)
				return f.signedIn(postDecision(ticket, "approve"), userID)
			},
			wantStatus: http.StatusBadRequest,
			wantText:   "Invalid or expired authorization request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newConsentFixture(t)
			rec := httptest.NewRecorder()

			f.handler.Decide(rec, tt.request(f))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, rec.Header().Get("Location"))
			assert.Contains(t, rec.Body.String(), tt.wantText)
		})
	}
}

func TestConsent_Decide_StoreFailureRendersInline(t *testing.T) {
	f := newConsentFixture(t)
	userID := uuid.New()

	f.store.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed")).Once()

	ticket, err := f.tickets.Issue(userID, model.ConsentRequest{ClientID: "c1", RedirectURI: "https://app/cb", ResponseType: "code"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	f.handler.Decide(rec, f.signedIn(postDecision(ticket, "approve"), userID))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), "Failed to grant authorization")
	assert.NotContains(t, rec.Body.String(), "code=")
}

type failingTickets struct{}

func (failingTickets) Issue(uuid.UUID, model.ConsentRequest) (string, error) {
	return "", errors.New("sign failed")
}

func (failingTickets) Verify(string, uuid.UUID) (model.ConsentRequest, error) {
	return model.ConsentRequest{}, errors.New("verify failed")
}

type noopAuthorizer struct{}

func (noopAuthorizer) Authorize(context.Context, uuid.UUID, model.ConsentRequest, model.Decision) (string, error) {
	return "", nil
}

func TestConsent_Show_TicketFailure(t *testing.T) {
	ctxManager := httpctx.NewManager()
	h := NewConsent(noopAuthorizer{}, failingTickets{}, ctxManager, metrics.New(), ltestutil.MakeNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/oauth/consent?client_id=c1&redirect_uri=https%3A%2F%2Fapp%2Fcb", nil)
	req = req.WithContext(ctxManager.SetUserIDToContext(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()

	h.Show(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to prepare authorization request")
}
