package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	userstore "tickerdesk/internal/user/store"
	dErrors "tickerdesk/pkg/domain-errors"
	"tickerdesk/pkg/secrets"
)

// fakeProvider satisfies Provider without a real OAuth handshake.
type fakeProvider struct {
	exchangeErr error
}

func (p *fakeProvider) AuthCodeURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://accounts.example.com/authorize?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &oauth2.Token{AccessToken: "token-for-" + code}, nil
}

func (p *fakeProvider) Client(_ context.Context, _ *oauth2.Token) *http.Client {
	return http.DefaultClient
}

// newGoogleFixture wires a strategy against the in-memory user store and an
// httptest userinfo endpoint serving the given JSON body.
func newGoogleFixture(t *testing.T, provider *fakeProvider, userinfoBody string, status int) (*GoogleStrategy, *userstore.InMemoryUserStore) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(userinfoBody))
	}))
	t.Cleanup(srv.Close)

	store := userstore.NewInMemory()
	strategy := NewGoogleStrategy(store, provider, WithClock(func() time.Time {
		return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	})).WithUserinfoURL(srv.URL)
	return strategy, store
}

func TestGoogleAuthenticateProvisionsNewUser(t *testing.T) {
	strategy, store := newGoogleFixture(t, &fakeProvider{},
		`{"id":"sub-1","email":"new.oauth@example.com","name":"New Person"}`, http.StatusOK)

	u, err := strategy.Authenticate(context.Background(), Credentials{Code: "authcode"})
	require.NoError(t, err)
	assert.Equal(t, "new.oauth@example.com", u.Email)
	assert.True(t, u.OAuthOnly())
	assert.Equal(t, secrets.SentinelPassword, u.PasswordHash)

	// Exactly one row was created.
	stored, err := store.FindByEmail(context.Background(), "new.oauth@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
}

func TestGoogleAuthenticateReturnsExistingUser(t *testing.T) {
	strategy, _ := newGoogleFixture(t, &fakeProvider{},
		`{"id":"sub-1","email":"repeat@example.com","name":"Repeat"}`, http.StatusOK)

	first, err := strategy.Authenticate(context.Background(), Credentials{Code: "code-1"})
	require.NoError(t, err)

	second, err := strategy.Authenticate(context.Background(), Credentials{Code: "code-2"})
	require.NoError(t, err)

	// Same user id, no duplicate row.
	assert.Equal(t, first.ID, second.ID)
}

func TestGoogleAuthenticateMissingEmailClaim(t *testing.T) {
	strategy, _ := newGoogleFixture(t, &fakeProvider{},
		`{"id":"sub-1","name":"No Email"}`, http.StatusOK)

	_, err := strategy.Authenticate(context.Background(), Credentials{Code: "authcode"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestGoogleAuthenticateExchangeFailure(t *testing.T) {
	strategy, _ := newGoogleFixture(t, &fakeProvider{exchangeErr: errors.New("invalid_grant")},
		`{}`, http.StatusOK)

	_, err := strategy.Authenticate(context.Background(), Credentials{Code: "bad"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestGoogleAuthenticateUserinfoFailure(t *testing.T) {
	strategy, _ := newGoogleFixture(t, &fakeProvider{}, `oops`, http.StatusInternalServerError)

	_, err := strategy.Authenticate(context.Background(), Credentials{Code: "authcode"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestGoogleAuthenticateMissingCode(t *testing.T) {
	strategy, _ := newGoogleFixture(t, &fakeProvider{}, `{}`, http.StatusOK)

	_, err := strategy.Authenticate(context.Background(), Credentials{})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestGoogleProvisionedUserCannotLoginLocally(t *testing.T) {
	strategy, store := newGoogleFixture(t, &fakeProvider{},
		`{"id":"sub-1","email":"oauth.only@example.com"}`, http.StatusOK)

	_, err := strategy.Authenticate(context.Background(), Credentials{Code: "authcode"})
	require.NoError(t, err)

	local := NewLocalStrategy(store, secrets.NewHasher(4))
	_, err = local.Authenticate(context.Background(), Credentials{
		Email:    "oauth.only@example.com",
		Password: secrets.SentinelPassword,
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
