package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"tickerdesk/internal/user"
	dErrors "tickerdesk/pkg/domain-errors"
	"tickerdesk/pkg/secrets"
)

// defaultUserinfoURL is Google's OpenID userinfo endpoint.
const defaultUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Provider abstracts the redirect-based OAuth handshake. *oauth2.Config
// satisfies it; tests substitute a fake.
type Provider interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	Client(ctx context.Context, t *oauth2.Token) *http.Client
}

// Profile is the subset of the provider's userinfo payload we rely on.
// The raw payload is never logged.
type Profile struct {
	Subject string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// GoogleStrategy validates a Google OAuth callback and provisions a local
// account for first-time logins. Provisioned accounts carry the sentinel
// password and can never authenticate via the local strategy.
type GoogleStrategy struct {
	users       UserStore
	provider    Provider
	userinfoURL string
	group       singleflight.Group
	opts        options
}

// NewGoogleStrategy constructs the Google OAuth strategy.
func NewGoogleStrategy(users UserStore, provider Provider, opts ...Option) *GoogleStrategy {
	return &GoogleStrategy{
		users:       users,
		provider:    provider,
		userinfoURL: defaultUserinfoURL,
		opts:        newOptions(opts),
	}
}

// WithUserinfoURL overrides the userinfo endpoint (tests).
func (s *GoogleStrategy) WithUserinfoURL(url string) *GoogleStrategy {
	s.userinfoURL = url
	return s
}

func (s *GoogleStrategy) Name() string { return "google" }

// AuthCodeURL returns the provider redirect URL carrying the given state.
func (s *GoogleStrategy) AuthCodeURL(state string) string {
	return s.provider.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Authenticate exchanges the authorization code, fetches the profile, and
// finds or creates the matching user. Lookup and creation are one logical
// step: the store's guarded insert closes the duplicate-row race, and the
// singleflight group collapses concurrent callbacks for the same email in
// this process.
func (s *GoogleStrategy) Authenticate(ctx context.Context, creds Credentials) (*user.User, error) {
	ctx, span := s.opts.tracer.Start(ctx, "auth.google.authenticate")
	defer span.End()

	if creds.Code == "" {
		s.opts.authFailure(ctx, s.Name(), "missing_code", false, nil)
		return nil, dErrors.New(dErrors.CodeBadRequest, "missing authorization code")
	}

	token, err := s.provider.Exchange(ctx, creds.Code)
	if err != nil {
		s.opts.authFailure(ctx, s.Name(), "exchange_failed", true, err)
		return nil, translateProviderError(err)
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		s.opts.authFailure(ctx, s.Name(), "profile_fetch_failed", true, err)
		return nil, translateProviderError(err)
	}
	if profile.Email == "" {
		s.opts.authFailure(ctx, s.Name(), "missing_email_claim", false, nil)
		return nil, dErrors.New(dErrors.CodeValidation, "identity provider returned no email")
	}

	u, err := s.findOrProvision(ctx, profile.Email)
	if err != nil {
		s.opts.authFailure(ctx, s.Name(), "store_error", true, err)
		return nil, translateStoreError(err)
	}

	s.opts.authSuccess(ctx, s.Name(), u.ID.String())
	return u, nil
}

func (s *GoogleStrategy) fetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	client := s.provider.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &profile, nil
}

// findOrProvision returns the existing user for the email or creates one with
// the sentinel password. Profile field changes on returning users are ignored
// (no profile sync).
func (s *GoogleStrategy) findOrProvision(ctx context.Context, email string) (*user.User, error) {
	v, err, _ := s.group.Do(email, func() (any, error) {
		candidate := user.New(email, secrets.SentinelPassword, s.opts.now())
		found, err := s.users.FindOrCreateByEmail(ctx, email, candidate)
		if err != nil {
			return nil, err
		}
		if found.ID == candidate.ID {
			s.opts.metrics.IncrementUsersCreated()
			s.opts.logger.InfoContext(ctx, "provisioned oauth user", "user_id", found.ID.String())
		}
		return found, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*user.User), nil
}
