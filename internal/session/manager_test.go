package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"tickerdesk/internal/session"
	"tickerdesk/internal/session/store"
	"tickerdesk/internal/user"
)

type ManagerSuite struct {
	suite.Suite
	store   *store.InMemorySessionStore
	manager *session.Manager
	now     time.Time
}

func (s *ManagerSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.now = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	s.manager = session.NewManager(s.store, session.Config{
		CookieName: "td_session",
		TTL:        time.Hour,
	}, session.WithClock(func() time.Time { return s.now }))
}

// establish runs a login round-trip and returns the session cookie.
func (s *ManagerSuite) establish(u *user.User) *http.Cookie {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	_, err := s.manager.Establish(w, r, u)
	require.NoError(s.T(), err)

	cookies := w.Result().Cookies()
	require.Len(s.T(), cookies, 1)
	return cookies[0]
}

// attachedUser runs a request with the given cookie through Attach and
// returns what the inner handler saw.
func (s *ManagerSuite) attachedUser(cookie *http.Cookie) (*user.User, bool) {
	var got *user.User
	var ok bool
	handler := s.manager.Attach(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = session.FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	handler.ServeHTTP(httptest.NewRecorder(), r)
	return got, ok
}

func (s *ManagerSuite) TestSerializeRoundTrip() {
	u := user.New("round.trip@example.com", "$2a$10$fakehash", s.now)

	identity := session.Serialize(u)
	restored := identity.User()

	assert.Equal(s.T(), u.ID, restored.ID)
	assert.Equal(s.T(), u.Email, restored.Email)
	// The credential itself never travels through the session.
	assert.Empty(s.T(), restored.PasswordHash)
}

func (s *ManagerSuite) TestEstablishAttachesIdentity() {
	u := user.New("alice@example.com", "$2a$10$fakehash", s.now)
	cookie := s.establish(u)

	assert.True(s.T(), cookie.HttpOnly)
	assert.Equal(s.T(), "td_session", cookie.Name)

	got, ok := s.attachedUser(cookie)
	require.True(s.T(), ok)
	assert.Equal(s.T(), u.ID, got.ID)
	assert.Equal(s.T(), u.Email, got.Email)
}

func (s *ManagerSuite) TestNoCookieIsUnauthenticated() {
	_, ok := s.attachedUser(nil)
	assert.False(s.T(), ok)
	assert.False(s.T(), session.IsAuthenticated(context.Background()))
}

func (s *ManagerSuite) TestGarbageCookieIsUnauthenticated() {
	_, ok := s.attachedUser(&http.Cookie{Name: "td_session", Value: "not-a-session-id"})
	assert.False(s.T(), ok)
}

func (s *ManagerSuite) TestExpiredSessionIsUnauthenticated() {
	u := user.New("old@example.com", "$2a$10$fakehash", s.now)
	cookie := s.establish(u)

	s.now = s.now.Add(2 * time.Hour)

	_, ok := s.attachedUser(cookie)
	assert.False(s.T(), ok)
}

func (s *ManagerSuite) TestDestroyInvalidatesSession() {
	u := user.New("bob@example.com", "$2a$10$fakehash", s.now)
	cookie := s.establish(u)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	r.AddCookie(cookie)
	require.NoError(s.T(), s.manager.Destroy(w, r))

	// The cleared cookie is expired.
	cleared := w.Result().Cookies()
	require.Len(s.T(), cleared, 1)
	assert.Less(s.T(), cleared[0].MaxAge, 0)

	// The same token no longer reaches protected resources.
	_, ok := s.attachedUser(cookie)
	assert.False(s.T(), ok)
}

func (s *ManagerSuite) TestDestroyWithoutSessionIsNoop() {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	assert.NoError(s.T(), s.manager.Destroy(w, r))
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func TestDeviceDisplayName(t *testing.T) {
	chrome := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	assert.Contains(t, session.DeviceDisplayName(chrome), "Chrome")
	assert.Equal(t, "Unknown device", session.DeviceDisplayName(""))
}
