package auth

//go:generate mockgen -source=strategy.go -destination=mocks/mocks.go -package=mocks UserStore,Hasher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"tickerdesk/internal/auth/mocks"
)

type AuthSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockUsers  *mocks.MockUserStore
	mockHasher *mocks.MockHasher
	now        time.Time
	local      *LocalStrategy
	registrar  *Registrar
}

func (s *AuthSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockUsers = mocks.NewMockUserStore(s.ctrl)
	s.mockHasher = mocks.NewMockHasher(s.ctrl)
	s.now = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	clock := WithClock(func() time.Time { return s.now })
	s.local = NewLocalStrategy(s.mockUsers, s.mockHasher, clock)
	s.registrar = NewRegistrar(s.mockUsers, s.mockHasher, clock)
}

func (s *AuthSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}
