package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pyomin/bluecool-admin/internal/alert"
	"github.com/pyomin/bluecool-admin/internal/api"
	"github.com/pyomin/bluecool-admin/internal/cache"
	"github.com/pyomin/bluecool-admin/internal/domain"
)

// --- Mock TokenWriter ---

type mockTokenWriter struct {
	mock.Mock
}

func (m *mockTokenWriter) Set(token string, remember bool) error {
	args := m.Called(token, remember)
	return args.Error(0)
}

func (m *mockTokenWriter) Clear() error {
	args := m.Called()
	return args.Error(0)
}

func newAuthFixture() (*mockGateway, *mockTokenWriter, *mockNavigator, <-chan alert.Alert, *cache.Cache, AuthService) {
	gw := new(mockGateway)
	tokens := new(mockTokenWriter)
	nav := new(mockNavigator)
	hub := alert.NewHub()
	ch, _ := hub.Subscribe()
	c := cache.New(nil)
	svc := NewAuthService(gw, tokens, c, hub, nav)
	return gw, tokens, nav, ch, c, svc
}

func TestLogin_StoresTokenInSelectedTier(t *testing.T) {
	gw, tokens, nav, _, _, svc := newAuthFixture()

	gw.On("Post", mock.Anything, "/auth/login", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			*(args.Get(3).(*domain.LoginResponse)) = domain.LoginResponse{
				AccessToken: "tok-123",
				User:        domain.User{ID: "u1", LoginID: "pyomin", Role: domain.RoleAdmin},
			}
		}).
		Return(nil).Once()
	tokens.On("Set", "tok-123", true).Return(nil).Once()

	user, err := svc.Login(context.Background(), domain.LoginRequest{
		LoginID:  "pyomin",
		Password: "secret",
		Remember: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, []string{"/dashboard"}, nav.routes)
	tokens.AssertExpectations(t)
}

func TestLogin_SeedsCurrentUserCache(t *testing.T) {
	gw, tokens, _, _, _, svc := newAuthFixture()

	gw.On("Post", mock.Anything, "/auth/login", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			*(args.Get(3).(*domain.LoginResponse)) = domain.LoginResponse{
				AccessToken: "tok-1",
				User:        domain.User{ID: "u1", Nickname: "표민"},
			}
		}).
		Return(nil).Once()
	tokens.On("Set", "tok-1", false).Return(nil).Once()

	_, err := svc.Login(context.Background(), domain.LoginRequest{LoginID: "pyomin", Password: "pw"})
	require.NoError(t, err)

	// Me must come from the seeded entry without touching the network
	user, err := svc.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "표민", user.Nickname)
	gw.AssertNotCalled(t, "Get", mock.Anything, "/auth/me", mock.Anything, mock.Anything)
}

func TestLogin_FailureAlertsAndStaysPut(t *testing.T) {
	gw, tokens, nav, ch, _, svc := newAuthFixture()

	gw.On("Post", mock.Anything, "/auth/login", mock.Anything, mock.Anything).
		Return(&api.Error{StatusCode: 401, Messages: []string{"아이디 또는 비밀번호가 올바르지 않습니다."}}).Once()

	_, err := svc.Login(context.Background(), domain.LoginRequest{LoginID: "pyomin", Password: "wrong"})
	require.Error(t, err)

	alerts := drainAlerts(ch)
	require.Len(t, alerts, 1)
	assert.Equal(t, "아이디 또는 비밀번호가 올바르지 않습니다.", alerts[0].Message)
	assert.Empty(t, nav.routes)
	tokens.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestLogin_EmptyFieldsBlockedLocally(t *testing.T) {
	gw, _, _, ch, _, svc := newAuthFixture()

	_, err := svc.Login(context.Background(), domain.LoginRequest{})
	require.Error(t, err)

	alerts := drainAlerts(ch)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.SeverityWarning, alerts[0].Severity)
	gw.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogout_ClearsTokensEvenWhenServerFails(t *testing.T) {
	gw, tokens, nav, _, _, svc := newAuthFixture()

	gw.On("Post", mock.Anything, "/auth/logout", nil, nil).
		Return(&api.Error{StatusCode: 500}).Once()
	tokens.On("Clear").Return(nil).Once()

	require.NoError(t, svc.Logout(context.Background()))
	assert.Equal(t, []string{"/login"}, nav.routes)
	tokens.AssertExpectations(t)
}
