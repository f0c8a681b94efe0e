package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pyomin/bluecool-admin/internal/alert"
	"github.com/pyomin/bluecool-admin/internal/cache"
	"github.com/pyomin/bluecool-admin/internal/domain"
	"github.com/pyomin/bluecool-admin/pkg/logger"
)

// TokenWriter is the slice of the token store auth writes to.
// Only login and the 401 hook ever write tokens.
type TokenWriter interface {
	Set(token string, remember bool) error
	Clear() error
}

// AuthService owns the session: login, current operator, logout.
type AuthService interface {
	Login(ctx context.Context, req domain.LoginRequest) (domain.User, error)
	Me(ctx context.Context) (domain.User, error)
	Logout(ctx context.Context) error
	LoggingIn() bool
}

type authService struct {
	gw       Gateway
	tokens   TokenWriter
	cache    *cache.Cache
	alerts   *alert.Hub
	nav      Navigator
	validate *validator.Validate
	pending  *cache.Mutation
	log      zerolog.Logger
}

func NewAuthService(gw Gateway, tokens TokenWriter, c *cache.Cache, alerts *alert.Hub, nav Navigator) AuthService {
	return &authService{
		gw:       gw,
		tokens:   tokens,
		cache:    c,
		alerts:   alerts,
		nav:      nav,
		validate: validator.New(),
		pending:  cache.NewMutation(),
		log:      logger.WithComponent("auth-service"),
	}
}

// Login authenticates, stores the token in the tier the remember flag
// selects, seeds the current-user cache entry and lands on the
// dashboard. The auth prefix is invalidated on settle either way.
func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (domain.User, error) {
	if err := s.validate.Struct(req); err != nil {
		s.alerts.Warning("아이디와 비밀번호를 입력해주세요.")
		return domain.User{}, err
	}

	var resp domain.LoginResponse
	_, err := s.pending.Run(ctx, func(ctx context.Context) (any, error) {
		if err := s.gw.Post(ctx, "/auth/login", req, &resp); err != nil {
			return nil, err
		}
		if err := s.tokens.Set(resp.AccessToken, req.Remember); err != nil {
			return nil, fmt.Errorf("store token: %w", err)
		}
		return resp, nil
	}, cache.MutateOptions{
		OnError: func(err error) {
			s.log.Warn().Err(err).Str("login_id", req.LoginID).Msg("로그인 실패")
			s.alerts.Error(serverMessage(err, "로그인에 실패했습니다."))
		},
		OnSettled: func() {
			s.cache.Invalidate(cache.AuthKey())
		},
	})
	if err == nil {
		// Seed after the settle-time invalidation so the entry stays live
		s.cache.Set(cache.AuthMeKey(), resp.User)
		s.nav.NavigateTo("/dashboard")
	}
	return resp.User, err
}

// Me reads the current operator through the cache
func (s *authService) Me(ctx context.Context) (domain.User, error) {
	res, err := s.cache.Read(ctx, cache.AuthMeKey(), func(ctx context.Context) (any, error) {
		var user domain.User
		if err := s.gw.Get(ctx, "/auth/me", nil, &user); err != nil {
			return nil, err
		}
		return user, nil
	}, cache.ReadOptions{})
	if err != nil {
		return domain.User{}, err
	}
	user, ok := res.Value.(domain.User)
	if !ok {
		return domain.User{}, fmt.Errorf("auth me: unexpected cache value %T", res.Value)
	}
	return user, nil
}

// Logout ends the server session, clears both token tiers and lands
// on the login route. Token clearing is not conditional on the server
// call succeeding.
func (s *authService) Logout(ctx context.Context) error {
	if err := s.gw.Post(ctx, "/auth/logout", nil, nil); err != nil {
		s.log.Warn().Err(err).Msg("로그아웃 요청 실패, 로컬 세션만 정리")
	}
	if err := s.tokens.Clear(); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	s.cache.Invalidate(cache.AuthKey())
	s.nav.NavigateTo("/login")
	return nil
}

// LoggingIn reports whether a login is in flight
func (s *authService) LoggingIn() bool {
	return s.pending.IsPending()
}
