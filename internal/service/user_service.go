package service

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/pyomin/bluecool-admin/internal/alert"
	"github.com/pyomin/bluecool-admin/internal/cache"
	"github.com/pyomin/bluecool-admin/internal/common"
	"github.com/pyomin/bluecool-admin/internal/domain"
)

// UserService administers accounts and the operator's own profile
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, req domain.CreateUserRequest) error
	Update(ctx context.Context, id string, req domain.UpdateUserRequest) error
	Delete(ctx context.Context, id string) error
	Profile(ctx context.Context) (domain.Profile, error)
	UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) error
	UploadProfileImage(ctx context.Context, filename string, file io.Reader) (string, error)
}

type userService struct {
	gw       Gateway
	media    MediaGateway
	cache    *cache.Cache
	alerts   *alert.Hub
	validate *validator.Validate
	pending  *cache.Mutation
}

func NewUserService(gw Gateway, media MediaGateway, c *cache.Cache, alerts *alert.Hub) UserService {
	return &userService{
		gw:       gw,
		media:    media,
		cache:    c,
		alerts:   alerts,
		validate: validator.New(),
		pending:  cache.NewMutation(),
	}
}

// List reads all accounts through the cache
func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	res, err := s.cache.Read(ctx, cache.UsersKey(), func(ctx context.Context) (any, error) {
		var users []domain.User
		if err := s.gw.Get(ctx, "/users", nil, &users); err != nil {
			return nil, err
		}
		return users, nil
	}, cache.ReadOptions{})
	if err != nil {
		return nil, err
	}
	users, ok := res.Value.([]domain.User)
	if !ok {
		return nil, fmt.Errorf("user list: unexpected cache value %T", res.Value)
	}
	return users, nil
}

// Create registers an account
func (s *userService) Create(ctx context.Context, req domain.CreateUserRequest) error {
	if err := s.validate.Struct(req); err != nil {
		s.alerts.Warning("계정 정보를 모두 입력해주세요.")
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	_, err := s.pending.Run(ctx, func(ctx context.Context) (any, error) {
		return nil, s.gw.Post(ctx, "/users", req, nil)
	}, cache.MutateOptions{
		OnSuccess: func(any) {
			s.alerts.Success("새로운 계정이 생성되었습니다.")
			s.cache.Invalidate(cache.UsersKey())
		},
		OnError: func(err error) {
			s.alerts.Error(serverMessage(err, "계정 생성에 실패했습니다."))
		},
	})
	return err
}

// Update edits an account
func (s *userService) Update(ctx context.Context, id string, req domain.UpdateUserRequest) error {
	_, err := s.pending.Run(ctx, func(ctx context.Context) (any, error) {
		return nil, s.gw.Patch(ctx, "/users/"+id, req, nil)
	}, cache.MutateOptions{
		OnSuccess: func(any) {
			s.alerts.Success("계정 정보가 수정되었습니다.")
			s.cache.Invalidate(cache.UsersKey())
		},
		OnError: func(err error) {
			s.alerts.Error(serverMessage(err, "계정 수정에 실패했습니다."))
		},
	})
	return err
}

// Delete removes an account. Callers confirm first.
func (s *userService) Delete(ctx context.Context, id string) error {
	_, err := s.pending.Run(ctx, func(ctx context.Context) (any, error) {
		return nil, s.gw.Delete(ctx, "/users/"+id)
	}, cache.MutateOptions{
		OnSuccess: func(any) {
			s.alerts.Success("계정이 삭제되었습니다.")
			s.cache.Invalidate(cache.UsersKey())
		},
		OnError: func(err error) {
			s.alerts.Error(serverMessage(err, "계정 삭제에 실패했습니다."))
		},
	})
	return err
}

// Profile reads the operator's own profile through the cache
func (s *userService) Profile(ctx context.Context) (domain.Profile, error) {
	res, err := s.cache.Read(ctx, cache.K("users", "me", "profile"), func(ctx context.Context) (any, error) {
		var profile domain.Profile
		if err := s.gw.Get(ctx, "/users/me/profile", nil, &profile); err != nil {
			return nil, err
		}
		return profile, nil
	}, cache.ReadOptions{})
	if err != nil {
		return domain.Profile{}, err
	}
	profile, ok := res.Value.(domain.Profile)
	if !ok {
		return domain.Profile{}, fmt.Errorf("profile: unexpected cache value %T", res.Value)
	}
	return profile, nil
}

// UpdateProfile edits the operator's own profile
func (s *userService) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) error {
	_, err := s.pending.Run(ctx, func(ctx context.Context) (any, error) {
		return nil, s.gw.Patch(ctx, "/users/me/profile", req, nil)
	}, cache.MutateOptions{
		OnSuccess: func(any) {
			s.alerts.Success("프로필이 수정되었습니다.")
			s.cache.Invalidate(cache.UsersKey())
		},
		OnError: func(err error) {
			s.alerts.Error(serverMessage(err, "프로필 수정에 실패했습니다."))
		},
	})
	return err
}

// UploadProfileImage pushes a new profile image and returns its URL
func (s *userService) UploadProfileImage(ctx context.Context, filename string, file io.Reader) (string, error) {
	url, err := s.media.UploadProfileImage(ctx, filename, file)
	if err != nil {
		s.alerts.Error(serverMessage(err, "이미지 업로드에 실패했습니다."))
		return "", err
	}
	return url, nil
}
