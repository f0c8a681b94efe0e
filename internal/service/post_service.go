package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pyomin/bluecool-admin/internal/alert"
	"github.com/pyomin/bluecool-admin/internal/cache"
	"github.com/pyomin/bluecool-admin/internal/common"
	"github.com/pyomin/bluecool-admin/internal/domain"
	"github.com/pyomin/bluecool-admin/pkg/logger"
)

// PostService drives the DRAFT↔PUBLISHED↔ARCHIVED state machine and
// the post read paths.
type PostService interface {
	List(ctx context.Context, q domain.PostListQuery) (domain.PostList, error)
	Get(ctx context.Context, id string) (domain.Post, error)
	CreateDraft(ctx context.Context) (domain.Post, error)
	SaveDraft(ctx context.Context, id, title, content, contentJSON string, data domain.PublishData) error
	Publish(ctx context.Context, id, title, content, contentJSON string, data domain.PublishData) error
	Archive(ctx context.Context, id, title, content, contentJSON string, data domain.PublishData) error
	Delete(ctx context.Context, id string) error
	Saving() bool
}

type postService struct {
	gw       Gateway
	cache    *cache.Cache
	alerts   *alert.Hub
	nav      Navigator
	validate *validator.Validate
	saving   *cache.Mutation
	log      zerolog.Logger

	// lastListKey names the most recent cached list; only touched
	// from the console loop
	lastListKey cache.Key
}

func NewPostService(gw Gateway, c *cache.Cache, alerts *alert.Hub, nav Navigator) PostService {
	return &postService{
		gw:       gw,
		cache:    c,
		alerts:   alerts,
		nav:      nav,
		validate: validator.New(),
		saving:   cache.NewMutation(),
		log:      logger.WithComponent("post-service"),
	}
}

// List reads the windowed post list through the cache. While filters
// change, the previous query's cached page serves as placeholder data
// so the table never collapses to empty.
func (s *postService) List(ctx context.Context, q domain.PostListQuery) (domain.PostList, error) {
	key := cache.PostListKey(q)

	res, err := s.cache.Read(ctx, key, func(ctx context.Context) (any, error) {
		return s.fetchList(ctx, q)
	}, cache.ReadOptions{Placeholder: s.lastListKey})
	if err != nil {
		return domain.PostList{}, err
	}

	list, ok := res.Value.(domain.PostList)
	if !ok {
		return domain.PostList{}, fmt.Errorf("post list: unexpected cache value %T", res.Value)
	}
	if !res.Placeholder {
		s.lastListKey = key
	}
	return list, nil
}

func (s *postService) fetchList(ctx context.Context, q domain.PostListQuery) (domain.PostList, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	limit := q.Limit
	if limit == 0 {
		limit = 9
	}
	query.Set("limit", strconv.Itoa(limit))
	if q.Status != "" && q.Status != "ALL" {
		query.Set("status", q.Status)
	}
	if q.Category != 0 {
		query.Set("category", strconv.Itoa(q.Category))
	}
	if q.StartDate != "" {
		query.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		query.Set("endDate", q.EndDate)
	}

	var list domain.PostList
	if err := s.gw.Get(ctx, "/posts", query, &list); err != nil {
		return domain.PostList{}, err
	}
	return list, nil
}

// Get reads a single post through the cache
func (s *postService) Get(ctx context.Context, id string) (domain.Post, error) {
	res, err := s.cache.Read(ctx, cache.PostKey(id), func(ctx context.Context) (any, error) {
		var post domain.Post
		if err := s.gw.Get(ctx, "/posts/"+id, nil, &post); err != nil {
			return nil, err
		}
		return post, nil
	}, cache.ReadOptions{})
	if err != nil {
		return domain.Post{}, err
	}
	post, ok := res.Value.(domain.Post)
	if !ok {
		return domain.Post{}, fmt.Errorf("post: unexpected cache value %T", res.Value)
	}
	return post, nil
}

// CreateDraft opens a fresh draft and routes into its editor
func (s *postService) CreateDraft(ctx context.Context) (domain.Post, error) {
	var post domain.Post
	_, err := s.saving.Run(ctx, func(ctx context.Context) (any, error) {
		if err := s.gw.Post(ctx, "/posts", map[string]any{}, &post); err != nil {
			return nil, err
		}
		return post, nil
	}, cache.MutateOptions{
		OnSuccess: func(any) {
			s.cache.Invalidate(cache.PostsKey())
			s.nav.NavigateTo("/posts/" + post.ID + "/edit")
		},
		OnError: func(err error) {
			s.alerts.Error(serverMessage(err, "글 생성에 실패했습니다."))
		},
	})
	return post, err
}

// SaveDraft persists the working copy without publish preconditions.
// An empty slug is sent as null, never as the empty string.
func (s *postService) SaveDraft(ctx context.Context, id, title, content, contentJSON string, data domain.PublishData) error {
	req := domain.UpdatePostRequest{
		Title:       title,
		Content:     content,
		ContentJSON: contentJSON,
		Slug:        common.NormalizeSlug(data.Slug),
		Description: data.Description,
		CategoryID:  data.CategoryID,
		Status:      domain.StatusDraft,
	}
	return s.update(ctx, id, req, func() {
		s.alerts.Success("임시 저장되었습니다!")
		s.cache.Invalidate(cache.PostKey(id))
	})
}

// Publish runs the precondition checks before any network call:
// slug, then description, then category. Each failure emits a warning
// and aborts locally.
func (s *postService) Publish(ctx context.Context, id, title, content, contentJSON string, data domain.PublishData) error {
	slug := strings.TrimSpace(data.Slug)
	description := strings.TrimSpace(data.Description)

	if slug == "" {
		s.alerts.Warning("URL SLUG를 입력해주세요.")
		return common.ErrSlugRequired
	}
	if !common.IsValidSlug(slug) {
		s.alerts.Warning("URL SLUG는 소문자, 숫자, 하이픈만 사용할 수 있습니다.")
		return common.ErrSlugInvalid
	}
	if description == "" {
		s.alerts.Warning("요약 내용을 입력해주세요.")
		return common.ErrDescriptionRequired
	}
	if data.CategoryID == 0 {
		s.alerts.Warning("카테고리를 선택해주세요.")
		return common.ErrCategoryRequired
	}

	req := domain.UpdatePostRequest{
		Title:       title,
		Content:     content,
		ContentJSON: contentJSON,
		Slug:        &slug,
		Description: description,
		CategoryID:  data.CategoryID,
		Status:      domain.StatusPublished,
	}
	return s.update(ctx, id, req, func() {
		s.alerts.Success("성공적으로 발행되었습니다! 🎉")
		s.cache.Invalidate(cache.PostsKey())
		s.nav.NavigateTo("/posts")
	})
}

// Archive saves with ARCHIVED status; no preconditions apply
func (s *postService) Archive(ctx context.Context, id, title, content, contentJSON string, data domain.PublishData) error {
	req := domain.UpdatePostRequest{
		Title:       title,
		Content:     content,
		ContentJSON: contentJSON,
		Slug:        common.NormalizeSlug(data.Slug),
		Description: data.Description,
		CategoryID:  data.CategoryID,
		Status:      domain.StatusArchived,
	}
	return s.update(ctx, id, req, func() {
		s.alerts.Success("성공적으로 저장되었습니다.")
		s.cache.Invalidate(cache.PostsKey())
		s.nav.NavigateTo("/posts")
	})
}

func (s *postService) update(ctx context.Context, id string, req domain.UpdatePostRequest, onSuccess func()) error {
	if err := s.validate.Struct(req); err != nil {
		s.log.Warn().Err(err).Str("post_id", id).Msg("잘못된 저장 요청")
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	_, err := s.saving.Run(ctx, func(ctx context.Context) (any, error) {
		var updated domain.Post
		if err := s.gw.Patch(ctx, "/posts/"+id, req, &updated); err != nil {
			return nil, err
		}
		return updated, nil
	}, cache.MutateOptions{
		OnSuccess: func(any) { onSuccess() },
		OnError: func(err error) {
			s.alerts.Error(serverMessage(err, "저장에 실패했습니다."))
		},
	})
	return err
}

// Delete removes the post outright. Callers confirm first.
func (s *postService) Delete(ctx context.Context, id string) error {
	_, err := s.saving.Run(ctx, func(ctx context.Context) (any, error) {
		return nil, s.gw.Delete(ctx, "/posts/"+id)
	}, cache.MutateOptions{
		OnSuccess: func(any) {
			s.cache.Invalidate(cache.PostsKey())
			s.nav.NavigateTo("/posts")
		},
		OnError: func(err error) {
			s.alerts.Error(serverMessage(err, "글 삭제에 실패했습니다."))
		},
	})
	return err
}

// Saving reports whether a post mutation is in flight
func (s *postService) Saving() bool {
	return s.saving.IsPending()
}
