package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/pyomin/bluecool-admin/internal/alert"
	"github.com/pyomin/bluecool-admin/internal/cache"
	"github.com/pyomin/bluecool-admin/internal/common"
	"github.com/pyomin/bluecool-admin/internal/domain"
)

// CommentService moderates visitor comments: windowed listing, status
// transitions and admin replies.
type CommentService interface {
	List(ctx context.Context, q domain.CommentListQuery) (domain.CommentList, error)
	UpdateStatus(ctx context.Context, id string, status domain.CommentStatus) error
	Reply(ctx context.Context, id, content string) error
}

type commentService struct {
	gw       Gateway
	cache    *cache.Cache
	alerts   *alert.Hub
	validate *validator.Validate
	pending  *cache.Mutation
}

func NewCommentService(gw Gateway, c *cache.Cache, alerts *alert.Hub) CommentService {
	return &commentService{
		gw:       gw,
		cache:    c,
		alerts:   alerts,
		validate: validator.New(),
		pending:  cache.NewMutation(),
	}
}

// List reads the comment window through the cache
func (s *commentService) List(ctx context.Context, q domain.CommentListQuery) (domain.CommentList, error) {
	res, err := s.cache.Read(ctx, cache.CommentListKey(q), func(ctx context.Context) (any, error) {
		query := url.Values{}
		if q.Search != "" {
			query.Set("search", q.Search)
		}
		if q.Page > 0 {
			query.Set("page", strconv.Itoa(q.Page))
		}
		if q.Limit > 0 {
			query.Set("limit", strconv.Itoa(q.Limit))
		}
		if q.Status != "" && q.Status != "ALL" {
			query.Set("status", q.Status)
		}

		var list domain.CommentList
		if err := s.gw.Get(ctx, "/comments", query, &list); err != nil {
			return nil, err
		}
		return list, nil
	}, cache.ReadOptions{})
	if err != nil {
		return domain.CommentList{}, err
	}
	list, ok := res.Value.(domain.CommentList)
	if !ok {
		return domain.CommentList{}, fmt.Errorf("comment list: unexpected cache value %T", res.Value)
	}
	return list, nil
}

// UpdateStatus transitions a comment. PUBLISHED and HIDDEN swap
// freely; DELETED is terminal and replaces the content with the
// tombstone on the public site.
func (s *commentService) UpdateStatus(ctx context.Context, id string, status domain.CommentStatus) error {
	req := domain.UpdateCommentStatusRequest{Status: status}
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	_, err := s.pending.Run(ctx, func(ctx context.Context) (any, error) {
		return nil, s.gw.Patch(ctx, "/comments/"+id+"/status", req, nil)
	}, cache.MutateOptions{
		OnSuccess: func(any) {
			if status == domain.CommentDeleted {
				s.alerts.Success("댓글이 삭제되었습니다.")
			} else {
				s.alerts.Success("댓글 상태가 수정되었습니다.")
			}
			s.cache.Invalidate(cache.CommentsKey())
		},
		OnError: func(err error) {
			s.alerts.Error(serverMessage(err, "댓글 상태 변경에 실패했습니다."))
		},
	})
	return err
}

// Reply posts an administrative reply under a comment
func (s *commentService) Reply(ctx context.Context, id, content string) error {
	req := domain.CreateReplyRequest{Content: content}
	if err := s.validate.Struct(req); err != nil {
		s.alerts.Warning("답글 내용을 입력해주세요.")
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	_, err := s.pending.Run(ctx, func(ctx context.Context) (any, error) {
		return nil, s.gw.Post(ctx, "/comments/"+id+"/reply", req, nil)
	}, cache.MutateOptions{
		OnSuccess: func(any) {
			s.alerts.Success("답글이 등록되었습니다.")
			s.cache.Invalidate(cache.CommentsKey())
		},
		OnError: func(err error) {
			s.alerts.Error(serverMessage(err, "답글 등록에 실패했습니다."))
		},
	})
	return err
}
