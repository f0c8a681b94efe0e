package service

import (
	"context"
	"fmt"

	"github.com/pyomin/bluecool-admin/internal/cache"
	"github.com/pyomin/bluecool-admin/internal/domain"
)

// FallbackCategoryName shown when a post has no category yet
const FallbackCategoryName = "임시 카테고리"

// CategoryService serves the category tree and its flattened form
type CategoryService interface {
	Tree(ctx context.Context) ([]domain.Category, error)
	Options(ctx context.Context) ([]domain.CategoryOption, error)
}

type categoryService struct {
	gw    Gateway
	cache *cache.Cache
}

func NewCategoryService(gw Gateway, c *cache.Cache) CategoryService {
	return &categoryService{gw: gw, cache: c}
}

// Tree reads the category tree through the cache
func (s *categoryService) Tree(ctx context.Context) ([]domain.Category, error) {
	res, err := s.cache.Read(ctx, cache.CategoriesKey(), func(ctx context.Context) (any, error) {
		var tree []domain.Category
		if err := s.gw.Get(ctx, "/categories", nil, &tree); err != nil {
			return nil, err
		}
		return tree, nil
	}, cache.ReadOptions{})
	if err != nil {
		return nil, err
	}
	tree, ok := res.Value.([]domain.Category)
	if !ok {
		return nil, fmt.Errorf("categories: unexpected cache value %T", res.Value)
	}
	return tree, nil
}

// Options returns the depth-indented flat list the publish modal
// renders; depth-0 entries are non-selectable group headers.
func (s *categoryService) Options(ctx context.Context) ([]domain.CategoryOption, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FlattenCategories(tree), nil
}
