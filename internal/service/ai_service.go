package service

import (
	"context"
	"fmt"

	"github.com/pyomin/bluecool-admin/internal/cache"
	"github.com/pyomin/bluecool-admin/internal/domain"
)

// AIService wraps the three suggestion endpoints. Suggestions never
// auto-run: each call is an explicit operator action, cached under
// ['ai', kind] so repeating the action within the window is free.
// Results are proposals; nothing is applied without confirmation.
type AIService interface {
	SuggestTopic(ctx context.Context) (domain.SuggestedTopic, error)
	SuggestSlug(ctx context.Context, title string) (domain.SuggestedSlug, error)
	SuggestSummary(ctx context.Context, content string) (domain.SuggestedSummary, error)
}

type aiService struct {
	gw    Gateway
	cache *cache.Cache
}

func NewAIService(gw Gateway, c *cache.Cache) AIService {
	return &aiService{gw: gw, cache: c}
}

// SuggestTopic proposes a category and topic for a blank draft
func (s *aiService) SuggestTopic(ctx context.Context) (domain.SuggestedTopic, error) {
	res, err := s.cache.Read(ctx, cache.AIKey("topic"), func(ctx context.Context) (any, error) {
		var topic domain.SuggestedTopic
		if err := s.gw.Get(ctx, "/posts/suggest/topic", nil, &topic); err != nil {
			return nil, err
		}
		return topic, nil
	}, cache.ReadOptions{})
	if err != nil {
		return domain.SuggestedTopic{}, err
	}
	topic, ok := res.Value.(domain.SuggestedTopic)
	if !ok {
		return domain.SuggestedTopic{}, fmt.Errorf("ai topic: unexpected cache value %T", res.Value)
	}
	return topic, nil
}

// SuggestSlug proposes a slug for the publish modal
func (s *aiService) SuggestSlug(ctx context.Context, title string) (domain.SuggestedSlug, error) {
	s.cache.Invalidate(cache.AIKey("slug"))
	res, err := s.cache.Read(ctx, cache.AIKey("slug"), func(ctx context.Context) (any, error) {
		var slug domain.SuggestedSlug
		if err := s.gw.Post(ctx, "/posts/suggest/slug", map[string]string{"title": title}, &slug); err != nil {
			return nil, err
		}
		return slug, nil
	}, cache.ReadOptions{})
	if err != nil {
		return domain.SuggestedSlug{}, err
	}
	slug, ok := res.Value.(domain.SuggestedSlug)
	if !ok {
		return domain.SuggestedSlug{}, fmt.Errorf("ai slug: unexpected cache value %T", res.Value)
	}
	return slug, nil
}

// SuggestSummary proposes a description from the draft content
func (s *aiService) SuggestSummary(ctx context.Context, content string) (domain.SuggestedSummary, error) {
	s.cache.Invalidate(cache.AIKey("summary"))
	res, err := s.cache.Read(ctx, cache.AIKey("summary"), func(ctx context.Context) (any, error) {
		var summary domain.SuggestedSummary
		if err := s.gw.Post(ctx, "/posts/suggest/summary", map[string]string{"content": content}, &summary); err != nil {
			return nil, err
		}
		return summary, nil
	}, cache.ReadOptions{})
	if err != nil {
		return domain.SuggestedSummary{}, err
	}
	summary, ok := res.Value.(domain.SuggestedSummary)
	if !ok {
		return domain.SuggestedSummary{}, fmt.Errorf("ai summary: unexpected cache value %T", res.Value)
	}
	return summary, nil
}
