package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pyomin/bluecool-admin/internal/cache"
	"github.com/pyomin/bluecool-admin/internal/domain"
)

// dashboardRefresh background refresh period while the dashboard has
// observers
const dashboardRefresh = time.Minute

// AnalyticsService serves the dashboard counters and trends
type AnalyticsService interface {
	Dashboard(ctx context.Context) (domain.Dashboard, error)
	// WatchDashboard subscribes to dashboard changes and schedules a
	// background refresh that stops when the last watcher leaves.
	WatchDashboard() (<-chan struct{}, func())
}

type analyticsService struct {
	gw    Gateway
	cache *cache.Cache
}

func NewAnalyticsService(gw Gateway, c *cache.Cache) AnalyticsService {
	return &analyticsService{gw: gw, cache: c}
}

// Dashboard reads the dashboard through the cache
func (s *analyticsService) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	res, err := s.cache.Read(ctx, cache.AnalyticsKey("dashboard"), func(ctx context.Context) (any, error) {
		var dash domain.Dashboard
		if err := s.gw.Get(ctx, "/analytics/dashboard", nil, &dash); err != nil {
			return nil, err
		}
		return dash, nil
	}, cache.ReadOptions{})
	if err != nil {
		return domain.Dashboard{}, err
	}
	dash, ok := res.Value.(domain.Dashboard)
	if !ok {
		return domain.Dashboard{}, fmt.Errorf("dashboard: unexpected cache value %T", res.Value)
	}
	return dash, nil
}

// WatchDashboard keeps the dashboard fresh while it is on screen
func (s *analyticsService) WatchDashboard() (<-chan struct{}, func()) {
	key := cache.AnalyticsKey("dashboard")
	ch, cancel := s.cache.Subscribe(key)
	s.cache.StartRefresh(key, dashboardRefresh)
	return ch, cancel
}
