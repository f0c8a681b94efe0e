package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/pyomin/bluecool-admin/internal/alert"
	"github.com/pyomin/bluecool-admin/internal/api"
	"github.com/pyomin/bluecool-admin/internal/cache"
	"github.com/pyomin/bluecool-admin/internal/config"
	"github.com/pyomin/bluecool-admin/internal/preview"
	"github.com/pyomin/bluecool-admin/internal/routes"
	"github.com/pyomin/bluecool-admin/internal/service"
	"github.com/pyomin/bluecool-admin/internal/token"
	"github.com/pyomin/bluecool-admin/pkg/logger"
	pkgredis "github.com/pyomin/bluecool-admin/pkg/redis"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.InitStructured(cfg.Env)
	lg := logger.WithComponent("console")

	// Durable token / preference slots
	tokens, err := token.NewStore(cfg.StatePath)
	if err != nil {
		lg.Fatal().Err(err).Str("path", cfg.StatePath).Msg("상태 저장소 초기화 실패")
	}
	if pruned, err := tokens.PruneExpired(); err != nil {
		lg.Warn().Err(err).Msg("만료 토큰 정리 실패")
	} else if pruned {
		lg.Info().Msg("만료된 세션 토큰을 정리했습니다")
	}

	// Optional redis mirror; empty addr turns mirroring off
	rdb, err := pkgredis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		lg.Warn().Err(err).Msg("redis 연결 실패, 캐시 미러링 없이 계속")
		rdb = nil
	}

	store := cache.New(rdb)
	alerts := alert.NewHub()
	registry := routes.NewRegistry(tokens)

	client, err := api.NewClient(cfg.APIBaseURL, cfg.APIPrefix, tokens)
	if err != nil {
		lg.Fatal().Err(err).Msg("API 클라이언트 초기화 실패")
	}
	client.OnUnauthorized(func() {
		store.Invalidate(cache.AuthKey())
		registry.SessionExpired()
	})

	// Services
	postSvc := service.NewPostService(client, store, alerts, registry)
	authSvc := service.NewAuthService(client, tokens, store, alerts, registry)
	commentSvc := service.NewCommentService(client, store, alerts)
	userSvc := service.NewUserService(client, client, store, alerts)
	categorySvc := service.NewCategoryService(client, store)
	analyticsSvc := service.NewAnalyticsService(client, store)
	aiSvc := service.NewAIService(client, store)

	// Preview bridge for the public site's /posts/preview page
	bridge := preview.NewBridge(cfg.SiteOrigin)
	mode := gin.ReleaseMode
	if cfg.Env == "development" {
		mode = gin.DebugMode
	}
	engine := bridge.Engine(mode)
	go func() {
		lg.Info().Str("addr", cfg.BridgeAddr).Msg("미리보기 브리지 시작")
		if err := engine.Run(cfg.BridgeAddr); err != nil {
			lg.Error().Err(err).Msg("미리보기 브리지 종료")
		}
	}()

	// Land on the right screen for the stored session state
	if tokens.Get() != "" {
		registry.NavigateTo("/dashboard")
	} else {
		registry.NavigateTo("/login")
	}

	shell := newShell(cfg, registry, alerts, store, tokens, shellServices{
		posts:     postSvc,
		auth:      authSvc,
		comments:  commentSvc,
		users:     userSvc,
		category:  categorySvc,
		analytics: analyticsSvc,
		ai:        aiSvc,
		uploader:  client,
		bridge:    bridge,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := shell.Run(ctx); err != nil {
		lg.Error().Err(err).Msg("콘솔 종료")
	}
	bridge.Close()
}
