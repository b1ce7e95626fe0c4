package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unxversal/pointgate/internal/config"
	"github.com/unxversal/pointgate/internal/engine"
	"github.com/unxversal/pointgate/internal/handler"
	"github.com/unxversal/pointgate/internal/middleware"
	"github.com/unxversal/pointgate/internal/model"
	"github.com/unxversal/pointgate/internal/pkg/logger"
	"github.com/unxversal/pointgate/internal/repository"
	"github.com/unxversal/pointgate/internal/service"
	"github.com/unxversal/pointgate/internal/stream"
)

func main() {
	// 0. Initialize Logger
	logger.Init("info")

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(cfg.Server.LogLevel)

	// 2. Initialize Persistence (all mirrors are optional; the in-memory
	// engine stays authoritative)
	mirrors := &repository.MirrorSet{}
	var eventRepo *repository.EventRepo

	// Points/state mirror + event log (Postgres > none)
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg)
		if err == nil {
			logger.Info("✅ Connected to PostgreSQL")
			mirrors.PG = repository.NewPostgresPointsRepo(db)
		} else {
			logger.Error("⚠️ Failed to connect to DB, running without durable state", "error", err)
		}

		gdb, err := repository.NewGormDB(cfg)
		if err == nil {
			eventRepo, err = repository.NewEventRepo(gdb)
			if err != nil {
				logger.Error("⚠️ Event log migration failed", "error", err)
				eventRepo = nil
			}
		} else {
			logger.Error("⚠️ Failed to connect event log DB, running without event log", "error", err)
		}
		mirrors.Events = eventRepo
	}

	// Week points read replica + idempotency (Redis > Memory)
	var idempotencyStore middleware.IdempotencyStore
	if cfg.Redis.Addr != "" {
		redisClient, err := repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis")
			mirrors.Redis = redisClient
			idempotencyStore = repository.NewRedisIdempotencyStore(redisClient, cfg.Redis.IdempotencyTTLSeconds)
		} else {
			logger.Error("⚠️ Failed to connect to Redis, falling back to memory", "error", err)
		}
	}
	if idempotencyStore == nil {
		idempotencyStore = middleware.NewInMemIdempotencyStore()
	}

	// 3. Initialize Core Services
	productManager := service.NewProductManager(cfg)
	faucetClient := service.NewFaucetClient(cfg)
	hub := stream.NewHub()

	var mirror engine.Mirror
	if !mirrors.Empty() {
		mirror = mirrors
	}
	eng := engine.New(cfg.Engine, engine.SystemClock{}, faucetClient, hub, mirror)

	// 冷启动恢复：先回放用户快照，再回放推荐边
	if mirrors.PG != nil {
		restoreCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		restored := 0
		if err := mirrors.PG.LoadUserStates(restoreCtx, func(u *model.UserState) {
			eng.Restore(u)
			restored++
		}); err != nil {
			logger.Error("⚠️ User state restore failed", "error", err)
		}
		if err := mirrors.PG.LoadReferrals(restoreCtx, eng.RestoreParent); err != nil {
			logger.Error("⚠️ Referral restore failed", "error", err)
		}
		cancel()
		logger.Info("Restored user states from Postgres", "count", restored)
	}

	// 后台保留窗口清理：周快照和事件日志都只保留配置的窗口
	if mirrors.PG != nil || eventRepo != nil {
		go func() {
			ticker := time.NewTicker(24 * time.Hour)
			defer ticker.Stop()
			for range ticker.C {
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				if mirrors.PG != nil {
					if err := mirrors.PG.Cleanup(ctx, cfg.Database.WeekRetentionWeeks, eng.CurrentWeek()); err != nil {
						logger.Warn("week snapshot cleanup failed", "error", err)
					}
				}
				if eventRepo != nil {
					if err := eventRepo.Cleanup(ctx, cfg.Database.EventRetentionDays); err != nil {
						logger.Warn("event log cleanup failed", "error", err)
					}
				}
				cancel()
			}
		}()
	}

	// 4. Initialize Handlers
	hookHandler := handler.NewHookHandler(eng)
	viewHandler := handler.NewViewHandler(eng)
	referralHandler := handler.NewReferralHandler(eng)
	faucetHandler := handler.NewFaucetHandler(eng)
	adminHandler := handler.NewAdminHandler(eng)

	// 5. Setup Router
	r := gin.Default()

	// Global Middleware
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ReadOnlyMiddleware(cfg.Server.ReadOnly))

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "pointgate", "stream_clients": hub.ClientCount()})
	})

	// Metrics Endpoint
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API V1 Routes
	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg, productManager))
	v1.Use(middleware.RateLimitMiddleware(productManager))
	v1.Use(middleware.IdempotencyMiddleware(idempotencyStore))
	{
		// Activity hooks (upstream matching engines)
		v1.POST("/hooks/trade", hookHandler.TradeFill)
		v1.POST("/hooks/pnl", hookHandler.Pnl)
		v1.POST("/hooks/funding", hookHandler.Funding)
		v1.POST("/hooks/option", hookHandler.OptionFill)
		v1.POST("/hooks/borrow", hookHandler.Borrow)
		v1.POST("/hooks/repay", hookHandler.Repay)
		v1.POST("/hooks/supply", hookHandler.Supply)
		v1.POST("/hooks/liquidation", hookHandler.Liquidation)

		// Read views
		v1.GET("/points/:user", viewHandler.WeekPoints)
		v1.GET("/points/:user/total", viewHandler.TotalPoints)
		v1.GET("/leaderboard", viewHandler.Leaderboard)
		v1.GET("/rank/:user", viewHandler.Rank)
		v1.GET("/percentile/:user", viewHandler.Percentile)
		v1.GET("/users/:user", viewHandler.User)

		// Referral + faucet
		v1.POST("/referral/bind", referralHandler.Bind)
		v1.GET("/referral/:user", referralHandler.Show)
		v1.POST("/faucet/claim", faucetHandler.Claim)

		// Event stream (server push)
		v1.GET("/stream", hub.Serve)

		if eventRepo != nil {
			eventHandler := handler.NewEventHandler(eventRepo)
			v1.GET("/events/:user", eventHandler.ListByUser)
		}
	}

	// Admin parameter surface
	admin := r.Group("/v1/admin")
	admin.Use(middleware.AdminMiddleware(cfg))
	{
		admin.GET("/params", adminHandler.GetParams)
		admin.PUT("/params/weights", adminHandler.SetWeights)
		admin.PUT("/params/referral", adminHandler.SetReferral)
		admin.PUT("/params/faucet", adminHandler.SetFaucet)
		admin.PUT("/params/tiers", adminHandler.SetTiers)
		admin.PUT("/params/leaderboard", adminHandler.SetLeaderboard)
	}

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("🚀 PointGate started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	logger.Info("Server exiting")
}
