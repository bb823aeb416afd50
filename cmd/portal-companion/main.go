package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/myruppin/portal-companion/internal/handler"
	"github.com/myruppin/portal-companion/internal/middleware"
	"github.com/myruppin/portal-companion/internal/notify"
	"github.com/myruppin/portal-companion/internal/portal"
	"github.com/myruppin/portal-companion/internal/service"
	"github.com/myruppin/portal-companion/internal/store"
	"github.com/myruppin/portal-companion/pkg/cache"
	"github.com/myruppin/portal-companion/pkg/config"
	"github.com/myruppin/portal-companion/pkg/jobs"
	"github.com/myruppin/portal-companion/pkg/logger"
	corsmiddleware "github.com/myruppin/portal-companion/pkg/middleware/cors"
	reqidmiddleware "github.com/myruppin/portal-companion/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var kv store.Store
	switch cfg.Store.Backend {
	case "redis":
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("redis connection failed", "error", err)
		}
		defer client.Close() //nolint:errcheck
		kv = store.NewRedisStore(client)
	default:
		fileStore, err := store.NewFileStore(cfg.Store.FilePath)
		if err != nil {
			logr.Sugar().Fatalw("file store init failed", "error", err)
		}
		kv = fileStore
	}
	tokens := store.NewTokenStore(kv, cfg.Store.Secret)

	client := portal.New(cfg.Portal, logr)
	metrics := service.NewMetricsService()

	sinks := []notify.Notifier{notify.NewLogNotifier(logr)}
	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.WebhookTimeout))
	}
	dispatcher := notify.NewDispatcher(sinks, logr, jobs.QueueConfig{
		Workers:    2,
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
	})
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	scheduleCache := service.NewScheduleCache(client, metrics, logr)
	poller := service.NewGradePoller(client, tokens, dispatcher, metrics, logr)
	auth := service.NewAuthService(client, tokens, nil, logr)
	home := service.NewHomeService(client, tokens, cfg.Home.CacheTTL, logr)
	exports := service.NewExportService(client, scheduleCache, tokens, logr)

	pollQueue := jobs.NewQueue("grade-poll", poller.JobHandler(), jobs.QueueConfig{
		Workers:    1,
		MaxRetries: cfg.Poller.MaxRetries,
		RetryDelay: cfg.Poller.RetryDelay,
		Logger:     logr,
	})
	pollQueue.Start(ctx)
	defer pollQueue.Stop()

	var scheduler *cron.Cron
	if cfg.Poller.Enabled {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Poller.Cron, func() {
			if err := pollQueue.Enqueue(jobs.Job{Kind: "grade-poll"}); err != nil {
				logr.Sugar().Warnw("poll enqueue failed", "error", err)
			}
		})
		if err != nil {
			logr.Sugar().Fatalw("invalid poller cron expression", "cron", cfg.Poller.Cron, "error", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logr.Sugar().Infow("grade poller scheduled", "cron", cfg.Poller.Cron)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authHandler := handler.NewAuthHandler(auth, home)
	scheduleHandler := handler.NewScheduleHandler(scheduleCache, exports, tokens)
	gradeHandler := handler.NewGradeHandler(client, exports, tokens)
	homeHandler := handler.NewHomeHandler(home)
	pollerHandler := handler.NewPollerHandler(poller)

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)
		api.GET("/auth/status", authHandler.Status)
		api.POST("/auth/logout", authHandler.Logout)

		api.GET("/home", homeHandler.Get)

		api.GET("/schedule/month/:month", scheduleHandler.Month)
		api.GET("/schedule/day/:date", scheduleHandler.Day)
		api.GET("/schedule/courses", scheduleHandler.Courses)
		api.GET("/schedule/export.ics", scheduleHandler.ExportICS)

		api.GET("/grades", gradeHandler.List)
		api.GET("/grades/export.csv", gradeHandler.ExportCSV)
		api.GET("/grades/export.pdf", gradeHandler.ExportPDF)

		api.POST("/poller/run", pollerHandler.Run)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
