package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"go-autoapply/internal/browser"
	"go-autoapply/internal/config"
	"go-autoapply/internal/counters"
	"go-autoapply/internal/database"
	"go-autoapply/internal/executor"
	"go-autoapply/internal/form"
	"go-autoapply/internal/logger"
	"go-autoapply/internal/models"
	"go-autoapply/internal/profile"
	"go-autoapply/internal/queue"
	"go-autoapply/internal/reporter"
	"go-autoapply/internal/scheduler"
	"go-autoapply/utils"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("❌ database connection failed", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error("❌ schema setup failed", "error", err)
		os.Exit(1)
	}
	log.Info("✅ database ready")

	store, err := counters.Open(cfg.BadgerPath)
	if err != nil {
		log.Error("❌ counter store failed to open", "path", cfg.BadgerPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	shots, err := utils.NewScreenshotWriter(cfg.ScreenshotDir)
	if err != nil {
		log.Error("❌ screenshot dir setup failed", "error", err)
		os.Exit(1)
	}

	engine := browser.NewEngine(cfg.Headless, cfg.CookiesPath, log)
	defer engine.Close()

	var notifier executor.Notifier
	if cfg.TelegramToken != "" {
		tg, err := reporter.NewTelegramReporter(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warn("telegram reporter disabled", "error", err)
		} else {
			notifier = tg
			log.Info("✅ telegram notifications enabled")
		}
	}

	sched := scheduler.New(log)
	filler := form.NewFiller(form.NewDetector(), profile.NewStaticAnswers(cfg.DefaultAnswers), log)
	runner := executor.NewBrowserAttemptRunner(engine, filler, repo, repo, repo, shots, log)
	exec := executor.New(repo, sched, runner, notifier, log,
		time.Duration(cfg.RetryBaseDelaySeconds)*time.Second)
	sched.SetHandler(exec.Execute)

	if err := sched.LoadPending(ctx, repo); err != nil {
		log.Error("❌ could not recover scheduled items", "error", err)
		os.Exit(1)
	}
	if err := sched.Start(); err != nil {
		log.Error("❌ scheduler failed to start", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	manager := queue.NewManager(repo, store, sched, log)

	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, manager)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Info("🚀 auto-apply server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown was not clean", "error", err)
	}
}

func registerRoutes(router *gin.Engine, manager *queue.Manager) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")

	api.POST("/queue", func(c *gin.Context) {
		var req queue.AddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		item, err := manager.AddToQueue(c.Request.Context(), req)
		if err != nil {
			writeQueueError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	})

	api.GET("/queue", func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		var status *models.QueueStatus
		if s := c.Query("status"); s != "" {
			qs := models.QueueStatus(s)
			status = &qs
		}
		items, err := manager.GetUserQueue(c.Request.Context(), userID, status)
		if err != nil {
			writeQueueError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
	})

	api.POST("/queue/:id/cancel", func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		item, err := manager.CancelApplication(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			writeQueueError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})

	api.POST("/queue/pause", func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		paused, err := manager.PauseUserQueue(c.Request.Context(), userID)
		if err != nil {
			writeQueueError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"paused": paused})
	})
}

func writeQueueError(c *gin.Context, err error) {
	var rateErr *queue.RateLimitError
	switch {
	case errors.As(err, &rateErr):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":  rateErr.Message,
			"tier":   rateErr.Tier,
			"window": rateErr.Window,
			"limit":  rateErr.Limit,
		})
	case errors.Is(err, queue.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "queue item not found"})
	case errors.Is(err, queue.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "not your queue item"})
	case errors.Is(err, queue.ErrSchedulerUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler unavailable, try again later"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
