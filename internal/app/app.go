// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyellow/gourmet-linebot-go/internal/bot"
	"github.com/garyellow/gourmet-linebot-go/internal/buildinfo"
	"github.com/garyellow/gourmet-linebot-go/internal/config"
	"github.com/garyellow/gourmet-linebot-go/internal/hotpepper"
	"github.com/garyellow/gourmet-linebot-go/internal/logger"
	"github.com/garyellow/gourmet-linebot-go/internal/metrics"
	"github.com/garyellow/gourmet-linebot-go/internal/modules/gourmet"
	"github.com/garyellow/gourmet-linebot-go/internal/ratelimit"
	"github.com/garyellow/gourmet-linebot-go/internal/sentry"
	"github.com/garyellow/gourmet-linebot-go/internal/webhook"
)

// rootGreeting is the fixed body served on GET /.
const rootGreeting = "hello world"

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg            *config.Config
	logger         *logger.Logger
	metrics        *metrics.Metrics
	registry       *prometheus.Registry
	chatLimiter    *ratelimit.KeyedLimiter
	webhookHandler *webhook.Handler
	router         *gin.Engine
	server         *http.Server
	shuttingDown   atomic.Bool
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	log = log.WithField("service", cfg.ServiceName)
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog.*Context() calls get the context fields too
	slog.SetDefault(log.Logger)

	log.WithField("release", buildinfo.Release()).Info("Initializing application...")
	if cfg.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Release(),
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed; error reporting disabled")
	} else if sentry.IsEnabled() {
		log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error reporting enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	searchClient := hotpepper.NewClient(hotpepper.Config{
		APIKey:     cfg.HotPepperAPIKey,
		GourmetURL: cfg.GourmetURL,
		GenreURL:   cfg.GenreURL,
		Timeout:    cfg.SearchTimeout,
		Metrics:    m,
		Logger:     log,
	})

	gourmetHandler := gourmet.NewHandler(searchClient, log,
		gourmet.WithResultLimit(cfg.SearchResultLimit),
		gourmet.WithSearchRange(cfg.SearchRange),
	)

	chatLimiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "chat",
		Burst:         cfg.Bot.ChatBurst,
		RefillRate:    cfg.Bot.ChatRefill,
		DailyLimit:    cfg.Bot.ChatDailyLimit,
		CleanupPeriod: config.RateLimiterCleanup,
		Metrics:       m,
	})

	processor := bot.NewProcessor(bot.ProcessorConfig{
		Handler:     gourmetHandler,
		ChatLimiter: chatLimiter,
		Logger:      log,
		Metrics:     m,
		BotConfig:   &cfg.Bot,
	})

	messenger, err := webhook.NewLineMessenger(cfg.LineChannelToken, config.LineAPIRequest)
	if err != nil {
		chatLimiter.Stop()
		return nil, fmt.Errorf("webhook: %w", err)
	}

	webhookHandler := webhook.NewHandler(webhook.HandlerConfig{
		ChannelSecret: cfg.LineChannelSecret,
		Messenger:     messenger,
		Processor:     processor,
		BotConfig:     &cfg.Bot,
		Metrics:       m,
		Logger:        log,
	})

	app := &Application{
		cfg:            cfg,
		logger:         log,
		metrics:        m,
		registry:       registry,
		chatLimiter:    chatLimiter,
		webhookHandler: webhookHandler,
	}
	app.router = app.setupRouter()

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: config.WebhookHTTPRead,
		ReadTimeout:       config.WebhookHTTPRead,
		WriteTimeout:      config.WebhookHTTPWrite,
		IdleTimeout:       config.WebhookHTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

func (a *Application) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		// Repanic so gin.Recovery still answers 500
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger))

	router.GET("/", a.root)
	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	router.POST("/callback", a.webhookHandler.Handle)
	router.POST("/webhook", a.webhookHandler.Handle)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsAuthEnabled(), a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	return router
}

func (a *Application) root(c *gin.Context) {
	c.String(http.StatusOK, rootGreeting)
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// readinessCheck reports ready until shutdown starts, so load balancers
// stop routing webhooks while in-flight events drain.
func (a *Application) readinessCheck(c *gin.Context) {
	if a.shuttingDown.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "shutting down",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"release": buildinfo.Release(),
		"features": gin.H{
			"sentry":       sentry.IsEnabled(),
			"betterstack":  a.cfg.BetterStackToken != "",
			"metrics_auth": a.cfg.MetricsAuthEnabled(),
		},
	})
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts down.
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-errCh:
		a.logger.WithError(err).Error("HTTP server error")
		_ = a.shutdown()
		return fmt.Errorf("http server: %w", err)
	}

	return a.shutdown()
}

// shutdown stops accepting requests, drains webhook events, then flushes
// Sentry and the logger. Components are closed in dependency order.
func (a *Application) shutdown() error {
	a.shuttingDown.Store(true)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Waiting for webhook events to complete...")
	if err := a.webhookHandler.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Webhook handler shutdown timeout")
	}

	a.chatLimiter.Stop()

	if sentry.IsEnabled() && !sentry.Flush(config.SentryFlush) {
		a.logger.Warn("Sentry flush timed out")
	}

	a.logger.Info("Shutdown complete")
	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("logger shutdown: %w", err)
	}
	return nil
}
