package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relaybot/internal/config"
	"relaybot/internal/entities"
	"relaybot/internal/infrastructure"
	"relaybot/internal/interfaces/http"
	"relaybot/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := infrastructure.NewLogger(cfg.LogLevel)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("relay bot stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := infrastructure.RouteBotAPILogs(log); err != nil {
		log.Warn("Bot API logs not redirected", zap.Error(err))
	}

	sentryEnabled, err := infrastructure.InitSentry(cfg.SentryDSN, cfg.SentryEnvironment)
	if err != nil {
		log.Warn("Sentry disabled", zap.Error(err))
	}
	if sentryEnabled {
		defer infrastructure.FlushSentry(2 * time.Second)
	}

	throttle := infrastructure.NewSendThrottle(cfg.TelegramSendRate, cfg.TelegramSendBurst)
	telegramClient, err := infrastructure.NewTelegramClient(cfg.BotToken, throttle, log)
	if err != nil {
		return err
	}
	log.Info("Telegram bot connected", zap.String("bot", telegramClient.Username()), zap.Int64("admin_id", cfg.AdminID))

	for _, path := range []string{cfg.WelcomeImage, cfg.AckImage} {
		if _, err := os.Stat(path); err != nil {
			log.Warn("image asset not readable, sends using it will fail", zap.String("path", path), zap.Error(err))
		}
	}

	sessions := infrastructure.NewReplySessionStore(cfg.ReplySessionTTL)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := infrastructure.NewMetrics(registry, sessions.Len)

	relay := usecases.NewRelayService(telegramClient, sessions, cfg.AdminID, usecases.Assets{
		WelcomeImage: entities.LocalFile(cfg.WelcomeImage),
		AckImage:     entities.LocalFile(cfg.AckImage),
	}, metrics, log)

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	http.SetupRoutes(r, relay, http.NewMiddleware(log, cfg.BotToken), http.RouteOptions{
		WebhookSecret: cfg.BotToken,
		Registry:      registry,
		SentryEnabled: sentryEnabled,
	})

	server := &nethttp.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	webhooks := infrastructure.NewWebhookManager(telegramClient, cfg.WebhookURL(), log)
	if err := webhooks.Register(context.Background()); err != nil {
		shutdownServer(server, cfg.ShutdownTimeout, log)
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			_ = webhooks.Deregister(context.Background())
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownServer(server, cfg.ShutdownTimeout, log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := webhooks.Deregister(ctx); err != nil {
		log.Warn("Webhook not deleted", zap.Error(err))
	}
	log.Info("Relay bot stopped")
	return nil
}

func shutdownServer(server *nethttp.Server, timeout time.Duration, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warn("HTTP server shutdown incomplete", zap.Error(err))
	}
}
