package http

import (
	"context"
	"net/http"

	"relaybot/internal/entities"
	"relaybot/internal/infrastructure"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Telegram updates are small JSON documents; media is referenced by file id
const maxUpdateSize = 1 << 20

// EventHandler consumes decoded updates
type EventHandler interface {
	HandleEvent(ctx context.Context, ev entities.Event) error
}

type Handler struct {
	relay EventHandler
	log   *zap.Logger
}

func NewHandler(relay EventHandler, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{relay: relay, log: log.With(zap.String("component", "webhook"))}
}

// RouteOptions configures SetupRoutes
type RouteOptions struct {
	WebhookSecret string               // last segment of /webhook/<secret>, the bot token
	Registry      *prometheus.Registry // nil disables /metrics
	SentryEnabled bool
}

func SetupRoutes(r *gin.Engine, relay EventHandler, middleware *Middleware, opts RouteOptions) {
	h := NewHandler(relay, middleware.log)

	r.Use(gin.Recovery())
	if opts.SentryEnabled {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.RequestLogger())
	r.Use(SecurityHeaders())

	// tokens contain ':' so the secret is matched as a parameter, not a literal route
	r.POST("/webhook/:secret", WebhookSecret(opts.WebhookSecret), RequestSizeLimiter(maxUpdateSize), h.HandleTelegramUpdate)
	r.GET("/healthz", h.Health)
	if opts.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}
}

// HandleTelegramUpdate processes one pushed update. Telegram redelivers
// anything not answered with 2xx, so handling failures still get 200.
func (h *Handler) HandleTelegramUpdate(c *gin.Context) {
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
		return
	}

	event, ok := infrastructure.ParseUpdate(update)
	if !ok {
		h.log.Debug("update ignored", zap.Int("update_id", update.UpdateID))
		c.Status(http.StatusOK)
		return
	}

	if err := h.relay.HandleEvent(c.Request.Context(), event); err != nil {
		_ = c.Error(err)
	}
	c.Status(http.StatusOK)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
