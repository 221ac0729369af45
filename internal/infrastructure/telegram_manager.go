package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"relaybot/internal/interfaces"

	"go.uber.org/zap"
)

// WebhookManager registers the webhook once at startup and removes it once at
// shutdown.
type WebhookManager struct {
	gateway    interfaces.Gateway
	url        string
	log        *zap.Logger
	registered bool
	mu         sync.Mutex
}

func NewWebhookManager(gateway interfaces.Gateway, url string, log *zap.Logger) *WebhookManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookManager{gateway: gateway, url: url, log: log.With(zap.String("component", "webhook"))}
}

// Register points Telegram at the webhook URL. Calling it again is a no-op.
func (m *WebhookManager) Register(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}
	if err := m.gateway.RegisterWebhook(ctx, m.url); err != nil {
		return fmt.Errorf("register webhook: %w", err)
	}
	m.registered = true
	m.log.Info("webhook registered")
	return nil
}

// Deregister removes the webhook if Register succeeded earlier
func (m *WebhookManager) Deregister(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.registered {
		return nil
	}
	if err := m.gateway.DeleteWebhook(ctx); err != nil {
		return fmt.Errorf("deregister webhook: %w", err)
	}
	m.registered = false
	m.log.Info("webhook deleted")
	return nil
}
