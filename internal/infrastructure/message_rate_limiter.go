package infrastructure

import (
	"context"

	"golang.org/x/time/rate"
)

// Telegram allows a bot roughly 30 messages per second across all chats.
const (
	DefaultSendRate  = 30
	DefaultSendBurst = 30
)

// SendThrottle paces outbound Bot API calls so bursts of relayed messages
// stay under the platform's global send limit.
type SendThrottle struct {
	limiter *rate.Limiter
}

// NewSendThrottle creates a throttle allowing ratePerSec calls per second with
// the given burst. A non-positive rate disables throttling.
func NewSendThrottle(ratePerSec float64, burst int) *SendThrottle {
	if ratePerSec <= 0 {
		return &SendThrottle{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < 1 {
		burst = 1
	}
	return &SendThrottle{limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst)}
}

// Wait blocks until a call may proceed or ctx is done
func (t *SendThrottle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}
