package fetch

import (
	"context"

	"golang.org/x/time/rate"
)

// newBurstLimiter returns a token-bucket limiter used as a secondary guard
// alongside each client's sliding-window ratelimit.Limiter. The window
// limiter enforces the service's documented quota; this one smooths out
// bursts within that quota so a slow HTTP round trip doesn't let an entire
// window's worth of requests fire back to back the moment it opens.
func newBurstLimiter(perSecond float64, burst int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func waitBurst(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}
