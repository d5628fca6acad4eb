package checks

import (
	"context"
	"time"

	"github.com/charlesng35/memberhub/internal/monitoring"
)

const defaultRedisTimeout = 2 * time.Second

// RedisPinger is the subset of the redis cache store used for probing.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// Redis returns a probe for the optional redis cache. Rate limiting falls back
// to the database when redis is unreachable, so failures report degraded.
func Redis(client RedisPinger, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("redis", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if client == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: "redis unavailable"}
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout, defaultRedisTimeout))
		defer cancel()

		result := monitoring.ResultFromError("redis", client.Ping(probeCtx), time.Since(start))
		if result.Status == monitoring.StatusDown {
			result.Status = monitoring.StatusDegraded
		}
		return result
	})
}
