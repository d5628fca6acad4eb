package checks

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/memberhub/internal/database"
	"github.com/charlesng35/memberhub/internal/monitoring"
)

const defaultDatabaseTimeout = 2 * time.Second

// Database returns a probe that pings the primary database. The database is
// required, so any failure, including a timeout, reports down.
func Database(db *gorm.DB, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if db == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "database not configured"}
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout, defaultDatabaseTimeout))
		defer cancel()

		result := monitoring.ResultFromError("database", database.Ping(probeCtx, db), time.Since(start))
		if result.Status == monitoring.StatusDegraded {
			result.Status = monitoring.StatusDown
		}
		return result
	})
}

func chooseTimeout(provided, fallback time.Duration) time.Duration {
	if provided <= 0 {
		return fallback
	}
	return provided
}
