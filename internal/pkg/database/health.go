package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// HealthChecker reports backing store reachability for /health
type HealthChecker struct {
	db    *sqlx.DB
	redis *redis.Client
}

// NewHealthChecker creates a checker; redis may be nil
func NewHealthChecker(db *sqlx.DB, redis *redis.Client) *HealthChecker {
	return &HealthChecker{db: db, redis: redis}
}

// Check pings each store and returns "ok", "down" or "disabled" per component
func (h *HealthChecker) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{"postgres": "ok", "redis": "disabled"}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		status["postgres"] = "down"
		healthy = false
	}

	if h.redis != nil {
		status["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
			healthy = false
		}
	}

	return status, healthy
}
