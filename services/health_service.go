package services

import (
	"context"
	"time"

	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const checkTimeout = 2 * time.Second

// Pinger is anything that can report whether its backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService reports the state of the store, Redis and the worker pool.
type HealthService struct {
	store     Pinger
	redis     redis.UniversalClient
	pool      *WorkerPool
	version   string
	startTime time.Time
	log       *zap.SugaredLogger
}

// NewHealthService creates a health service. redisClient and pool may be nil.
func NewHealthService(store Pinger, redisClient redis.UniversalClient, pool *WorkerPool, version string) *HealthService {
	return &HealthService{
		store:     store,
		redis:     redisClient,
		pool:      pool,
		version:   version,
		startTime: time.Now(),
		log:       logger.GetLogger().Named("health"),
	}
}

// CheckHealth runs every check. The store being down makes the service DOWN;
// Redis and the worker pool only degrade it, since rate limiting fails open
// and events are best effort.
func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := map[string]types.HealthComponent{
		"store": h.checkStore(ctx),
	}
	if h.redis != nil {
		components["redis"] = h.checkRedis(ctx)
	}
	if h.pool != nil {
		components["worker_pool"] = h.checkPool()
	}

	status := types.HealthStatusUp
	for name, c := range components {
		switch {
		case c.Status == types.HealthStatusDown && name == "store":
			status = types.HealthStatusDown
		case c.Status != types.HealthStatusUp && status == types.HealthStatusUp:
			status = types.HealthStatusDegraded
		}
	}

	return types.HealthCheck{
		Status:     status,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

// Ready reports whether the service can take traffic, which needs the store.
func (h *HealthService) Ready(ctx context.Context) bool {
	return h.checkStore(ctx).Status == types.HealthStatusUp
}

func (h *HealthService) checkStore(ctx context.Context) types.HealthComponent {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Errorw("Store health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Database connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := h.redis.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) checkPool() types.HealthComponent {
	if !h.pool.IsRunning() {
		return types.HealthComponent{Status: types.HealthStatusDown, Details: "Worker pool stopped"}
	}
	if size := h.pool.config.QueueSize; size > 0 && h.pool.QueueDepth()*10 >= size*9 {
		return types.HealthComponent{Status: types.HealthStatusDegraded, Details: "Notification queue near capacity"}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}
