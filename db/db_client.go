// Package db owns the PostgreSQL connection pool lifecycle and schema migrations.
package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DatabaseClient creates the pool once at startup, retrying while the database
// comes up, and closes it on shutdown.
type DatabaseClient struct {
	pool       *pgxpool.Pool
	config     *pgxpool.Config
	mu         sync.RWMutex
	maxRetries int
	retryDelay time.Duration
}

func NewDatabaseClient(config *pgxpool.Config) *DatabaseClient {
	return &DatabaseClient{
		config:     config,
		maxRetries: 5,
		retryDelay: time.Second,
	}
}

// Connect opens the pool and verifies it with a ping. Failed attempts back off linearly.
func (dc *DatabaseClient) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	if dc.config == nil {
		return nil, fmt.Errorf("database configuration not available")
	}
	log := logger.GetLogger()

	var lastErr error
	for attempt := 1; attempt <= dc.maxRetries; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, dc.config)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = pool.Ping(pingCtx)
			cancel()
			if err == nil {
				dc.mu.Lock()
				dc.pool = pool
				dc.mu.Unlock()
				log.Infow("Connected to database", "attempt", attempt)
				return pool, nil
			}
			pool.Close()
		}

		lastErr = err
		log.Warnw("Database connection attempt failed",
			"attempt", attempt,
			"max_attempts", dc.maxRetries,
			"error", err)

		if attempt < dc.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(dc.retryDelay * time.Duration(attempt)):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", dc.maxRetries, lastErr)
}

// GetPool returns the connected pool, or nil before Connect succeeds.
func (dc *DatabaseClient) GetPool() *pgxpool.Pool {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return dc.pool
}

func (dc *DatabaseClient) Close() {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.pool != nil {
		dc.pool.Close()
		dc.pool = nil
	}
}
