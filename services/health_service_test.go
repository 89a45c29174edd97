package services

import (
	"context"
	"errors"
	"testing"

	"github.com/NomadCrew/nomad-split-backend/config"
	"github.com/NomadCrew/nomad-split-backend/internal/store/postgres"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/go-redis/redismock/v9"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthService_CheckHealth(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(db pgxmock.PgxPoolIface, rdb redismock.ClientMock)
		expectedStatus types.HealthStatus
		expectedComps  map[string]types.HealthStatus
	}{
		{
			name: "all healthy",
			setupMocks: func(db pgxmock.PgxPoolIface, rdb redismock.ClientMock) {
				db.ExpectPing()
				rdb.ExpectPing().SetVal("PONG")
			},
			expectedStatus: types.HealthStatusUp,
			expectedComps: map[string]types.HealthStatus{
				"store": types.HealthStatusUp,
				"redis": types.HealthStatusUp,
			},
		},
		{
			name: "database down",
			setupMocks: func(db pgxmock.PgxPoolIface, rdb redismock.ClientMock) {
				db.ExpectPing().WillReturnError(errors.New("connection refused"))
				rdb.ExpectPing().SetVal("PONG")
			},
			expectedStatus: types.HealthStatusDown,
			expectedComps: map[string]types.HealthStatus{
				"store": types.HealthStatusDown,
				"redis": types.HealthStatusUp,
			},
		},
		{
			name: "redis down degrades",
			setupMocks: func(db pgxmock.PgxPoolIface, rdb redismock.ClientMock) {
				db.ExpectPing()
				rdb.ExpectPing().SetErr(errors.New("redis connection failed"))
			},
			expectedStatus: types.HealthStatusDegraded,
			expectedComps: map[string]types.HealthStatus{
				"store": types.HealthStatusUp,
				"redis": types.HealthStatusDown,
			},
		},
		{
			name: "everything down",
			setupMocks: func(db pgxmock.PgxPoolIface, rdb redismock.ClientMock) {
				db.ExpectPing().WillReturnError(errors.New("db error"))
				rdb.ExpectPing().SetErr(errors.New("redis error"))
			},
			expectedStatus: types.HealthStatusDown,
			expectedComps: map[string]types.HealthStatus{
				"store": types.HealthStatusDown,
				"redis": types.HealthStatusDown,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer db.Close()
			rdb, rmock := redismock.NewClientMock()

			tt.setupMocks(db, rmock)

			svc := NewHealthService(postgres.NewStore(db), rdb, nil, "1.2.3")
			result := svc.CheckHealth(context.Background())

			assert.Equal(t, tt.expectedStatus, result.Status)
			assert.Equal(t, "1.2.3", result.Version)
			assert.NotEmpty(t, result.Timestamp)
			require.Len(t, result.Components, len(tt.expectedComps))
			for name, status := range tt.expectedComps {
				assert.Equal(t, status, result.Components[name].Status, name)
			}

			assert.NoError(t, db.ExpectationsWereMet())
			assert.NoError(t, rmock.ExpectationsWereMet())
		})
	}
}

func TestHealthService_WorkerPool(t *testing.T) {
	resetWorkerPoolMetricsForTesting()
	pool := NewWorkerPool(config.WorkerPoolConfig{MaxWorkers: 1, QueueSize: 10})

	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer db.Close()
	db.ExpectPing()
	db.ExpectPing()

	svc := NewHealthService(postgres.NewStore(db), nil, pool, "dev")

	// Not started yet.
	result := svc.CheckHealth(context.Background())
	assert.Equal(t, types.HealthStatusDegraded, result.Status)
	assert.Equal(t, types.HealthStatusDown, result.Components["worker_pool"].Status)

	pool.Start()
	defer pool.Shutdown(context.Background())
	result = svc.CheckHealth(context.Background())
	assert.Equal(t, types.HealthStatusUp, result.Status)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestHealthService_Ready(t *testing.T) {
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer db.Close()
	db.ExpectPing()
	db.ExpectPing().WillReturnError(errors.New("down"))

	svc := NewHealthService(postgres.NewStore(db), nil, nil, "dev")
	assert.True(t, svc.Ready(context.Background()))
	assert.False(t, svc.Ready(context.Background()))
}
