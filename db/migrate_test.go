package db

import (
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToPgx5URL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{"postgresql://u:p@localhost/db", "pgx5://u:p@localhost/db"},
		{"pgx5://already", "pgx5://already"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, convertToPgx5URL(tt.in))
	}
}

func TestMigrationFilesArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationFiles, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Equal(t, len(ups), len(downs))
}

func TestDatabaseClient_ConnectWithoutConfig(t *testing.T) {
	dc := NewDatabaseClient(nil)
	_, err := dc.Connect(t.Context())
	assert.Error(t, err)
	assert.Nil(t, dc.GetPool())
}

func TestNewDatabaseClient_Defaults(t *testing.T) {
	cfg := &pgxpool.Config{}
	dc := NewDatabaseClient(cfg)
	assert.Equal(t, 5, dc.maxRetries)
	assert.Same(t, cfg, dc.config)
	dc.Close()
}
