// Package integration runs the HTTP API against a real PostgreSQL database
// started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stockroute/backend/internal/infrastructure/config"
	"github.com/stockroute/backend/internal/infrastructure/logger"
	"github.com/stockroute/backend/internal/infrastructure/migration"
	"github.com/stockroute/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormlogger "gorm.io/gorm/logger"
)

const (
	pgImage    = "postgres:16-alpine"
	pgDatabase = "stockroute_test"
	pgUser     = "stockroute"
	pgPassword = "stockroute"
)

// NewTestDB starts a throwaway PostgreSQL, applies the embedded schema and
// opens it the way the server does. Everything is torn down with the test.
// Set TEST_DB_DEBUG to trace every statement.
func NewTestDB(t *testing.T) *persistence.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("needs docker; skipped with -short")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, pgImage,
		tcpostgres.WithDatabase(pgDatabase),
		tcpostgres.WithUsername(pgUser),
		tcpostgres.WithPassword(pgPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host: host, Port: port.Int(),
		User: pgUser, Password: pgPassword, DBName: pgDatabase, SSLMode: "disable",
		MaxOpenConns: 20, MaxIdleConns: 5, ConnMaxLifetime: 5, ConnMaxIdleTime: 1,
	}
	migrate(t, cfg.DSN())

	level := gormlogger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
	}
	db, err := persistence.NewDatabase(&cfg, logger.NewGormLogger(zaptest.NewLogger(t), level))
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// migrate runs on its own connection since closing the migrator closes it.
func migrate(t *testing.T, dsn string) {
	t.Helper()
	conn, err := sql.Open("postgres", dsn)
	require.NoError(t, err)

	m, err := migration.NewEmbedded(conn, zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = m.Close() }()
	require.NoError(t, m.Up(), "apply migrations")
}
