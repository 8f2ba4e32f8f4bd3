package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "stockroute", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "stockroute", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 3, cfg.Sales.MaxAttempts)
		assert.Equal(t, 10*time.Second, cfg.Sales.SettlementLockTTL)
		assert.Equal(t, int64(10), cfg.Inventory.LowStockThreshold)
		assert.Equal(t, 14, cfg.Inventory.ExpiringWithinDays)
		assert.Equal(t, int64(1), cfg.Inventory.ExpiringMinQty)
		assert.Equal(t, 180*24*time.Hour, cfg.Inventory.OrderRetention)
		assert.False(t, cfg.Redis.Enabled)
		assert.False(t, cfg.Queue.Enabled)
		assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "Idempotency-Key")
		assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
		assert.Equal(t, 10, cfg.HTTP.LoginRateLimit)
		assert.Equal(t, time.Minute, cfg.HTTP.LoginRateWindow)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.False(t, cfg.Telemetry.LogsEnabled)
		assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, "stockroute", cfg.Telemetry.ServiceName)
		assert.Equal(t, 200*time.Millisecond, cfg.Telemetry.DBSlowQueryThresh)
	})

	t.Run("loads values from environment variables with STOCKROUTE prefix", func(t *testing.T) {
		t.Setenv("STOCKROUTE_APP_PORT", "9000")
		t.Setenv("STOCKROUTE_DATABASE_HOST", "testdb.local")
		t.Setenv("STOCKROUTE_DATABASE_PORT", "5433")
		t.Setenv("STOCKROUTE_REDIS_ENABLED", "true")
		t.Setenv("STOCKROUTE_REDIS_HOST", "cache")
		t.Setenv("STOCKROUTE_SALES_MAX_ATTEMPTS", "5")
		t.Setenv("STOCKROUTE_INVENTORY_LOW_STOCK_THRESHOLD", "25")
		t.Setenv("STOCKROUTE_JWT_ACCESS_TOKEN_EXPIRATION", "2h")
		t.Setenv("STOCKROUTE_HTTP_LOGIN_RATE_LIMIT", "0")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "cache:6379", cfg.Redis.Addr())
		assert.Equal(t, 5, cfg.Sales.MaxAttempts)
		assert.Equal(t, int64(25), cfg.Inventory.LowStockThreshold)
		assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenExpiration)
		assert.Equal(t, 0, cfg.HTTP.LoginRateLimit)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("STOCKROUTE_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("STOCKROUTE_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("queue requires redis", func(t *testing.T) {
		t.Setenv("STOCKROUTE_QUEUE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis.enabled")
	})

	t.Run("telemetry sampling ratio is bounded", func(t *testing.T) {
		t.Setenv("STOCKROUTE_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry.sampling_ratio")
	})

	t.Run("storage requires a bucket", func(t *testing.T) {
		t.Setenv("STOCKROUTE_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})
}

func TestProductionValidation(t *testing.T) {
	valid := func(t *testing.T) {
		t.Setenv("STOCKROUTE_APP_ENV", "production")
		t.Setenv("STOCKROUTE_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("STOCKROUTE_DATABASE_PASSWORD", "secret")
		t.Setenv("STOCKROUTE_DATABASE_SSLMODE", "require")
	}

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "valid production config"},
		{name: "short jwt secret", env: map[string]string{"STOCKROUTE_JWT_SECRET": "short"}, wantErr: "at least 32"},
		{name: "missing db password", env: map[string]string{"STOCKROUTE_DATABASE_PASSWORD": ""}, wantErr: "database.password"},
		{name: "ssl disabled", env: map[string]string{"STOCKROUTE_DATABASE_SSLMODE": "disable"}, wantErr: "sslmode"},
		{name: "wildcard cors", env: map[string]string{"STOCKROUTE_HTTP_CORS_ALLOW_ORIGINS": "*"}, wantErr: "cors_allow_origins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "secret", DBName: "stockroute", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:secret@db:5432/stockroute?sslmode=disable", d.DSN())
}
