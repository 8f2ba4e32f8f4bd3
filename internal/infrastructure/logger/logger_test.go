package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockroute/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	l, err := New(config.LogConfig{Level: "debug", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	path := filepath.Join(t.TempDir(), "app.log")
	l, err = New(config.LogConfig{Level: "warn", Format: "json", Output: path})
	require.NoError(t, err)
	l.Warn("written")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written"`)

	_, err = New(config.LogConfig{Output: filepath.Join(t.TempDir(), "missing", "dir", "app.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
}

func TestRequestScope(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	assert.NotNil(t, FromContext(context.Background()))
	assert.Empty(t, RequestIDFrom(context.Background()))

	ctx, _ := WithRequest(context.Background(), base, "req-1")
	ctx = WithUser(ctx, "user-9")
	assert.Equal(t, "req-1", RequestIDFrom(ctx))
	assert.Equal(t, "user-9", UserIDFrom(ctx))

	FromContext(ctx).With(zap.String("sale", "S-1")).Info("settled")

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "user-9", fields["user_id"])
	assert.Equal(t, "S-1", fields["sale"])
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	var fromCtx string
	router := gin.New()
	router.Use(RequestID(), GinMiddleware(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) {
		fromCtx = RequestIDFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})
	router.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", fromCtx)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	entries := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestGormLogger_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(10*time.Millisecond))
	ctx, _ := WithRequest(context.Background(), zap.NewNop(), "req-7")

	gl.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 1", 1 }, nil)
	slow := recorded.All()
	require.Len(t, slow, 1)
	assert.Equal(t, zapcore.WarnLevel, slow[0].Level)
	assert.Equal(t, "slow query", slow[0].Message)
	assert.Equal(t, "req-7", slow[0].ContextMap()["request_id"])

	gl.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gormlogger.ErrRecordNotFound)
	assert.Len(t, recorded.All(), 1)

	gl.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 2", 0 }, assert.AnError)
	require.Len(t, recorded.All(), 2)
	assert.Equal(t, "query failed", recorded.All()[1].Message)

	quiet := gl.LogMode(gormlogger.Silent)
	quiet.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Len(t, recorded.All(), 2)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
}
