package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serveLogged(t *testing.T, level zapcore.Level, handler gin.HandlerFunc, target string) (*httptest.ResponseRecorder, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(level)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-test")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/orders", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w, recorded
}

func findRequestLog(t *testing.T, recorded *observer.ObservedLogs) *observer.LoggedEntry {
	t.Helper()
	for _, entry := range recorded.All() {
		if entry.Message == "HTTP Request" {
			e := entry
			return &e
		}
	}
	t.Fatal("no HTTP Request entry logged")
	return nil
}

func TestGinMiddleware_LogsRequest(t *testing.T) {
	w, recorded := serveLogged(t, zapcore.InfoLevel, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": []string{}})
	}, "/orders")

	assert.Equal(t, http.StatusOK, w.Code)

	entry := findRequestLog(t, recorded)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	fields := make(map[string]zapcore.Field)
	for _, f := range entry.Context {
		fields[f.Key] = f
	}
	assert.Equal(t, "req-test", fields["request_id"].String)
	for _, key := range []string{"status", "latency", "client_ip", "user_agent", "method", "path"} {
		assert.Contains(t, fields, key)
	}
}

func TestGinMiddleware_LogsQueryString(t *testing.T) {
	_, recorded := serveLogged(t, zapcore.InfoLevel, func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, "/orders?status=PENDING&page=2")

	entry := findRequestLog(t, recorded)
	found := false
	for _, f := range entry.Context {
		if f.Key == "query" {
			found = true
			assert.Contains(t, f.String, "status=PENDING")
		}
	}
	assert.True(t, found)
}

func TestGinMiddleware_ClientErrorLogsWarn(t *testing.T) {
	w, recorded := serveLogged(t, zapcore.WarnLevel, func(c *gin.Context) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid"})
	}, "/orders")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, zapcore.WarnLevel, findRequestLog(t, recorded).Level)
}

func TestGinMiddleware_ServerErrorLogsError(t *testing.T) {
	w, recorded := serveLogged(t, zapcore.ErrorLevel, func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	}, "/orders")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, zapcore.ErrorLevel, findRequestLog(t, recorded).Level)
}

func TestGinMiddleware_PropagatesRequestContext(t *testing.T) {
	var inner *zap.Logger
	var requestID string
	_, _ = serveLogged(t, zapcore.InfoLevel, func(c *gin.Context) {
		inner = FromContext(c.Request.Context())
		requestID = GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	}, "/orders")

	require.NotNil(t, inner)
	assert.Equal(t, "req-test", requestID)
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
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)

	assert.NotPanics(t, func() {
		router.ServeHTTP(w, req)
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Contains(t, logs[0].Message, "Panic recovered")
}

func TestGetGinLogger(t *testing.T) {
	var retrieved *zap.Logger
	_, _ = serveLogged(t, zapcore.InfoLevel, func(c *gin.Context) {
		retrieved = GetGinLogger(c)
		c.Status(http.StatusOK)
	}, "/orders")

	assert.NotNil(t, retrieved)
}

func TestGetGinLogger_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	retrieved := GetGinLogger(c)
	require.NotNil(t, retrieved)
	assert.NotPanics(t, func() {
		retrieved.Info("no-op")
	})
}
