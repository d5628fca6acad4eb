package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/charlesng35/memberhub/pkg/logger"
)

func newAccessLogRouter(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zap.InfoLevel)
	t.Cleanup(logger.Replace(zap.New(core)))

	r := gin.New()
	r.Use(RequestID(), Logger())
	return r, recorded
}

func TestLoggerRecordsIntentionRequest(t *testing.T) {
	r, recorded := newAccessLogRouter(t)
	r.GET("/api/intentios/:id", func(c *gin.Context) {
		c.Set(CtxUserIDKey, uint(7))
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/intentios/42", nil)
	req.Header.Set(RequestIDHeader, "req-intention-42")
	req.Header.Set("User-Agent", "memberhub-admin/1.0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	entries := recorded.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	require.Equal(t, zapcore.InfoLevel, entry.Level)
	require.Equal(t, "request", entry.Message)

	fields := entry.ContextMap()
	require.Equal(t, "http", fields["module"])
	require.Equal(t, "GET", fields["method"])
	require.Equal(t, "/api/intentios/42", fields["path"])
	require.EqualValues(t, http.StatusOK, fields["status"])
	require.Equal(t, "req-intention-42", fields["request_id"])
	require.EqualValues(t, 7, fields["user_id"])
	require.Equal(t, "memberhub-admin/1.0", fields["user_agent"])
}

func TestLoggerEscalatesServerErrors(t *testing.T) {
	r, recorded := newAccessLogRouter(t)
	r.POST("/api/intentios/:id/approve", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/intentios/1/approve", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	entries := recorded.All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	require.NotContains(t, entries[0].ContextMap(), "user_id")
	require.NotEmpty(t, entries[0].ContextMap()["request_id"])
}
