package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/sevadesk/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(nil, Config{Level: "loud"})
	assert.Error(t, err)
}

func TestWithContextAddsRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithActor(ctx, "scheduler")

	WithPeriod(WithContext(ctx, zap.New(core)), 2024, 3).Info("done")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "scheduler", fields["actor"])
	assert.Equal(t, int64(2024), fields["year"])
	assert.Equal(t, int64(3), fields["month"])
	assert.NotContains(t, fields, "trace_id")
}

func TestWithInvoiceNil(t *testing.T) {
	assert.Nil(t, WithInvoice(nil, "TA0001"))
}

func TestGinMiddlewareAccessLine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{
		ErrorClassifier: func(err error) (string, string) { return "client", "invalid_frequency" },
	}))
	r.POST("/api/services", func(c *gin.Context) {
		c.Set("invoice_id", "TA0007")
		_ = c.Error(errors.New("bad frequency"))
		c.Status(http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/services", nil)
	req.Header.Set(requestIDHeader, "abc")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, "abc", resp.Header().Get(requestIDHeader))
	assert.NotEmpty(t, resp.Header().Get(obscontext.CorrelationHeader))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/services", fields["route"])
	assert.Equal(t, "TA0007", fields["invoice_id"])
	assert.Equal(t, "invalid_frequency", fields["error_code"])
	assert.Equal(t, "abc", fields["request_id"])
}

func TestAccessLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, accessLevel("/health", 200))
	assert.Equal(t, zapcore.InfoLevel, accessLevel("/api/catalog", 200))
	assert.Equal(t, zapcore.ErrorLevel, accessLevel("/api/reports/monthly", 500))
}

func TestGormLoggerLogsFailuresWithoutParams(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	gl := NewGormLogger()
	sql := func() (string, int64) { return `INSERT INTO service_records ("invoice_id") VALUES (?)`, 0 }

	gl.Trace(context.Background(), time.Now(), sql, errors.New("UNIQUE constraint failed"))
	gl.Trace(context.Background(), time.Now(), sql, nil)

	entries := logs.FilterMessage("gorm.query").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "INSERT", entries[0].ContextMap()["operation"])

	_, params := gl.ParamsFilter(context.Background(), "SELECT 1", "9876543210")
	assert.Nil(t, params)
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("WITH m AS (SELECT 1) SELECT * FROM m"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}
