package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level), recorded
}

func selectCustomers() (string, int64) {
	return "SELECT * FROM local_customers", 3
}

func TestGormLoggerTraceQuery(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Info)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	ctx = context.WithValue(ctx, CustomerIDKey, "100500")
	gl.Trace(ctx, time.Now(), selectCustomers, nil)

	entries := recorded.FilterMessage("query").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "SELECT * FROM local_customers", fields["sql"])
	assert.Equal(t, int64(3), fields["rows"])
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "100500", fields["customer_id"])
}

func TestGormLoggerTraceError(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), selectCustomers, errors.New("database is locked"))

	entries := recorded.FilterMessage("query failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "database is locked", entries[0].ContextMap()["error"])
}

func TestGormLoggerTraceSkipsRecordNotFound(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), selectCustomers, gormlogger.ErrRecordNotFound)

	assert.Zero(t, recorded.Len(), "missing rows are routine, not errors")
}

func TestGormLoggerTraceSlowQuery(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Warn)

	begin := time.Now().Add(-slowQueryThreshold - time.Second)
	gl.Trace(context.Background(), begin, selectCustomers, nil)

	entries := recorded.FilterMessage("slow query").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestGormLoggerSilent(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), selectCustomers, errors.New("database is locked"))
	gl.Info(context.Background(), "ignored")
	gl.Warn(context.Background(), "ignored")
	gl.Error(context.Background(), "ignored")

	assert.Zero(t, recorded.Len())
}

func TestGormLoggerLogMode(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Silent)

	verbose := gl.LogMode(gormlogger.Info)
	verbose.Trace(context.Background(), time.Now(), selectCustomers, nil)

	assert.Equal(t, 1, recorded.FilterMessage("query").Len())
	// The original keeps its own level.
	gl.Trace(context.Background(), time.Now(), selectCustomers, nil)
	assert.Equal(t, 1, recorded.FilterMessage("query").Len())
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}
