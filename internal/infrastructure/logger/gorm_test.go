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

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func traceQuery(rows int64) func() (string, int64) {
	return func() (string, int64) {
		return "SELECT * FROM purchase_orders WHERE status = ?", rows
	}
}

func TestGormLoggerOptions(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false))

	assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)
}

func TestGormLogger_LogMode_CopiesLogger(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Info)

	clone := gl.LogMode(gormlogger.Warn)

	assert.Equal(t, gormlogger.Info, gl.logLevel)
	cloned, ok := clone.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, cloned.logLevel)
}

func TestGormLogger_LevelGating(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Silent)
	gl.Info(context.Background(), "suppressed")
	gl.Warn(context.Background(), "suppressed")
	assert.Empty(t, recorded.All())

	gl, recorded = newObservedGormLogger(gormlogger.Info)
	gl.Info(context.Background(), "query planner chose %s", "seq scan")

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "seq scan")
}

func TestGormLogger_Trace_Error(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), traceQuery(0), errors.New("deadlock detected"))

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "SQL Error")
}

func TestGormLogger_Trace_RecordNotFoundIgnored(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Error, WithIgnoreRecordNotFoundError(true))

	gl.Trace(context.Background(), time.Now(), traceQuery(0), gormlogger.ErrRecordNotFound)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_Trace_SlowQuery(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

	gl.Trace(context.Background(), time.Now().Add(-time.Second), traceQuery(10), nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "SLOW SQL")
}

func TestGormLogger_Trace_NormalQuery(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Info)

	gl.Trace(context.Background(), time.Now(), traceQuery(5), nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "SQL Query")
}

func TestGormLogger_Trace_Silent(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), traceQuery(5), nil)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_Trace_CorrelatesContext(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Info)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	ctx = context.WithValue(ctx, ActorIDKey, "actor-7")

	gl.Trace(ctx, time.Now(), traceQuery(5), nil)

	logs := recorded.All()
	require.Len(t, logs, 1)

	fields := map[string]string{}
	for _, f := range logs[0].Context {
		if f.Key == "request_id" || f.Key == "actor_id" {
			fields[f.Key] = f.String
		}
	}
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "actor-7", fields["actor_id"])
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
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}
