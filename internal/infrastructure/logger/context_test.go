package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// newObservedContextLogger returns a debug-level logger plus the
// observer capturing its entries.
func newObservedContextLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, recorded := observer.New(zap.DebugLevel)
	return zap.New(core), recorded
}

// fieldValue digs a string field out of the first recorded entry.
func fieldValue(t *testing.T, recorded *observer.ObservedLogs, key string) string {
	t.Helper()
	entries := recorded.All()
	require.NotEmpty(t, entries)
	for _, f := range entries[0].Context {
		if f.Key == key {
			return f.String
		}
	}
	return ""
}

func TestLoggerContextPlumbing(t *testing.T) {
	t.Run("round-trips the logger through the context", func(t *testing.T) {
		base, _ := newObservedContextLogger()
		ctx := WithContext(context.Background(), base)

		assert.Same(t, base, FromContext(ctx))
	})

	t.Run("falls back to a no-op logger", func(t *testing.T) {
		log := FromContext(context.Background())

		assert.NotNil(t, log)
		assert.NotPanics(t, func() {
			log.Info("nothing attached")
			log.With(zap.String("key", "value")).Warn("still fine")
		})
	})

	t.Run("falls back when the stored value has the wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")

		log := FromContext(ctx)
		assert.NotNil(t, log)
		assert.NotPanics(t, func() { log.Info("test") })
	})

	t.Run("context keys are distinct", func(t *testing.T) {
		assert.NotEqual(t, LoggerKey, RequestIDKey)
		assert.NotEqual(t, RequestIDKey, EmployeeIDKey)
		assert.NotEqual(t, LoggerKey, EmployeeIDKey)
	})
}

func TestWithRequestID(t *testing.T) {
	base, recorded := newObservedContextLogger()

	ctx, enriched := WithRequestID(context.Background(), base, "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))

	// The enriched logger is also the one stored in the context.
	FromContext(ctx).Info("probe")
	assert.NotSame(t, base, enriched)
	assert.Equal(t, "req-123", fieldValue(t, recorded, "request_id"))
}

func TestWithEmployeeID(t *testing.T) {
	base, recorded := newObservedContextLogger()

	ctx, enriched := WithEmployeeID(context.Background(), base, "emp-42")

	assert.Equal(t, "emp-42", GetEmployeeID(ctx))

	enriched.Info("probe")
	assert.Equal(t, "emp-42", fieldValue(t, recorded, "employee_id"))
}

func TestContextValueLookups(t *testing.T) {
	t.Run("empty context yields empty ids", func(t *testing.T) {
		assert.Empty(t, GetRequestID(context.Background()))
		assert.Empty(t, GetEmployeeID(context.Background()))
	})

	t.Run("later request id wins", func(t *testing.T) {
		base, _ := newObservedContextLogger()
		ctx := context.Background()

		ctx, _ = WithRequestID(ctx, base, "first-id")
		assert.Equal(t, "first-id", GetRequestID(ctx))

		ctx, _ = WithRequestID(ctx, base, "second-id")
		assert.Equal(t, "second-id", GetRequestID(ctx))
	})
}

func TestContextLogger(t *testing.T) {
	t.Run("L appends the request id at log time", func(t *testing.T) {
		base, recorded := newObservedContextLogger()
		ctx, _ := WithRequestID(context.Background(), base, "req-abc")

		L(ctx).Info("hello")

		assert.Equal(t, "req-abc", fieldValue(t, recorded, "request_id"))
	})

	t.Run("L appends the employee id at log time", func(t *testing.T) {
		base, recorded := newObservedContextLogger()
		ctx, _ := WithEmployeeID(context.Background(), base, "emp-7")

		L(ctx).Info("hello")

		assert.Equal(t, "emp-7", fieldValue(t, recorded, "employee_id"))
	})

	t.Run("WithLogger keeps the explicit logger", func(t *testing.T) {
		base, recorded := newObservedContextLogger()

		WithLogger(context.Background(), base).Info("direct logger")

		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, "direct logger", recorded.All()[0].Message)
	})

	t.Run("With carries extra fields", func(t *testing.T) {
		base, recorded := newObservedContextLogger()

		WithLogger(context.Background(), base).
			With(zap.String("component", "ledger")).
			Info("with field")

		assert.Equal(t, "ledger", fieldValue(t, recorded, "component"))
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		cl := &ContextLogger{ctx: context.Background()}

		assert.NotPanics(t, func() {
			cl.Info("no logger attached")
		})
	})

	t.Run("Zap and Sugar expose correlated loggers", func(t *testing.T) {
		base, _ := newObservedContextLogger()
		cl := WithLogger(context.Background(), base)

		assert.NotNil(t, cl.Zap())
		assert.NotNil(t, cl.Sugar())
	})
}
