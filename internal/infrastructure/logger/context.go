package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey keeps this package's context values from colliding with
// string keys used elsewhere.
type contextKey string

const (
	// LoggerKey stores the request-scoped logger.
	LoggerKey contextKey = "logger"
	// RequestIDKey stores the request id.
	RequestIDKey contextKey = "request_id"
	// EmployeeIDKey stores the id of the acting clerk.
	EmployeeIDKey contextKey = "employee_id"
)

// WithContext attaches a logger to the context.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext returns the attached logger, or a no-op logger when the
// context carries none.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request id and returns the context together
// with a logger that tags every entry with it.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithEmployeeID stores the acting clerk and returns the context together
// with a logger that tags every entry with them.
func WithEmployeeID(ctx context.Context, logger *zap.Logger, employeeID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, EmployeeIDKey, employeeID)
	enriched := logger.With(zap.String("employee_id", employeeID))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID returns the request id stored in the context, if any.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetEmployeeID returns the acting clerk stored in the context, if any.
func GetEmployeeID(ctx context.Context) string {
	if employeeID, ok := ctx.Value(EmployeeIDKey).(string); ok {
		return employeeID
	}
	return ""
}

// ContextLogger logs with automatic correlation: request_id and
// employee_id are read from the context at log time and appended to
// every entry. Event projections use it so activity rows can be traced
// back to the request that caused them.
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L builds a ContextLogger around the logger stored in ctx.
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{
		ctx:    ctx,
		logger: FromContext(ctx),
	}
}

// WithLogger builds a ContextLogger around an explicit logger, keeping
// ctx only for correlation fields.
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	return &ContextLogger{
		ctx:    ctx,
		logger: logger,
	}
}

func (cl *ContextLogger) correlated() *zap.Logger {
	l := cl.logger
	if l == nil {
		l = zap.NewNop()
	}

	if requestID := GetRequestID(cl.ctx); requestID != "" {
		l = l.With(zap.String("request_id", requestID))
	}

	if employeeID := GetEmployeeID(cl.ctx); employeeID != "" {
		l = l.With(zap.String("employee_id", employeeID))
	}

	return l
}

// With returns a child logger carrying additional fields.
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{
		ctx:    cl.ctx,
		logger: cl.logger.With(fields...),
	}
}

// Debug logs at debug level with correlation fields.
func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) {
	cl.correlated().Debug(msg, fields...)
}

// Info logs at info level with correlation fields.
func (cl *ContextLogger) Info(msg string, fields ...zap.Field) {
	cl.correlated().Info(msg, fields...)
}

// Warn logs at warn level with correlation fields.
func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) {
	cl.correlated().Warn(msg, fields...)
}

// Error logs at error level with correlation fields.
func (cl *ContextLogger) Error(msg string, fields ...zap.Field) {
	cl.correlated().Error(msg, fields...)
}

// Fatal logs at fatal level and exits.
func (cl *ContextLogger) Fatal(msg string, fields ...zap.Field) {
	cl.correlated().Fatal(msg, fields...)
}

// Panic logs at panic level and panics.
func (cl *ContextLogger) Panic(msg string, fields ...zap.Field) {
	cl.correlated().Panic(msg, fields...)
}

// Zap exposes the correlated *zap.Logger for APIs that require one.
func (cl *ContextLogger) Zap() *zap.Logger {
	return cl.correlated()
}

// Sugar exposes a correlated sugared logger.
func (cl *ContextLogger) Sugar() *zap.SugaredLogger {
	return cl.correlated().Sugar()
}
