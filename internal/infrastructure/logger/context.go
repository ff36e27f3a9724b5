package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

// Context keys for the values L(ctx) turns into log fields.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	// PartnerIDKey holds the caller's partner profile id; staff callers have none
	PartnerIDKey contextKey = "partner_id"

	loggerKey contextKey = "logger"
)

// WithContext attaches the logger L(ctx) builds on
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the attached logger, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID records the request id. The attached logger is left alone:
// L(ctx) reads the value when it logs.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithCaller records the authenticated user and their partner profile id.
// A zero partnerID is not stored.
func WithCaller(ctx context.Context, userID string, partnerID int64) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	if partnerID > 0 {
		ctx = context.WithValue(ctx, PartnerIDKey, partnerID)
	}
	return ctx
}

func GetRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(RequestIDKey).(string)
	return requestID
}

func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetPartnerID returns 0 when the caller has no partner profile
func GetPartnerID(ctx context.Context) int64 {
	partnerID, _ := ctx.Value(PartnerIDKey).(int64)
	return partnerID
}

// GetTraceID returns the active span's trace id, or "" without one
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the active span's id, or "" without one
func GetSpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}

func traceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}

// contextFields collects the correlation fields present on ctx
func contextFields(ctx context.Context) []zap.Field {
	fields := traceFields(ctx)
	if v := GetRequestID(ctx); v != "" {
		fields = append(fields, zap.String("request_id", v))
	}
	if v := GetPartnerID(ctx); v > 0 {
		fields = append(fields, zap.Int64("partner_id", v))
	}
	if v := GetUserID(ctx); v != "" {
		fields = append(fields, zap.String("user_id", v))
	}
	return fields
}

// WithTraceContext adds trace_id and span_id from the active span.
// Without a valid span the logger is returned unchanged.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if fields := traceFields(ctx); len(fields) > 0 {
		return logger.With(fields...)
	}
	return logger
}

// ContextLogger writes entries carrying the correlation fields of its context:
// trace_id, span_id, request_id, partner_id and user_id.
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L wraps the logger attached to ctx.
//
//	logger.L(ctx).Info("payout created", zap.String("payout_id", id))
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: FromContext(ctx)}
}

// WithLogger is L with an explicit base logger
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextLogger{ctx: ctx, logger: logger}
}

func (cl *ContextLogger) enriched() *zap.Logger {
	if fields := contextFields(cl.ctx); len(fields) > 0 {
		return cl.logger.With(fields...)
	}
	return cl.logger
}

// With returns a child carrying extra fields
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, logger: cl.logger.With(fields...)}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) { cl.enriched().Debug(msg, fields...) }
func (cl *ContextLogger) Info(msg string, fields ...zap.Field) { cl.enriched().Info(msg, fields...) }
func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) { cl.enriched().Warn(msg, fields...) }
func (cl *ContextLogger) Error(msg string, fields ...zap.Field) { cl.enriched().Error(msg, fields...) }

// Zap returns the enriched zap.Logger, for APIs that take one
func (cl *ContextLogger) Zap() *zap.Logger {
	return cl.enriched()
}

func (cl *ContextLogger) Sugar() *zap.SugaredLogger {
	return cl.enriched().Sugar()
}
