package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL keeps bound variables in db.statement. Development only.
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBName          string
}

// DefaultDBTracingConfig returns the disabled, variable-free default.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBName:          "affiliate",
	}
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin, which opens one client
// span per statement, plus callbacks that mark statements slower than
// SlowQueryThresh on that span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if cfg.SlowQueryThresh > 0 {
		if err := registerSlowQueryMarker(db, cfg.SlowQueryThresh); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.String("db_name", cfg.DBName),
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

type callbackRegister interface {
	Register(name string, fn func(*gorm.DB)) error
}

// registerSlowQueryMarker hooks every statement kind. The after hook runs
// ahead of otelgorm's, which ends the span.
func registerSlowQueryMarker(db *gorm.DB, threshold time.Duration) error {
	cb := db.Callback()
	marker := slowQueryMarker{threshold: threshold}
	hooks := []struct {
		register callbackRegister
		name     string
		fn       func(*gorm.DB)
	}{
		{cb.Create().Before("gorm:create"), "before_create", markStart},
		{cb.Create().After("gorm:create").Before("otel:after:create"), "after_create", marker.after},
		{cb.Query().Before("gorm:query"), "before_query", markStart},
		{cb.Query().After("gorm:query").Before("otel:after:select"), "after_query", marker.after},
		{cb.Update().Before("gorm:update"), "before_update", markStart},
		{cb.Update().After("gorm:update").Before("otel:after:update"), "after_update", marker.after},
		{cb.Delete().Before("gorm:delete"), "before_delete", markStart},
		{cb.Delete().After("gorm:delete").Before("otel:after:delete"), "after_delete", marker.after},
		{cb.Row().Before("gorm:row"), "before_row", markStart},
		{cb.Row().After("gorm:row").Before("otel:after:row"), "after_row", marker.after},
		{cb.Raw().Before("gorm:raw"), "before_raw", markStart},
		{cb.Raw().After("gorm:raw").Before("otel:after:raw"), "after_raw", marker.after},
	}
	for _, h := range hooks {
		if err := h.register.Register("affiliate:slow_query_"+h.name, h.fn); err != nil {
			return fmt.Errorf("register %s callback: %w", h.name, err)
		}
	}
	return nil
}

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

type slowQueryMarker struct {
	threshold time.Duration
}

func (m slowQueryMarker) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if elapsed <= m.threshold {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
	)
	span.AddEvent("slow_query", trace.WithAttributes(
		attribute.Int64("threshold_ms", m.threshold.Milliseconds()),
	))
}
