package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedPayout struct {
	ID     uint   `gorm:"primaryKey"`
	Status string `gorm:"size:20"`
}

func setupTracedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedPayout{}))
	return db
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := setupTracedDB(t)
	require.NoError(t, RegisterDBTracing(db, DefaultDBTracingConfig(), zap.NewNop()))
	assert.Nil(t, db.Callback().Create().Get("otel:before:create"))
}

func TestRegisterDBTracing_StatementSpans(t *testing.T) {
	sr := useSpanRecorder(t)
	db := setupTracedDB(t)

	cfg := DBTracingConfig{Enabled: true, DBName: "affiliate", SlowQueryThresh: time.Hour}
	require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))

	ctx, parent := StartServiceSpan(context.Background(), "payout", "create")
	require.NoError(t, db.WithContext(ctx).Create(&tracedPayout{Status: "pending"}).Error)
	parent.End()

	var statement sdktrace.ReadOnlySpan
	for _, s := range sr.Ended() {
		if s.Name() == "gorm.Create" {
			statement = s
		}
	}
	require.NotNil(t, statement)
	assert.Equal(t, parent.SpanContext().SpanID(), statement.Parent().SpanID())
	attrs := attrMap(statement.Attributes())
	assert.Equal(t, "traced_payouts", attrs["db.sql.table"].AsString())
	assert.NotContains(t, attrs, attribute.Key("db.slow_query"))
}

func TestRegisterDBTracing_MarksSlowStatements(t *testing.T) {
	sr := useSpanRecorder(t)
	db := setupTracedDB(t)

	cfg := DBTracingConfig{Enabled: true, DBName: "affiliate", SlowQueryThresh: time.Nanosecond}
	require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))

	var rows []tracedPayout
	require.NoError(t, db.WithContext(context.Background()).Find(&rows).Error)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "gorm.Query", spans[0].Name())
	attrs := attrMap(spans[0].Attributes())
	assert.True(t, attrs["db.slow_query"].AsBool())
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "slow_query", spans[0].Events()[0].Name)
}
