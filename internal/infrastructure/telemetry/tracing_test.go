package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// useSpanRecorder installs a recording provider globally for the test.
func useSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	sr := useSpanRecorder(t)

	_, span := StartServiceSpan(context.Background(), "payout", "create",
		AttrPartnerID, int64(7), AttrMethod, "paypal")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "payout.create", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, int64(7), attrs[AttrPartnerID].AsInt64())
	assert.Equal(t, "paypal", attrs[AttrMethod].AsString())
}

func TestSetAttributes(t *testing.T) {
	sr := useSpanRecorder(t)
	id := uuid.MustParse("6f1c2f8e-52c8-4e3e-9a1d-1b2c3d4e5f60")
	var missing *int64
	referral := int64(11)

	_, span := StartServiceSpan(context.Background(), "referral", "update_status")
	SetAttributes(span,
		AttrReferral, &referral,
		AttrActor, id,
		"affiliate.none", missing,
		AttrAmount, 12.5,
		"ids", []int64{1, 2},
		42, "non-string key",
		"dangling",
	)
	span.End()

	attrs := attrMap(sr.Ended()[0].Attributes())
	assert.Equal(t, int64(11), attrs[AttrReferral].AsInt64())
	assert.Equal(t, id.String(), attrs[AttrActor].AsString())
	assert.Equal(t, "", attrs["affiliate.none"].AsString())
	assert.Equal(t, 12.5, attrs[AttrAmount].AsFloat64())
	assert.Equal(t, []int64{1, 2}, attrs["ids"].AsInt64Slice())
	assert.NotContains(t, attrs, attribute.Key("dangling"))
	assert.Len(t, attrs, 5)
}

func TestRecordError(t *testing.T) {
	sr := useSpanRecorder(t)

	_, span := StartServiceSpan(context.Background(), "payout", "process")
	RecordError(span, nil)
	RecordError(span, errors.New("processor unavailable"))
	span.End()

	ended := sr.Ended()[0]
	assert.Equal(t, codes.Error, ended.Status().Code)
	assert.Equal(t, "processor unavailable", ended.Status().Description)
	require.Len(t, ended.Events(), 1)
	assert.Equal(t, "exception", ended.Events()[0].Name)
}

func TestEnd(t *testing.T) {
	sr := useSpanRecorder(t)

	run := func(fail bool) (err error) {
		_, span := StartServiceSpan(context.Background(), "earning", "approve")
		defer End(span, &err)
		if fail {
			return errors.New("invalid state")
		}
		return nil
	}

	require.NoError(t, run(false))
	require.Error(t, run(true))

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestAddEvent(t *testing.T) {
	sr := useSpanRecorder(t)

	_, span := StartServiceSpan(context.Background(), "payout", "create")
	AddEvent(span, "earnings_claimed", "count", 3)
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "earnings_claimed", events[0].Name)
	assert.Equal(t, int64(3), attrMap(events[0].Attributes)["count"].AsInt64())
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "k", "v")
		AddEvent(nil, "e")
		RecordError(nil, errors.New("x"))
	})
}
