package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithRequestAttachesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{Logger: zap.New(core)}

	l.WithRequest("cid-1", "acme", "acme-1700000000000-abcd1234").Info("turn handled")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "cid-1", fields["correlation_id"])
	require.Equal(t, "acme", fields["tenant_id"])
	require.Equal(t, "acme-1700000000000-abcd1234", fields["session_id"])
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "cid-1")
	require.Equal(t, "cid-1", CorrelationID(ctx))
}

func TestCorrelationIDAbsent(t *testing.T) {
	require.Equal(t, "", CorrelationID(context.Background()))
}
