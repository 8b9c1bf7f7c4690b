package kvstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mrlokans/linebook/internal/kvstore"
	"github.com/mrlokans/linebook/internal/kvstore/kvtest"
)

func TestWithTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	ctx := context.Background()
	client := kvstore.WithTracing(kvtest.NewSQLite(t), "sql")

	_, err := client.Get(ctx, "book", kvstore.Key{Partition: "u1", Sort: "missing"})
	require.ErrorIs(t, err, kvstore.ErrNotFound)
	_, err = client.Query(ctx, "book", "u1", kvstore.QueryOptions{})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "kvstore.Get", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "kvstore.Query", spans[1].Name())
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}
