package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestSpanBeforeInit(t *testing.T) {
	// Instrumented code runs before Init without a guard; spans are
	// no-ops then.
	ctx, span := StartSpan(context.Background(), "export_run",
		attribute.String("kind", "bib"))
	require.NotNil(t, span)
	assert.NotNil(t, ctx)

	span.SetAttributes(attribute.Int("batch", 1))
	span.RecordError(nil)
	span.End()
}

func TestTimedPropagatesError(t *testing.T) {
	called := false
	err := Timed(context.Background(), "batch", func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	wantErr := assert.AnError
	err = Timed(context.Background(), "batch", func(ctx context.Context) error {
		return wantErr
	})
	assert.Equal(t, wantErr, err)
}

func TestShutdownWithoutInit(t *testing.T) {
	require.NoError(t, Shutdown(context.Background()))
}
