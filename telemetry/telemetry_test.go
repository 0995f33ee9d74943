package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitInstallsRecordingProvider(t *testing.T) {
	shutdown, err := Init(context.Background(), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, span := otel.Tracer("test").Start(context.Background(), "probe")
	defer span.End()

	assert.True(t, span.IsRecording())
	assert.True(t, span.SpanContext().IsValid())
}
