package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledProviderIsNoop(t *testing.T) {
	p, err := NewProvider(DefaultConfig(), nil)
	require.NoError(t, err)

	_, span := p.Tracer().Start(context.Background(), "compile")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestStdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProvider(Config{Enabled: true, Exporter: "stdout"}, &buf)
	require.NoError(t, err)

	_, span := p.Tracer().Start(context.Background(), "compile")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"Name":"compile"`)
}

func TestUnknownExporter(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}
