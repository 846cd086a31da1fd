package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	tp, err := NewProvider(Config{ServiceName: "metrox-test"}, &buf)
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "pipeline.run")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "pipeline.run")
	assert.Contains(t, buf.String(), "metrox-test")
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(Config{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "metrox", cfg.ServiceName)
	assert.Error(t, Config{SampleRatio: 2}.Validate())
}
