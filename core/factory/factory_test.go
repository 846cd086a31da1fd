package factory

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink struct {
	URL     string
	Timeout time.Duration
}

type sinkConf struct {
	URL     string        `json:"url"`
	Timeout time.Duration `json:"timeout"`
	Retries int           `json:"retries"`
}

func newSink(conf map[string]any) (*sink, error) {
	var c sinkConf
	if err := Decode(conf, &c); err != nil {
		return nil, err
	}
	return &sink{URL: c.URL, Timeout: c.Timeout}, nil
}

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*sink]()
	require.NoError(t, reg.Register("influx", newSink))

	s, err := reg.Create(ModuleConfig{Type: "influx", Conf: map[string]any{
		"url":     "http://influx:8086",
		"timeout": "3s",
		"retries": "2",
	}})
	require.NoError(t, err)
	assert.Equal(t, "http://influx:8086", s.URL)
	assert.Equal(t, 3*time.Second, s.Timeout)
}

func TestRegistryErrors(t *testing.T) {
	reg := NewRegistry[*sink]()
	require.NoError(t, reg.Register("prometheus", newSink))
	require.NoError(t, reg.Register("influx", newSink))
	assert.Error(t, reg.Register("influx", newSink))
	assert.Error(t, reg.Register("nop", nil))
	assert.Equal(t, []string{"influx", "prometheus"}, reg.Names())

	_, err := reg.Create(ModuleConfig{Type: "statsd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "known: influx, prometheus")

	_, err = reg.Create(ModuleConfig{Type: "influx", Conf: map[string]any{"bucket_name": "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create influx")
}

func TestCreateWrapsFactoryError(t *testing.T) {
	boom := errors.New("boom")
	reg := NewRegistry[int]()
	require.NoError(t, reg.Register("x", func(map[string]any) (int, error) { return 0, boom }))
	_, err := reg.Create(ModuleConfig{Type: "x"})
	assert.ErrorIs(t, err, boom)
}
