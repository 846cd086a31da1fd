package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d1vyadharsh1n1/MetroX/core/events"
	"github.com/d1vyadharsh1n1/MetroX/core/factory"
	coremetrics "github.com/d1vyadharsh1n1/MetroX/core/metrics"
	"github.com/d1vyadharsh1n1/MetroX/core/model"
	"github.com/d1vyadharsh1n1/MetroX/internal/eventbus"
)

type captureSink struct {
	mu        sync.Mutex
	runs      []coremetrics.RunResult
	started   int
	overrides []coremetrics.OverrideResult
	schedules []coremetrics.ScheduleSnapshot
}

func (c *captureSink) RecordRun(r coremetrics.RunResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, r)
	return nil
}

func (c *captureSink) RecordRunStarted(string, time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
	return nil
}

func (c *captureSink) RecordOverride(r coremetrics.OverrideResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overrides = append(c.overrides, r)
	return nil
}

func (c *captureSink) RecordSchedule(s coremetrics.ScheduleSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedules = append(c.schedules, s)
	return nil
}

func (c *captureSink) counts() (int, int, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started, len(c.runs), len(c.overrides), len(c.schedules)
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.NewTyped[events.Event]()
	defer bus.Close()
	sink := &captureSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, sink)

	// the collector subscribes synchronously, so publishing right away is safe
	bus.Publish(events.RunEvent{RunID: "r1", Type: events.RunStarted})
	bus.Publish(events.RunEvent{RunID: "r1", Type: events.RunStep, Step: "Prediction"})
	bus.Publish(events.ScheduleEvent{RunID: "r1", Trains: 3, Counts: map[model.Status]int{model.StatusService: 3}})
	bus.Publish(events.OverrideEvent{RunID: "r1", Action: "force_ibl", TrainID: "KM-T101", Outcome: "applied"})
	bus.Publish(events.RunEvent{RunID: "r1", Type: events.RunFailed, Error: "boom", Duration: time.Second})

	require.Eventually(t, func() bool {
		s, r, o, sc := sink.counts()
		return s == 1 && r == 1 && o == 1 && sc == 1
	}, time.Second, 10*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, coremetrics.RunFailed, sink.runs[0].Outcome)
	assert.Equal(t, "boom", sink.runs[0].Error)
	assert.False(t, sink.runs[0].Time.IsZero())
	assert.Equal(t, "KM-T101", sink.overrides[0].TrainID)
	assert.Equal(t, 3, sink.schedules[0].Counts[model.StatusService])
}

func TestStartEventCollector_NilArgs(t *testing.T) {
	StartEventCollector(context.Background(), nil, &captureSink{})
	StartEventCollector(context.Background(), eventbus.NewTyped[events.Event](), nil)
}

func TestBuiltinSinks(t *testing.T) {
	assert.Subset(t, coremetrics.SinkTypes(), []string{"influx", "nop", "prometheus"})

	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, s)

	_, err = coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}})
	assert.Error(t, err)

	s, err = coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	require.NoError(t, err)
	m, ok := s.(*coremetrics.MultiSink)
	require.True(t, ok)
	assert.Len(t, m.Sinks, 2)

	_, err = coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "statsd"}, {Type: "graphite"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sinks[1]")
	assert.Contains(t, err.Error(), "sinks[2]")
}
