package metrics

import (
	"encoding/json"
	"errors"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/d1vyadharsh1n1/MetroX/core/factory"
)

type recordSink struct {
	runs      int
	overrides int
	err       error
}

func (r *recordSink) RecordRun(RunResult) error {
	r.runs++
	return r.err
}

func (r *recordSink) RecordOverride(OverrideResult) error {
	r.overrides++
	return r.err
}

// runOnly implements no optional recorder.
type runOnly struct{ runs int }

func (r *runOnly) RecordRun(RunResult) error {
	r.runs++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &runOnly{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordRun(RunResult{RunID: "r1", Outcome: RunCompleted}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordOverride(OverrideResult{Action: "force_service"}); err != nil {
		t.Fatalf("record override: %v", err)
	}
	if err := m.RecordSchedule(ScheduleSnapshot{Trains: 3}); err != nil {
		t.Fatalf("record schedule: %v", err)
	}
	if s1.runs != 1 || s2.runs != 1 {
		t.Fatalf("runs not forwarded: %d %d", s1.runs, s2.runs)
	}
	if s1.overrides != 1 {
		t.Fatalf("override not forwarded")
	}
}

func TestMultiSink_JoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	m := NewMultiSink(&recordSink{err: boom}, &recordSink{})
	err := m.RecordRun(RunResult{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestNewMetricsSink(t *testing.T) {
	if err := RegisterMetricsSink("test-record", func(map[string]any) (MetricsSink, error) {
		return &recordSink{}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	s, err := NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create default: %v", err)
	}
	if _, ok := s.(NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-record"}})
	if err != nil {
		t.Fatalf("create single: %v", err)
	}
	if _, ok := s.(*recordSink); !ok {
		t.Fatalf("expected recordSink, got %T", s)
	}

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-record"}, {Type: "test-record"}})
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	m, ok := s.(*MultiSink)
	if !ok || len(m.Sinks) != 2 {
		t.Fatalf("expected MultiSink with 2 sinks, got %T", s)
	}

	if _, err := NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestConfigDecode(t *testing.T) {
	var y Config
	data := "sinks:\n  - type: prometheus\n  - type: influx\n    conf:\n      url: http://influx:8086\nprometheus_addr: \":9090\"\n"
	if err := yaml.Unmarshal([]byte(data), &y); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if len(y.Sinks) != 2 || y.Sinks[1].Conf["url"] != "http://influx:8086" {
		t.Fatalf("unexpected yaml config: %+v", y)
	}

	var j Config
	if err := json.Unmarshal([]byte(`{"sinks":[{"type":"nop"}],"prometheus_addr":":9100"}`), &j); err != nil {
		t.Fatalf("json: %v", err)
	}
	if j.PrometheusAddr != ":9100" || j.Sinks[0].Type != "nop" {
		t.Fatalf("unexpected json config: %+v", j)
	}
}
