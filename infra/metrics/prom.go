package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/d1vyadharsh1n1/MetroX/core/metrics"
	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// PromSink exposes run, override, schedule and API metrics to Prometheus.
type PromSink struct {
	runs      *prometheus.CounterVec
	started   prometheus.Counter
	duration  *prometheus.HistogramVec
	overrides *prometheus.CounterVec
	schedule  *prometheus.GaugeVec
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	dropped   prometheus.Gauge
}

// NewPromSink registers metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on reg. Collectors already
// registered by a previous sink are reused. A nil registerer defaults to
// the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "metrox_runs_total",
		Help: "Finished planning runs by outcome",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if s.started, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "metrox_runs_started_total",
		Help: "Planning runs started",
	})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "metrox_run_duration_seconds",
		Help:    "Wall time of planning runs, including operator review",
		Buckets: []float64{0.5, 1, 5, 15, 60, 300, 900, 1800},
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if s.overrides, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "metrox_overrides_total",
		Help: "Override requests by action and outcome",
	}, []string{"action", "outcome"})); err != nil {
		return nil, err
	}
	if s.schedule, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "metrox_schedule_trains",
		Help: "Trains per status in the installed schedule",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if s.requests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "metrox_http_requests_total",
		Help: "API requests by path, method and status code",
	}, []string{"path", "method", "code"})); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "metrox_http_request_duration_seconds",
		Help:    "API request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})); err != nil {
		return nil, err
	}
	if s.dropped, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "metrox_events_dropped_total",
		Help: "Events a slow subscriber missed on the internal bus",
	})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

func (s *PromSink) RecordRun(res coremetrics.RunResult) error {
	s.runs.WithLabelValues(string(res.Outcome)).Inc()
	s.duration.WithLabelValues(string(res.Outcome)).Observe(res.Duration.Seconds())
	return nil
}

func (s *PromSink) RecordRunStarted(string, time.Time) error {
	s.started.Inc()
	return nil
}

func (s *PromSink) RecordOverride(res coremetrics.OverrideResult) error {
	s.overrides.WithLabelValues(res.Action, res.Outcome).Inc()
	return nil
}

// RecordSchedule sets one gauge per status, zeroing absent ones.
func (s *PromSink) RecordSchedule(snap coremetrics.ScheduleSnapshot) error {
	for _, st := range model.Statuses {
		s.schedule.WithLabelValues(st.String()).Set(float64(snap.Counts[st]))
	}
	return nil
}

func (s *PromSink) RecordHTTPRequest(req coremetrics.HTTPRequest) error {
	s.requests.WithLabelValues(req.Path, req.Method, strconv.Itoa(req.Code)).Inc()
	s.latency.WithLabelValues(req.Path).Observe(req.Duration.Seconds())
	return nil
}

func (s *PromSink) RecordDroppedEvents(total uint64) error {
	s.dropped.Set(float64(total))
	return nil
}
