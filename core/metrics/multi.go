package metrics

import (
	"errors"
	"time"
)

// MultiSink fans records out to several sinks. Optional recorders are only
// forwarded to sinks that implement them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards to every sink and joins their errors.
func (m *MultiSink) RecordRun(res RunResult) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordRun(res))
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordRunStarted(runID string, at time.Time) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(RunStartRecorder); ok {
			errs = append(errs, rec.RecordRunStarted(runID, at))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordOverride(res OverrideResult) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(OverrideRecorder); ok {
			errs = append(errs, rec.RecordOverride(res))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordSchedule(snap ScheduleSnapshot) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(ScheduleRecorder); ok {
			errs = append(errs, rec.RecordSchedule(snap))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordHTTPRequest(req HTTPRequest) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(HTTPRequestRecorder); ok {
			errs = append(errs, rec.RecordHTTPRequest(req))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordDroppedEvents(total uint64) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(DroppedEventsRecorder); ok {
			errs = append(errs, rec.RecordDroppedEvents(total))
		}
	}
	return errors.Join(errs...)
}
