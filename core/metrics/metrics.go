package metrics

import (
	"time"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// RunOutcome labels the end of a planning run.
type RunOutcome string

const (
	RunCompleted RunOutcome = "completed"
	RunFailed    RunOutcome = "failed"
)

// RunResult describes a finished planning run.
type RunResult struct {
	RunID    string
	Outcome  RunOutcome
	Duration time.Duration
	Error    string
	Time     time.Time
}

// MetricsSink records planning runs. It is the only method every sink must
// provide.
type MetricsSink interface {
	RecordRun(res RunResult) error
}

// RunStartRecorder counts runs as they start.
type RunStartRecorder interface {
	RecordRunStarted(runID string, at time.Time) error
}

// OverrideResult is the outcome of one override request.
type OverrideResult struct {
	RunID   string
	Action  string
	TrainID string
	Depot   string
	From    model.Status
	To      model.Status
	Outcome string
	Forced  bool
	Risk    float64
	Time    time.Time
}

// OverrideRecorder records operator overrides.
type OverrideRecorder interface {
	RecordOverride(res OverrideResult) error
}

// ScheduleSnapshot summarises an installed schedule.
type ScheduleSnapshot struct {
	RunID  string
	Trains int
	Counts map[model.Status]int
	Time   time.Time
}

// ScheduleRecorder records installed schedules.
type ScheduleRecorder interface {
	RecordSchedule(s ScheduleSnapshot) error
}

// HTTPRequest is a served API request.
type HTTPRequest struct {
	Method   string
	Path     string
	Code     int
	Duration time.Duration
}

// HTTPRequestRecorder records API traffic.
type HTTPRequestRecorder interface {
	RecordHTTPRequest(req HTTPRequest) error
}

// DroppedEventsRecorder tracks events the bus could not deliver.
type DroppedEventsRecorder interface {
	RecordDroppedEvents(total uint64) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordRun(RunResult) error                { return nil }
func (NopSink) RecordRunStarted(string, time.Time) error { return nil }
func (NopSink) RecordOverride(OverrideResult) error      { return nil }
func (NopSink) RecordSchedule(ScheduleSnapshot) error    { return nil }
func (NopSink) RecordHTTPRequest(HTTPRequest) error      { return nil }
func (NopSink) RecordDroppedEvents(uint64) error         { return nil }
