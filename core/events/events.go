package events

import (
	"time"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// Event is implemented by every payload carried on the bus.
type Event interface {
	Kind() string
}

// RunEventType names a transition of the execution controller.
type RunEventType string

const (
	RunStarted   RunEventType = "started"
	RunStep      RunEventType = "step"
	RunOutput    RunEventType = "output"
	RunWaiting   RunEventType = "waiting"
	RunResumed   RunEventType = "resumed"
	RunCompleted RunEventType = "completed"
	RunFailed    RunEventType = "failed"
)

// RunEvent is published on every state change of a run.
type RunEvent struct {
	RunID  string       `json:"run_id"`
	Type   RunEventType `json:"type"`
	Step   string       `json:"step,omitempty"`
	Line   string       `json:"line,omitempty"`
	Prompt string       `json:"prompt,omitempty"`
	Error  string       `json:"error,omitempty"`
	// Duration is set on terminal events.
	Duration time.Duration `json:"duration,omitempty"`
	Time     time.Time     `json:"time"`
}

func (RunEvent) Kind() string { return "run" }

// OverrideEvent records the outcome of an override request.
type OverrideEvent struct {
	RunID   string       `json:"run_id"`
	Action  string       `json:"action"`
	TrainID string       `json:"train_id"`
	Depot   string       `json:"depot,omitempty"`
	From    model.Status `json:"from,omitempty"`
	To      model.Status `json:"to,omitempty"`
	Forced  bool         `json:"forced"`
	// Outcome is "applied", "needs_confirmation" or "rejected".
	Outcome string    `json:"outcome"`
	Risk    float64   `json:"risk"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

func (OverrideEvent) Kind() string { return "override" }

// ScheduleEvent is published when a run installs a new schedule.
type ScheduleEvent struct {
	RunID  string               `json:"run_id"`
	Trains int                  `json:"trains"`
	Counts map[model.Status]int `json:"counts"`
	Time   time.Time            `json:"time"`
}

func (ScheduleEvent) Kind() string { return "schedule" }
