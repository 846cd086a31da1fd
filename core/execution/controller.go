// Package execution runs the single long-lived planning computation and
// relays operator input to it while it is paused.
package execution

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/d1vyadharsh1n1/MetroX/core/events"
	"github.com/d1vyadharsh1n1/MetroX/core/logger"
	"github.com/d1vyadharsh1n1/MetroX/core/monitoring"
	"github.com/d1vyadharsh1n1/MetroX/internal/eventbus"
)

// Job is the computation executed by a run. It reports progress and asks
// questions through the Run handle.
type Job func(ctx context.Context, run *Run) error

// Controller owns the single run slot.
type Controller struct {
	mu      sync.Mutex
	state   State
	prompt  Prompt
	pending chan Answer
	done    chan struct{}
	lastErr error

	base         context.Context
	bus          eventbus.Publisher[events.Event]
	log          logger.Logger
	inputTimeout time.Duration
	now          func() time.Time
	newID        func() string
}

// Option configures a Controller.
type Option func(*Controller)

// WithEvents publishes run events on the given bus.
func WithEvents(p eventbus.Publisher[events.Event]) Option {
	return func(c *Controller) {
		if p != nil {
			c.bus = p
		}
	}
}

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithInputTimeout fails a run when a prompt stays unanswered for d.
// Zero waits forever.
func WithInputTimeout(d time.Duration) Option {
	return func(c *Controller) { c.inputTimeout = d }
}

// WithContext sets the parent context of every run. Cancelling it aborts
// a run blocked on input.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) {
		if ctx != nil {
			c.base = ctx
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController returns an idle controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		base:  context.Background(),
		bus:   eventbus.NopPublisher[events.Event]{},
		log:   logger.Nop{},
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start launches job unless a run is already in progress. It returns the
// id of the new run without waiting for the job.
func (c *Controller) Start(job Job) (string, error) {
	c.mu.Lock()
	if c.state.IsRunning {
		c.mu.Unlock()
		return "", ErrAlreadyRunning
	}
	now := c.now()
	run := &Run{c: c, id: c.newID(), started: now}
	c.state = State{
		RunID:         run.id,
		IsRunning:     true,
		CurrentStep:   "Starting",
		Output:        []string{},
		LastExecution: &now,
	}
	c.prompt = Prompt{}
	c.pending = nil
	c.lastErr = nil
	done := make(chan struct{})
	c.done = done
	c.publishLocked(events.RunEvent{RunID: run.id, Type: events.RunStarted, Time: now})
	c.mu.Unlock()

	c.log.Infof("run %s started", run.id)
	go c.execute(run, job, done)
	return run.id, nil
}

func (c *Controller) execute(run *Run, job Job, done chan struct{}) {
	defer close(done)
	ctx, span := otel.Tracer("metrox/execution").Start(c.base, "execution.run")
	span.SetAttributes(attribute.String("run.id", run.id))
	defer span.End()

	err := c.invoke(ctx, run, job)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		monitoring.CaptureException(err, map[string]string{"component": "execution", "run_id": run.id})
	}
	c.finish(run, err)
}

func (c *Controller) invoke(ctx context.Context, run *Run, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job(ctx, run)
}

func (c *Controller) finish(run *Run, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.state.IsRunning = false
	c.state.FinishedAt = &now
	c.clearWaitLocked()
	ev := events.RunEvent{RunID: run.id, Type: events.RunCompleted, Duration: now.Sub(run.started), Time: now}
	if err != nil {
		c.state.Error = err.Error()
		c.lastErr = fmt.Errorf("%w: %w", ErrComputationFailed, err)
		ev.Type = events.RunFailed
		ev.Error = err.Error()
		c.log.Errorf("run %s failed: %v", run.id, err)
	} else {
		c.state.CurrentStep = "Completed"
		c.log.Infof("run %s completed", run.id)
	}
	c.publishLocked(ev)
}

// Poll returns a consistent snapshot of the controller state.
func (c *Controller) Poll() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Wait blocks until the latest run finishes or ctx is done. It returns an
// error wrapping ErrComputationFailed when the run failed.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SubmitInput hands value to the paused job. Menu and confirm prompts only
// accept offered values unless custom is set.
func (c *Controller) SubmitInput(value string, custom bool) error {
	value = strings.TrimSpace(value)
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.WaitingForInput || c.pending == nil {
		return ErrNotWaiting
	}
	if value == "" {
		return ErrInvalidOption
	}
	if !custom && c.prompt.Type != InputTrainID {
		canon, ok := c.prompt.match(value)
		if !ok {
			return ErrInvalidOption
		}
		value = canon
	}
	ch := c.pending
	c.clearWaitLocked()
	// buffered and drained only by the waiting job
	ch <- Answer{Value: value, Custom: custom}
	c.publishLocked(events.RunEvent{RunID: c.state.RunID, Type: events.RunResumed, Line: value, Time: c.now()})
	return nil
}

func (c *Controller) beginWait(run *Run, p Prompt) (chan Answer, error) {
	p, err := p.validate()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.IsRunning || c.state.RunID != run.id {
		return nil, ErrNotWaiting
	}
	ch := make(chan Answer, 1)
	c.pending = ch
	c.prompt = p
	c.state.WaitingForInput = true
	c.state.InputPrompt = p.Text
	c.state.InputType = p.Type
	c.state.InputOptions = append([]Choice(nil), p.Options...)
	c.publishLocked(events.RunEvent{RunID: run.id, Type: events.RunWaiting, Prompt: p.Text, Time: c.now()})
	return ch, nil
}

// abandonWait withdraws the prompt. An answer accepted concurrently is
// still returned.
func (c *Controller) abandonWait(ch chan Answer) (Answer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == ch {
		c.clearWaitLocked()
		return Answer{}, false
	}
	select {
	case a := <-ch:
		return a, true
	default:
		return Answer{}, false
	}
}

func (c *Controller) clearWaitLocked() {
	c.pending = nil
	c.prompt = Prompt{}
	c.state.WaitingForInput = false
	c.state.InputPrompt = ""
	c.state.InputType = ""
	c.state.InputOptions = nil
}

func (c *Controller) publishLocked(ev events.RunEvent) { c.bus.Publish(ev) }
