package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/d1vyadharsh1n1/MetroX/core/events"
)

// Run is the handle a job uses to report progress and ask for input.
type Run struct {
	c       *Controller
	id      string
	started time.Time
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Step records the name of the stage the job entered.
func (r *Run) Step(name string) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.RunID != r.id {
		return
	}
	c.state.CurrentStep = name
	c.publishLocked(events.RunEvent{RunID: r.id, Type: events.RunStep, Step: name, Time: c.now()})
}

// Logf appends a timestamped line to the run output.
func (r *Run) Logf(format string, args ...any) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.RunID != r.id {
		return
	}
	line := fmt.Sprintf("[%s] %s", c.now().Format("15:04:05"), fmt.Sprintf(format, args...))
	c.state.Output = append(c.state.Output, line)
	c.publishLocked(events.RunEvent{RunID: r.id, Type: events.RunOutput, Line: line, Time: c.now()})
}

// Ask pauses the job until the operator answers p, ctx is done or the
// controller input timeout elapses.
func (r *Run) Ask(ctx context.Context, p Prompt) (Answer, error) {
	ch, err := r.c.beginWait(r, p)
	if err != nil {
		return Answer{}, err
	}
	var timeout <-chan time.Time
	if r.c.inputTimeout > 0 {
		t := time.NewTimer(r.c.inputTimeout)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case a := <-ch:
		return a, nil
	case <-ctx.Done():
		if a, ok := r.c.abandonWait(ch); ok {
			return a, nil
		}
		return Answer{}, ctx.Err()
	case <-timeout:
		if a, ok := r.c.abandonWait(ch); ok {
			return a, nil
		}
		return Answer{}, fmt.Errorf("%w after %s", ErrInputTimeout, r.c.inputTimeout)
	}
}
