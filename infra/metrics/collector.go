package metrics

import (
	"context"
	"time"

	"github.com/d1vyadharsh1n1/MetroX/core/events"
	coremetrics "github.com/d1vyadharsh1n1/MetroX/core/metrics"
	"github.com/d1vyadharsh1n1/MetroX/infra/logger"
	"github.com/d1vyadharsh1n1/MetroX/internal/eventbus"
)

// StartEventCollector subscribes to the bus and turns events into sink
// records. It stops when ctx is cancelled or the bus is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("record %s event: %v", ev.Kind(), err)
				}
				if r, ok := sink.(coremetrics.DroppedEventsRecorder); ok {
					_ = r.RecordDroppedEvents(bus.Dropped())
				}
			}
		}
	}()
}

func record(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.RunEvent:
		switch e.Type {
		case events.RunStarted:
			if r, ok := sink.(coremetrics.RunStartRecorder); ok {
				return r.RecordRunStarted(e.RunID, e.Time)
			}
		case events.RunCompleted, events.RunFailed:
			outcome := coremetrics.RunCompleted
			if e.Type == events.RunFailed {
				outcome = coremetrics.RunFailed
			}
			return sink.RecordRun(coremetrics.RunResult{
				RunID:    e.RunID,
				Outcome:  outcome,
				Duration: e.Duration,
				Error:    e.Error,
				Time:     stamp(e.Time),
			})
		}
	case events.OverrideEvent:
		if r, ok := sink.(coremetrics.OverrideRecorder); ok {
			return r.RecordOverride(coremetrics.OverrideResult{
				RunID:   e.RunID,
				Action:  e.Action,
				TrainID: e.TrainID,
				Depot:   e.Depot,
				From:    e.From,
				To:      e.To,
				Outcome: e.Outcome,
				Forced:  e.Forced,
				Risk:    e.Risk,
				Time:    stamp(e.Time),
			})
		}
	case events.ScheduleEvent:
		if r, ok := sink.(coremetrics.ScheduleRecorder); ok {
			return r.RecordSchedule(coremetrics.ScheduleSnapshot{
				RunID:  e.RunID,
				Trains: e.Trains,
				Counts: e.Counts,
				Time:   stamp(e.Time),
			})
		}
	}
	return nil
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
