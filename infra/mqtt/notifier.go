package mqtt

import (
	"context"

	"github.com/d1vyadharsh1n1/MetroX/core/events"
	"github.com/d1vyadharsh1n1/MetroX/internal/eventbus"
)

// Publisher is the part of PahoClient the notifier needs.
type Publisher interface {
	Publish(topic string, v any, retained bool) error
	ScheduleTopic() string
	RunTopic() string
	OverrideTopic(depot string) string
}

// StartNotifier forwards bus events to the broker until ctx is cancelled:
// applied overrides to the depot feed, schedules (retained) and terminal
// run states. Step and output lines stay local.
func StartNotifier(ctx context.Context, bus *eventbus.TypedBus[events.Event], pub Publisher) {
	if bus == nil || pub == nil {
		return
	}
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
				_ = notify(pub, ev)
			}
		}
	}()
}

func notify(pub Publisher, ev events.Event) error {
	switch e := ev.(type) {
	case events.OverrideEvent:
		if e.Outcome != "applied" {
			return nil
		}
		return pub.Publish(pub.OverrideTopic(e.Depot), e, false)
	case events.ScheduleEvent:
		return pub.Publish(pub.ScheduleTopic(), e, true)
	case events.RunEvent:
		switch e.Type {
		case events.RunStarted, events.RunWaiting, events.RunCompleted, events.RunFailed:
			return pub.Publish(pub.RunTopic(), e, e.Type != events.RunWaiting)
		}
	}
	return nil
}
