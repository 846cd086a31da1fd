package mqtt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d1vyadharsh1n1/MetroX/core/events"
	"github.com/d1vyadharsh1n1/MetroX/core/model"
	"github.com/d1vyadharsh1n1/MetroX/internal/eventbus"
)

type published struct {
	topic    string
	retained bool
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (f *fakePublisher) Publish(topic string, _ any, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{topic, retained})
	return nil
}

func (f *fakePublisher) ScheduleTopic() string { return "metrox/schedule" }
func (f *fakePublisher) RunTopic() string      { return "metrox/run" }
func (f *fakePublisher) OverrideTopic(depot string) string {
	return "metrox/depot/" + slug(depot) + "/override"
}

func (f *fakePublisher) snapshot() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.msgs...)
}

func TestStartNotifier(t *testing.T) {
	bus := eventbus.NewTypedWithBuffer[events.Event](16)
	defer bus.Close()
	pub := &fakePublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartNotifier(ctx, bus, pub)

	bus.Publish(events.RunEvent{Type: events.RunStarted})
	bus.Publish(events.RunEvent{Type: events.RunOutput, Line: "Scoring fleet..."})
	bus.Publish(events.OverrideEvent{Depot: "Pettah Depot", Outcome: "needs_confirmation"})
	bus.Publish(events.OverrideEvent{Depot: "Pettah Depot", Outcome: "applied", To: model.StatusIBL})
	bus.Publish(events.ScheduleEvent{Trains: 3})
	bus.Publish(events.RunEvent{Type: events.RunCompleted})

	require.Eventually(t, func() bool { return len(pub.snapshot()) == 4 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []published{
		{"metrox/run", true},
		{"metrox/depot/pettah-depot/override", false},
		{"metrox/schedule", true},
		{"metrox/run", true},
	}, pub.snapshot())
}
