package metrics

import (
	"errors"
	"fmt"

	"github.com/d1vyadharsh1n1/MetroX/core/factory"
)

var sinks = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink makes a sink type available to NewMetricsSink.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinks.Register(name, f)
}

// SinkTypes lists the registered sink types.
func SinkTypes() []string { return sinks.Names() }

// NewMetricsSink builds every configured sink. No config yields a NopSink,
// one config the sink itself and several a MultiSink. All failures are
// reported together.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	switch len(cfgs) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinks.Create(cfgs[0])
	}
	built := make([]MetricsSink, 0, len(cfgs))
	var errs []error
	for i, c := range cfgs {
		s, err := sinks.Create(c)
		if err != nil {
			errs = append(errs, fmt.Errorf("sinks[%d]: %w", i, err))
			continue
		}
		built = append(built, s)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return NewMultiSink(built...), nil
}
