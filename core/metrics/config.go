package metrics

import "github.com/d1vyadharsh1n1/MetroX/core/factory"

// Config lists the sinks to build and where Prometheus is served.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr exposes /metrics when set, e.g. ":9090".
	PrometheusAddr string `json:"prometheus_addr"`
}
