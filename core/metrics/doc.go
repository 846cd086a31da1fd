// Package metrics defines the sink contract used to observe planning runs,
// operator overrides and the API. A sink implements MetricsSink and any of
// the optional recorder interfaces it cares about; MultiSink forwards each
// record to the sinks that accept it.
//
// Concrete sinks (Prometheus, InfluxDB) live in infra/metrics and register
// themselves in the factory, so NewMetricsSink can build them from config.
package metrics
