// Package infra groups the adapters around the planner core: the MQTT
// notifier, metrics sinks, run history storage, logging, Sentry and
// tracing. They implement interfaces declared under core and are wired
// together in app.
package infra
