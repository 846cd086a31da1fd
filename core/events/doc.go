// Package events defines the control plane events emitted on the event bus.
//
// Available event types:
//   - RunEvent: execution lifecycle and output
//   - OverrideEvent: applied, refused or confirmed manual overrides
//   - ScheduleEvent: a new schedule was published
package events
