// Package scheduler builds the nightly induction plan. It ranks eligible
// trains, fills the Service quota derived from service hours and headway,
// caps Standby, and leaves the rest In Bay Lay-up. Plans can be exported to
// JSON or CSV through pkg/export.
package scheduler
