// Package pipeline is the nightly planning job executed by the execution
// controller. A run simulates the depot feed, scores it, installs a fresh
// schedule and, when started interactively, hands control to the operator
// through the input relay until they finish reviewing.
package pipeline
