// Package simulator fabricates the nightly rolling-stock feed that the
// depot systems would otherwise deliver: certificate validity, job cards,
// branding hours, mileage, bogie wear and cabin telemetry for every train.
// When the previous day's feed is supplied the counters carry over so that
// consecutive runs age the fleet.
package simulator
