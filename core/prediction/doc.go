// Package prediction scores the nightly fleet feed. The Oracle interface is
// the boundary to whatever model produces failure risk, next-day mileage and
// a recommended status; the heuristic implementation reproduces the rules
// the depot planners used before a trained model existed.
package prediction
