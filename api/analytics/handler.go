// Package analytics serves the fleet report and predictive maintenance
// alerts derived from the current schedule.
package analytics

import (
	"net/http"

	"github.com/d1vyadharsh1n1/MetroX/api/response"
	"github.com/d1vyadharsh1n1/MetroX/core/analytics"
	"github.com/d1vyadharsh1n1/MetroX/core/schedule"
)

// NewReportHandler serves GET /api/fleet-analytics.
func NewReportHandler(store schedule.Store, a *analytics.Analyzer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if response.MethodNotAllowed(w, r, http.MethodGet) {
			return
		}
		recs := store.List()
		if len(recs) == 0 {
			response.Error(w, http.StatusNotFound, "No schedule data available")
			return
		}
		response.JSON(w, http.StatusOK, map[string]any{"report": a.Report(recs)})
	})
}

// NewAlertsHandler serves GET /api/alerts. An empty schedule yields no
// alerts rather than an error.
func NewAlertsHandler(store schedule.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if response.MethodNotAllowed(w, r, http.MethodGet) {
			return
		}
		response.JSON(w, http.StatusOK, map[string]any{"alerts": analytics.Alerts(store.List())})
	})
}
