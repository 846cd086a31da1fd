// Package schedule serves the current induction plan, manual overrides and
// their audit trail.
package schedule

import (
	"errors"
	"net/http"

	"github.com/d1vyadharsh1n1/MetroX/api/response"
	"github.com/d1vyadharsh1n1/MetroX/core/analytics"
	"github.com/d1vyadharsh1n1/MetroX/core/logger"
	"github.com/d1vyadharsh1n1/MetroX/core/modlog"
	"github.com/d1vyadharsh1n1/MetroX/core/override"
	"github.com/d1vyadharsh1n1/MetroX/core/schedule"
	"github.com/d1vyadharsh1n1/MetroX/pkg/export"
)

const noSchedule = "No schedule available"

type modifyRequest struct {
	Action  string `json:"action" validate:"required"`
	TrainID string `json:"train_id" validate:"required"`
	Force   bool   `json:"force"`
}

// NewScheduleHandler serves GET /api/schedule. ?format=csv returns the
// plan as a CSV attachment.
func NewScheduleHandler(store schedule.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if response.MethodNotAllowed(w, r, http.MethodGet) {
			return
		}
		recs := store.List()
		if len(recs) == 0 {
			response.Error(w, http.StatusNotFound, noSchedule)
			return
		}
		if r.URL.Query().Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="induction_schedule.csv"`)
			if err := export.WriteCSV(w, recs); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		response.JSON(w, http.StatusOK, recs)
	})
}

// NewChartHandler serves GET /api/schedule/chart, an HTML bar chart of
// failure risk per train.
func NewChartHandler(store schedule.Store, threshold float64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if response.MethodNotAllowed(w, r, http.MethodGet) {
			return
		}
		recs := store.List()
		if len(recs) == 0 {
			response.Error(w, http.StatusNotFound, noSchedule)
			return
		}
		page, err := export.RiskChartHTML(recs, threshold)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})
}

// NewModifyHandler serves POST /api/modify. The body is exactly one of an
// error, a risk warning asking for confirmation, or a success with the
// current generation's modification log.
func NewModifyHandler(engine *override.Engine, store schedule.Store, log modlog.Store, lg logger.Logger) http.Handler {
	if lg == nil {
		lg = logger.Nop{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if response.MethodNotAllowed(w, r, http.MethodPost) {
			return
		}
		var req modifyRequest
		if err := response.Decode(r, &req, false); err != nil {
			response.Error(w, http.StatusBadRequest, response.Message(err))
			return
		}
		res := engine.Modify(r.Context(), override.Request{
			Action:  override.Action(req.Action),
			TrainID: req.TrainID,
			Force:   req.Force,
		})
		switch res.Outcome {
		case override.NeedsConfirmation:
			response.JSON(w, http.StatusOK, map[string]any{
				"warning":        res.Message,
				"details":        res.Details,
				"recommendation": res.Recommendation,
				"risk":           res.Risk,
				"proceed_anyway": true,
			})
		case override.Rejected:
			body := map[string]any{"error": res.Message}
			if res.Details != "" {
				body["details"] = res.Details
			}
			if res.Recommendation != "" {
				body["recommendation"] = res.Recommendation
			}
			status := statusFor(res.Err)
			if status == http.StatusInternalServerError {
				lg.Errorf("modify %s %s: %v", req.Action, req.TrainID, res.Err)
				body["error"] = res.Message + ": " + res.Err.Error()
			}
			response.JSON(w, status, body)
		default:
			recs, err := log.Query(r.Context(), modlog.Query{RunID: res.Record.RunID})
			if err != nil {
				lg.Errorf("read modification log: %v", err)
			}
			response.JSON(w, http.StatusOK, map[string]any{
				"success":          true,
				"message":          res.Message,
				"details":          res.Details,
				"new_status":       res.To,
				"modification_log": modlog.Messages(recs),
				"alerts":           res.Alerts,
				"system_alerts":    analytics.Alerts(store.List()),
			})
		}
	})
}

// NewLogHandler serves GET /api/modification-log. By default only the
// records of the current schedule generation are returned; ?scope=all
// returns every record and ?train_id narrows the result.
func NewLogHandler(store schedule.Store, log modlog.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if response.MethodNotAllowed(w, r, http.MethodGet) {
			return
		}
		q := modlog.Query{TrainID: r.URL.Query().Get("train_id")}
		if r.URL.Query().Get("scope") != "all" {
			q.RunID = store.RunID()
			if q.RunID == "" {
				response.JSON(w, http.StatusOK, map[string]any{"modification_log": []string{}})
				return
			}
		}
		recs, err := log.Query(r.Context(), q)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		body := map[string]any{"modification_log": modlog.Messages(recs)}
		if r.URL.Query().Get("detail") == "true" {
			body["records"] = recs
		}
		response.JSON(w, http.StatusOK, body)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, override.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, override.ErrUnknownTrain), errors.Is(err, override.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, override.ErrNothingToReset):
		return http.StatusConflict
	case errors.Is(err, override.ErrSafetyViolation):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
