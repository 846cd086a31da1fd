// Package data exposes the raw inputs behind the current plan: the
// simulated daily feed, the oracle output and the stored history.
package data

import (
	"errors"
	"net/http"
	"time"

	"github.com/d1vyadharsh1n1/MetroX/api/response"
	"github.com/d1vyadharsh1n1/MetroX/core/history"
	"github.com/d1vyadharsh1n1/MetroX/core/model"
	"github.com/d1vyadharsh1n1/MetroX/core/schedule"
)

var openEnd = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// NewPredictionsHandler serves GET /api/data/predictions.
func NewPredictionsHandler(store schedule.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if response.MethodNotAllowed(w, r, http.MethodGet) {
			return
		}
		recs := store.List()
		if len(recs) == 0 {
			response.Error(w, http.StatusNotFound, "No prediction data available")
			return
		}
		out := make([]model.Prediction, 0, len(recs))
		for _, rec := range recs {
			out = append(out, model.Prediction{
				TrainID:        rec.TrainID,
				FailureRisk:    rec.PredictedFailureRisk,
				Status:         rec.PredictedStatus,
				NextDayMileage: rec.PredictedNextDayMileage,
			})
		}
		response.JSON(w, http.StatusOK, out)
	})
}

// NewSimulatedHandler serves GET /api/data/simulated. The latest stored day
// is preferred; without history the feed embedded in the schedule is used.
func NewSimulatedHandler(store schedule.Store, hist history.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if response.MethodNotAllowed(w, r, http.MethodGet) {
			return
		}
		if hist != nil {
			_, recs, err := hist.Latest(r.Context())
			switch {
			case err == nil && len(recs) > 0:
				response.JSON(w, http.StatusOK, recs)
				return
			case err != nil && !errors.Is(err, history.ErrEmpty):
				response.Error(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		sched := store.List()
		if len(sched) == 0 {
			response.Error(w, http.StatusNotFound, "No simulated data available")
			return
		}
		out := make([]model.DailyRecord, 0, len(sched))
		for _, rec := range sched {
			out = append(out, rec.DailyRecord)
		}
		response.JSON(w, http.StatusOK, out)
	})
}

// NewHistoryHandler serves GET /api/data/history. Optional query
// parameters are train_id, start and end (YYYY-MM-DD, inclusive).
func NewHistoryHandler(hist history.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if response.MethodNotAllowed(w, r, http.MethodGet) {
			return
		}
		if hist == nil {
			response.Error(w, http.StatusNotFound, "Historical data not available")
			return
		}
		start, end := time.Time{}, openEnd
		if s := r.URL.Query().Get("start"); s != "" {
			t, err := time.Parse(history.DateLayout, s)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "invalid start date")
				return
			}
			start = t
		}
		if s := r.URL.Query().Get("end"); s != "" {
			t, err := time.Parse(history.DateLayout, s)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "invalid end date")
				return
			}
			end = t
		}
		if end.Before(start) {
			response.Error(w, http.StatusBadRequest, "end is before start")
			return
		}
		recs, err := hist.Query(r.Context(), r.URL.Query().Get("train_id"), start, end)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		response.JSON(w, http.StatusOK, map[string]any{"history": recs, "count": len(recs)})
	})
}
