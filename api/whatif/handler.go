// Package whatif serves read-only scenario projections.
package whatif

import (
	"errors"
	"net/http"

	"github.com/d1vyadharsh1n1/MetroX/api/response"
	"github.com/d1vyadharsh1n1/MetroX/core/whatif"
)

type request struct {
	Scenario string   `json:"scenario" validate:"required,oneof=force_service_analysis simulate_failure maintenance_delay headway_analysis"`
	TrainID  string   `json:"train_id" validate:"required_if=Scenario force_service_analysis,required_if=Scenario simulate_failure"`
	Headway  *float64 `json:"headway" validate:"omitempty,gt=0"`
}

// NewHandler serves POST /api/whatif. The response shape depends on the
// scenario.
func NewHandler(a *whatif.Analyzer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if response.MethodNotAllowed(w, r, http.MethodPost) {
			return
		}
		var req request
		if err := response.Decode(r, &req, false); err != nil {
			response.Error(w, http.StatusBadRequest, response.Message(err))
			return
		}
		out, err := a.Run(whatif.Request{Scenario: req.Scenario, TrainID: req.TrainID, Headway: req.Headway})
		switch {
		case errors.Is(err, whatif.ErrNoData):
			response.Error(w, http.StatusNotFound, "No schedule available")
		case errors.Is(err, whatif.ErrUnknownTrain):
			response.Error(w, http.StatusNotFound, "Train not found")
		case errors.Is(err, whatif.ErrInvalidScenario), errors.Is(err, whatif.ErrInvalidHeadway):
			response.Error(w, http.StatusBadRequest, err.Error())
		case err != nil:
			response.Error(w, http.StatusInternalServerError, "Analysis failed: "+err.Error())
		default:
			response.JSON(w, http.StatusOK, out)
		}
	})
}
