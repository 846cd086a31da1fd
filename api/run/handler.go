// Package run exposes the execution controller: status polling, starting a
// planning run and answering its prompts.
package run

import (
	"errors"
	"net/http"

	"github.com/d1vyadharsh1n1/MetroX/api/response"
	"github.com/d1vyadharsh1n1/MetroX/core/execution"
)

// Controller is the part of execution.Controller the handlers use.
type Controller interface {
	Start(job execution.Job) (string, error)
	Poll() execution.State
	SubmitInput(value string, custom bool) error
}

// JobFactory builds the job of a run.
type JobFactory func(interactive bool) execution.Job

type predictRequest struct {
	Interactive *bool `json:"interactive"`
}

type inputRequest struct {
	Input  string `json:"input" validate:"required"`
	Custom bool   `json:"custom"`
}

// NewStatusHandler serves GET /api/status.
func NewStatusHandler(ctrl Controller) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if response.MethodNotAllowed(w, r, http.MethodGet) {
			return
		}
		response.JSON(w, http.StatusOK, ctrl.Poll())
	})
}

// NewPredictHandler serves POST /api/predict. The body is optional; without
// it the run uses interactiveDefault.
func NewPredictHandler(ctrl Controller, jobs JobFactory, interactiveDefault bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if response.MethodNotAllowed(w, r, http.MethodPost) {
			return
		}
		var req predictRequest
		if err := response.Decode(r, &req, true); err != nil {
			response.Error(w, http.StatusBadRequest, response.Message(err))
			return
		}
		interactive := interactiveDefault
		if req.Interactive != nil {
			interactive = *req.Interactive
		}
		id, err := ctrl.Start(jobs(interactive))
		if errors.Is(err, execution.ErrAlreadyRunning) {
			response.Error(w, http.StatusConflict, "Pipeline is already running")
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		response.JSON(w, http.StatusOK, map[string]any{
			"message":     "Pipeline started",
			"run_id":      id,
			"interactive": interactive,
		})
	})
}

// NewInputHandler serves POST /api/input.
func NewInputHandler(ctrl Controller) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if response.MethodNotAllowed(w, r, http.MethodPost) {
			return
		}
		var req inputRequest
		if err := response.Decode(r, &req, false); err != nil {
			response.Error(w, http.StatusBadRequest, response.Message(err))
			return
		}
		switch err := ctrl.SubmitInput(req.Input, req.Custom); {
		case errors.Is(err, execution.ErrNotWaiting):
			response.Error(w, http.StatusConflict, "Not waiting for input")
		case errors.Is(err, execution.ErrInvalidOption):
			response.Error(w, http.StatusBadRequest, err.Error())
		case err != nil:
			response.Error(w, http.StatusInternalServerError, err.Error())
		default:
			response.JSON(w, http.StatusOK, map[string]string{"message": "Input received", "input": req.Input})
		}
	})
}
