package override

import (
	"errors"

	"github.com/d1vyadharsh1n1/MetroX/core/schedule"
)

var (
	// ErrUnknownTrain is returned when the train is not in the schedule.
	ErrUnknownTrain = schedule.ErrUnknownTrain
	// ErrNoData is returned when there is no schedule to modify.
	ErrNoData = schedule.ErrNoData
	// ErrNothingToReset is returned by reset on a train without override.
	ErrNothingToReset = errors.New("nothing to reset")
	// ErrInvalidAction is returned for unknown action names.
	ErrInvalidAction = errors.New("invalid action")
	// ErrSafetyViolation is returned when releasing an IBL train is blocked.
	ErrSafetyViolation = errors.New("safety violation")

	errNeedsConfirmation = errors.New("confirmation required")
)
