package execution

import "errors"

var (
	// ErrAlreadyRunning is returned by Start while a run is in progress.
	ErrAlreadyRunning = errors.New("execution already running")
	// ErrNotWaiting is returned by SubmitInput when no prompt is outstanding.
	ErrNotWaiting = errors.New("not waiting for input")
	// ErrInvalidOption is returned when a menu or confirm answer is not offered.
	ErrInvalidOption = errors.New("invalid option")
	// ErrComputationFailed wraps the error of a failed run.
	ErrComputationFailed = errors.New("computation failed")
	// ErrInputTimeout fails a run whose prompt stayed unanswered too long.
	ErrInputTimeout = errors.New("input timed out")
	// ErrInvalidPrompt is returned by Ask for malformed prompts.
	ErrInvalidPrompt = errors.New("invalid prompt")
)
