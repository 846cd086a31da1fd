package override

import (
	"fmt"
	"strings"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// Action is a manual change requested by an operator.
type Action string

const (
	ForceService Action = "force_service"
	ForceStandby Action = "force_standby"
	ForceIBL     Action = "force_ibl"
	Reset        Action = "reset"
)

// ParseAction validates an action name.
func ParseAction(v string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(v)))
	switch a {
	case ForceService, ForceStandby, ForceIBL, Reset:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, v)
}

// Target returns the status a force action sets. Reset has no fixed target.
func (a Action) Target() (model.Status, bool) {
	switch a {
	case ForceService:
		return model.StatusService, true
	case ForceStandby:
		return model.StatusStandby, true
	case ForceIBL:
		return model.StatusIBL, true
	}
	return "", false
}

// Outcome is the three-way result of Modify.
type Outcome int

const (
	Applied Outcome = iota
	// NeedsConfirmation means the change was withheld until the caller
	// repeats it with Force set.
	NeedsConfirmation
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case NeedsConfirmation:
		return "needs_confirmation"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}
