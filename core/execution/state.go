package execution

import (
	"strings"
	"time"
)

// InputType tells the client how to render a prompt.
type InputType string

const (
	InputMenu    InputType = "menu"
	InputTrainID InputType = "train_id"
	InputConfirm InputType = "confirm"
)

// Choice is one selectable answer of a menu or confirm prompt.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// YesNo is the default choice set of confirm prompts.
var YesNo = []Choice{{Value: "y", Label: "Yes"}, {Value: "n", Label: "No"}}

// Prompt is a question raised by a running job.
type Prompt struct {
	Text    string
	Type    InputType
	Options []Choice
}

// Answer is what the operator sent back.
type Answer struct {
	Value string
	// Custom is set when the operator bypassed the offered options.
	Custom bool
}

// State is the observable state of the controller. Values returned by
// Poll are deep copies.
type State struct {
	RunID           string     `json:"run_id"`
	IsRunning       bool       `json:"is_running"`
	CurrentStep     string     `json:"current_step"`
	Output          []string   `json:"output"`
	Error           string     `json:"error"`
	LastExecution   *time.Time `json:"last_execution"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	WaitingForInput bool       `json:"waiting_for_input"`
	InputPrompt     string     `json:"input_prompt"`
	InputType       InputType  `json:"input_type"`
	InputOptions    []Choice   `json:"input_options"`
}

func (s State) clone() State {
	out := s
	out.Output = append([]string(nil), s.Output...)
	if out.Output == nil {
		out.Output = []string{}
	}
	out.InputOptions = append([]Choice(nil), s.InputOptions...)
	if out.InputOptions == nil {
		out.InputOptions = []Choice{}
	}
	if s.LastExecution != nil {
		t := *s.LastExecution
		out.LastExecution = &t
	}
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		out.FinishedAt = &t
	}
	return out
}

func (p Prompt) validate() (Prompt, error) {
	switch p.Type {
	case InputTrainID:
	case InputConfirm:
		if len(p.Options) == 0 {
			p.Options = YesNo
		}
	case InputMenu:
		if len(p.Options) == 0 {
			return p, ErrInvalidPrompt
		}
	default:
		return p, ErrInvalidPrompt
	}
	return p, nil
}

// match returns the canonical option value for v, ignoring case.
func (p Prompt) match(v string) (string, bool) {
	for _, o := range p.Options {
		if strings.EqualFold(o.Value, v) {
			return o.Value, true
		}
	}
	return "", false
}
