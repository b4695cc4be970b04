package executor

import (
	"time"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/action"
)

// Outcome is how a step settled.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// Step records one executed action of a chain.
type Step struct {
	Index       int                 `json:"index"`
	Kind        action.Kind         `json:"kind"`
	Outcome     Outcome             `json:"outcome"`
	Code        string              `json:"code,omitempty"`
	Error       string              `json:"error,omitempty"`
	Diagnostics []uiflow.Diagnostic `json:"diagnostics,omitempty"`
	Duration    time.Duration       `json:"duration"`

	Err error `json:"-"`
}

// Trace is the record of a dispatched chain.
type Trace struct {
	ChainID    string    `json:"chain_id"`
	Steps      []Step    `json:"steps"`
	Cancelled  bool      `json:"cancelled"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Succeeded reports whether the last executed step succeeded.
func (t Trace) Succeeded() bool {
	if t.Cancelled || len(t.Steps) == 0 {
		return false
	}
	return t.Steps[len(t.Steps)-1].Outcome == OutcomeSucceeded
}

// Kinds lists the executed action kinds in order.
func (t Trace) Kinds() []action.Kind {
	out := make([]action.Kind, len(t.Steps))
	for i, s := range t.Steps {
		out[i] = s.Kind
	}
	return out
}

// Diagnostics collects the diagnostics of every step.
func (t Trace) Diagnostics() []uiflow.Diagnostic {
	var out []uiflow.Diagnostic
	for _, s := range t.Steps {
		out = append(out, s.Diagnostics...)
	}
	return out
}

// Err returns the error of the last failed step, if any.
func (t Trace) Err() error {
	for i := len(t.Steps) - 1; i >= 0; i-- {
		if t.Steps[i].Err != nil {
			return t.Steps[i].Err
		}
	}
	return nil
}
