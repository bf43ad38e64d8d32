package engine

import (
	"github.com/regweaver/regweaver/internal/script"
)

// Decision is the user's answer to an interactive confirmation.
type Decision int

const (
	Proceed Decision = iota
	Skip
	Abort
)

// Prompter asks the user for per-step (declarative) or whole-run
// (imperative) confirmation. Implementations live in the frontend; tests
// use scripted fakes.
type Prompter interface {
	// ConfirmStep presents one step and blocks for a decision.
	ConfirmStep(index int, action string, params script.Params) (Decision, error)

	// ConfirmRun asks a single go/no-go question before an imperative
	// program runs.
	ConfirmRun(name string) (bool, error)
}

// AutoApprove is the non-interactive prompter: everything proceeds.
type AutoApprove struct{}

func (AutoApprove) ConfirmStep(int, string, script.Params) (Decision, error) { return Proceed, nil }
func (AutoApprove) ConfirmRun(string) (bool, error)                          { return true, nil }
