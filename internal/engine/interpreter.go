package engine

import (
	"context"
	"fmt"

	"github.com/regweaver/regweaver/internal/script"
	rwerrors "github.com/regweaver/regweaver/pkg/errors"
)

// Interpreter drives script execution against an action registry. Both
// script kinds go through Execute; the kind is dispatched exactly once.
type Interpreter struct {
	registry *Registry
}

// NewInterpreter creates an interpreter over the given registry.
func NewInterpreter(registry *Registry) *Interpreter {
	return &Interpreter{registry: registry}
}

// Validate checks every declarative step against the registry before any
// execution: unknown actions and missing required params are all collected,
// not just the first, so the caller sees the complete list at once.
func (it *Interpreter) Validate(s *script.Script) error {
	if s.Kind != script.Declarative {
		return nil
	}

	var errs rwerrors.ValidationErrors
	for i, step := range s.Steps {
		action, ok := it.registry.Get(step.Action)
		if !ok {
			errs = append(errs, rwerrors.NewValidationError(i, step.Action, "unknown action"))
			continue
		}
		for _, param := range action.RequiredParams {
			if _, present := step.Params[param]; !present {
				errs = append(errs, rwerrors.NewValidationError(i, step.Action,
					fmt.Sprintf("missing required param %q", param)))
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Execute runs the script to completion and returns its report. Execution
// never panics the host: program panics and handler errors both surface as
// failed reports.
func (it *Interpreter) Execute(ctx context.Context, ec *ExecutionContext, s *script.Script) *Report {
	reporter := NewReporter(s.Name)

	if err := it.Validate(s); err != nil {
		// Validation failures never partially run: zero steps executed.
		return reporter.Finalize(err, ec.Capture.Lines())
	}

	switch s.Kind {
	case script.Imperative:
		return it.runProgram(ctx, ec, s, reporter)
	default:
		return it.runSteps(ctx, ec, s, reporter)
	}
}

func (it *Interpreter) runSteps(ctx context.Context, ec *ExecutionContext, s *script.Script, reporter *Reporter) *Report {
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return reporter.Finalize(rwerrors.NewExecutionError(i, step.Action, err), ec.Capture.Lines())
		}

		if ec.Options.Interactive {
			decision, err := ec.Prompter.ConfirmStep(i, step.Action, step.Params)
			if err != nil {
				return reporter.Finalize(rwerrors.NewExecutionError(i, step.Action, err), ec.Capture.Lines())
			}
			switch decision {
			case Skip:
				ec.Logger.WithFields(map[string]any{"step": i, "action": step.Action}).Info("step skipped")
				reporter.Record(StepOutcome{Index: i, Action: step.Action, Status: StatusSkipped})
				continue
			case Abort:
				// No outcome is recorded for the aborted step.
				return reporter.Finalize(rwerrors.NewAbortError(i, step.Action), ec.Capture.Lines())
			}
		}

		// The action is known: Validate ran before the first step.
		action, _ := it.registry.Get(step.Action)

		ec.Logger.WithFields(map[string]any{"step": i, "action": step.Action}).Debug("step running")
		output, err := action.Handler(ctx, ec, step.Params)
		if err != nil {
			ec.Logger.Error(err, "step failed")
			reporter.Record(StepOutcome{Index: i, Action: step.Action, Status: StatusFailed, Err: err})
			// Remaining steps never run; partial registry state stays in
			// the bindings for diagnosis.
			return reporter.Finalize(rwerrors.NewExecutionError(i, step.Action, err), ec.Capture.Lines())
		}

		reporter.Record(StepOutcome{Index: i, Action: step.Action, Status: StatusOk, Output: output})
	}

	return reporter.Finalize(nil, ec.Capture.Lines())
}

func (it *Interpreter) runProgram(ctx context.Context, ec *ExecutionContext, s *script.Script, reporter *Reporter) *Report {
	if s.Program == nil {
		return reporter.Finalize(rwerrors.NewExecutionError(0, "program",
			fmt.Errorf("imperative script %q has no program body", s.Name)), ec.Capture.Lines())
	}

	if ec.Options.Interactive {
		proceed, err := ec.Prompter.ConfirmRun(s.Name)
		if err != nil {
			return reporter.Finalize(rwerrors.NewExecutionError(0, "program", err), ec.Capture.Lines())
		}
		if !proceed {
			return reporter.Finalize(rwerrors.NewAbortError(0, "program"), ec.Capture.Lines())
		}
	}

	err := runSandboxed(ctx, s.Program, ec.Bindings)
	if err != nil {
		reporter.Record(StepOutcome{Index: 0, Action: "program", Status: StatusFailed, Err: err})
		return reporter.Finalize(rwerrors.NewExecutionError(0, "program", err), ec.Capture.Lines())
	}

	reporter.Record(StepOutcome{Index: 0, Action: "program", Status: StatusOk})
	return reporter.Finalize(nil, ec.Capture.Lines())
}
