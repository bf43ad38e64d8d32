package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/regweaver/regweaver/internal/script"
	rwerrors "github.com/regweaver/regweaver/pkg/errors"
)

// testRegistry returns a registry of no-op actions that record their call
// order. Actions named in failures return an error instead.
func testRegistry(t *testing.T, calls *[]string, failures map[string]error) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, name := range []string{"ALPHA", "BETA", "GAMMA"} {
		name := name
		require.NoError(t, reg.Register(Action{
			Name:           name,
			RequiredParams: []string{"value"},
			Handler: func(ctx context.Context, ec *ExecutionContext, params script.Params) (any, error) {
				*calls = append(*calls, name)
				if err := failures[name]; err != nil {
					return nil, err
				}
				return name, nil
			},
		}))
	}
	return reg
}

func newTestContext(t *testing.T, opts Options, prompter Prompter) *ExecutionContext {
	t.Helper()
	opts.DryRun = true
	ec, err := NewContext(opts, nil, nil, prompter)
	require.NoError(t, err)
	return ec
}

func declarative(steps ...script.Step) *script.Script {
	return &script.Script{Name: "test", Kind: script.Declarative, Steps: steps}
}

func step(action string) script.Step {
	return script.Step{Action: action, Params: script.Params{"value": 1}}
}

func TestExecuteRunsStepsInOrder(t *testing.T) {
	var calls []string
	it := NewInterpreter(testRegistry(t, &calls, nil))
	ec := newTestContext(t, Options{}, nil)

	report := it.Execute(context.Background(), ec, declarative(step("ALPHA"), step("BETA"), step("GAMMA")))

	require.True(t, report.Success)
	require.Equal(t, []string{"ALPHA", "BETA", "GAMMA"}, calls)
	require.Len(t, report.Steps, 3)
	for i, outcome := range report.Steps {
		require.Equal(t, i, outcome.Index)
		require.Equal(t, StatusOk, outcome.Status)
	}
	require.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestExecuteHaltsOnFailure(t *testing.T) {
	var calls []string
	boom := errors.New("rpc fault")
	it := NewInterpreter(testRegistry(t, &calls, map[string]error{"BETA": boom}))
	ec := newTestContext(t, Options{}, nil)

	report := it.Execute(context.Background(), ec, declarative(step("ALPHA"), step("BETA"), step("GAMMA")))

	require.False(t, report.Success)
	require.Equal(t, []string{"ALPHA", "BETA"}, calls, "GAMMA's handler must never be invoked")
	require.Len(t, report.Steps, 2)
	require.Equal(t, StatusFailed, report.Steps[1].Status)

	var execErr *rwerrors.ExecutionError
	require.ErrorAs(t, report.Err, &execErr)
	require.Equal(t, 1, execErr.StepIndex)
	require.Equal(t, "BETA", execErr.Action)
	require.ErrorIs(t, report.Err, boom)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	var calls []string
	it := NewInterpreter(testRegistry(t, &calls, nil))
	ec := newTestContext(t, Options{}, nil)

	s := declarative(
		script.Step{Action: "NO_SUCH_ACTION"},
		step("ALPHA"),
		script.Step{Action: "BETA"}, // missing required param
		script.Step{Action: "ALSO_MISSING"},
	)

	report := it.Execute(context.Background(), ec, s)

	require.False(t, report.Success)
	require.Empty(t, report.Steps, "validation failures must run zero steps")
	require.Empty(t, calls)

	var verrs rwerrors.ValidationErrors
	require.ErrorAs(t, report.Err, &verrs)
	require.Len(t, verrs, 3)
	require.Equal(t, 0, verrs[0].StepIndex)
	require.Equal(t, 2, verrs[1].StepIndex)
	require.Equal(t, 3, verrs[2].StepIndex)
}

type scriptedPrompter struct {
	decisions []Decision
	runAnswer bool
	asked     int
}

func (p *scriptedPrompter) ConfirmStep(int, string, script.Params) (Decision, error) {
	d := p.decisions[p.asked]
	p.asked++
	return d, nil
}

func (p *scriptedPrompter) ConfirmRun(string) (bool, error) { return p.runAnswer, nil }

func TestInteractiveSkipRecordsOutcome(t *testing.T) {
	var calls []string
	it := NewInterpreter(testRegistry(t, &calls, nil))
	prompter := &scriptedPrompter{decisions: []Decision{Proceed, Skip, Proceed}}
	ec := newTestContext(t, Options{Interactive: true}, prompter)

	report := it.Execute(context.Background(), ec, declarative(step("ALPHA"), step("BETA"), step("GAMMA")))

	require.True(t, report.Success)
	require.Equal(t, []string{"ALPHA", "GAMMA"}, calls)
	require.Len(t, report.Steps, 3)
	require.Equal(t, StatusSkipped, report.Steps[1].Status)
}

func TestInteractiveAbortEndsRun(t *testing.T) {
	var calls []string
	it := NewInterpreter(testRegistry(t, &calls, nil))
	prompter := &scriptedPrompter{decisions: []Decision{Proceed, Proceed, Abort}}
	ec := newTestContext(t, Options{Interactive: true}, prompter)

	report := it.Execute(context.Background(), ec, declarative(step("ALPHA"), step("BETA"), step("GAMMA")))

	require.False(t, report.Success)
	require.Equal(t, []string{"ALPHA", "BETA"}, calls)
	require.Len(t, report.Steps, 2, "no outcome for the aborted step or anything after it")

	var abortErr *rwerrors.AbortError
	require.ErrorAs(t, report.Err, &abortErr)
	require.Equal(t, 2, abortErr.StepIndex)

	var execErr *rwerrors.ExecutionError
	require.False(t, errors.As(report.Err, &execErr), "abort is a decision, not a defect")
}

func TestProgramErrorBecomesFailedReport(t *testing.T) {
	it := NewInterpreter(NewRegistry())
	ec := newTestContext(t, Options{}, nil)

	s := &script.Script{
		Name: "imperative-error",
		Kind: script.Imperative,
		Program: func(ctx context.Context, env *script.Bindings) error {
			return fmt.Errorf("program broke")
		},
	}

	report := it.Execute(context.Background(), ec, s)

	require.False(t, report.Success)
	require.Len(t, report.Steps, 1)
	require.Equal(t, StatusFailed, report.Steps[0].Status)
	require.Contains(t, report.Err.Error(), "program broke")
}

func TestProgramPanicIsCaught(t *testing.T) {
	it := NewInterpreter(NewRegistry())
	ec := newTestContext(t, Options{}, nil)

	s := &script.Script{
		Name: "imperative-panic",
		Kind: script.Imperative,
		Program: func(ctx context.Context, env *script.Bindings) error {
			panic("boom")
		},
	}

	report := it.Execute(context.Background(), ec, s)

	require.False(t, report.Success)
	require.Contains(t, report.Err.Error(), "panicked")
}

func TestProgramInteractiveDecline(t *testing.T) {
	ran := false
	it := NewInterpreter(NewRegistry())
	ec := newTestContext(t, Options{Interactive: true}, &scriptedPrompter{runAnswer: false})

	s := &script.Script{
		Name: "imperative-decline",
		Kind: script.Imperative,
		Program: func(ctx context.Context, env *script.Bindings) error {
			ran = true
			return nil
		},
	}

	report := it.Execute(context.Background(), ec, s)

	require.False(t, report.Success)
	require.False(t, ran)
	require.Empty(t, report.Steps)

	var abortErr *rwerrors.AbortError
	require.ErrorAs(t, report.Err, &abortErr)
}

func TestProgramReceivesContextBindings(t *testing.T) {
	it := NewInterpreter(NewRegistry())
	ec := newTestContext(t, Options{}, nil)

	var seen *script.Bindings
	s := &script.Script{
		Name: "imperative-bindings",
		Kind: script.Imperative,
		Program: func(ctx context.Context, env *script.Bindings) error {
			seen = env
			return nil
		},
	}

	report := it.Execute(context.Background(), ec, s)

	require.True(t, report.Success)
	require.Same(t, ec.Bindings, seen, "the program must see exactly the context's bindings")
	require.NotNil(t, seen.WalletService)
	require.NotNil(t, seen.TransactionService)
	require.NotNil(t, seen.RPCClient)
	require.NotNil(t, seen.CoordinatorService)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	a := Action{Name: "X", Handler: func(context.Context, *ExecutionContext, script.Params) (any, error) { return nil, nil }}
	require.NoError(t, reg.Register(a))
	require.Error(t, reg.Register(a))
	require.Equal(t, []string{"X"}, reg.Names())
}
