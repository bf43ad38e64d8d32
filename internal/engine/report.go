package engine

import (
	"time"
)

// Outcome status values for a single step.
const (
	StatusOk      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// StepOutcome records the result of one step (or, for imperative runs, the
// whole program).
type StepOutcome struct {
	Index  int
	Action string
	Status string
	Output any
	Err    error
}

// Report is the structured result of one script execution. It is the only
// channel surfacing results to callers; presentation is a frontend concern.
type Report struct {
	ScriptName string
	Success    bool
	Steps      []StepOutcome
	Err        error
	Logs       []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Reporter accumulates step outcomes and finalizes a Report. Once a Failed
// outcome is recorded no further outcomes should arrive.
type Reporter struct {
	report Report
}

// NewReporter starts a report for the named script.
func NewReporter(name string) *Reporter {
	return &Reporter{report: Report{
		ScriptName: name,
		StartedAt:  time.Now(),
	}}
}

// Record appends a step outcome.
func (r *Reporter) Record(outcome StepOutcome) {
	r.report.Steps = append(r.report.Steps, outcome)
}

// Finalize closes the report. err is the run-level error, nil on success;
// logs are the lines captured from the context's sink.
func (r *Reporter) Finalize(err error, logs []string) *Report {
	r.report.Err = err
	r.report.Success = err == nil
	r.report.Logs = logs
	r.report.FinishedAt = time.Now()
	return &r.report
}
