// Package pipeline runs a fixed ordered list of guarded steps.
//
// Each step wraps one external invocation. Execution is strictly
// sequential and fail-fast: the first non-zero exit code stops the
// pipeline, is translated through a diagnostics table, and becomes the
// process exit code. There are no retries and no rollback; side effects
// of completed steps are irreversible.
package pipeline

import (
	"context"
	"fmt"
)

// Step is one ordered unit of work: a human-readable label plus an
// action yielding a process exit code. Zero means success; any other
// value follows the invoked program's own exit-code contract.
type Step struct {
	Description string
	Action      func(ctx context.Context) int
}

// Diagnostics maps known non-zero exit codes to explanations.
type Diagnostics map[int]string

// Explain returns the mapped explanation for code, or a generic
// fallback for codes the table does not know.
func (d Diagnostics) Explain(code int) string {
	if msg, ok := d[code]; ok {
		return msg
	}
	return fmt.Sprintf("unknown error (exit code %d)", code)
}

// StepError reports the first failing step of a pipeline run.
// Its Code is intended to become the process exit code.
type StepError struct {
	Index       int
	Description string
	Code        int
	Diagnostic  string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s (exit code %d)", e.Description, e.Diagnostic, e.Code)
}

// Observer receives step lifecycle notifications during a run.
// Implementations must not block; they are called inline.
type Observer interface {
	StepStarted(index int, step Step)
	StepFinished(index int, step Step, code int)
}

// Runner executes steps in order, translating failures through a
// diagnostics table.
type Runner struct {
	diags     Diagnostics
	observers []Observer
}

// NewRunner creates a Runner. diags may be nil, in which case every
// failure gets the generic fallback explanation.
func NewRunner(diags Diagnostics, observers ...Observer) *Runner {
	return &Runner{diags: diags, observers: observers}
}

// Run executes steps strictly in order. On the first non-zero exit code
// it returns a *StepError and never executes the remaining steps. A nil
// return means every step exited zero.
func (r *Runner) Run(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		for _, o := range r.observers {
			o.StepStarted(i, step)
		}

		code := step.Action(ctx)

		for _, o := range r.observers {
			o.StepFinished(i, step, code)
		}

		if code != 0 {
			return &StepError{
				Index:       i,
				Description: step.Description,
				Code:        code,
				Diagnostic:  r.diags.Explain(code),
			}
		}
	}
	return nil
}

// StepResult is the recorded outcome of one executed step.
type StepResult struct {
	Index       int
	Description string
	Code        int
	Diagnostic  string
}

// Recorder is an Observer that collects the outcome of every executed
// step, for journaling a run after it finishes.
type Recorder struct {
	diags   Diagnostics
	results []StepResult
}

// NewRecorder creates a Recorder using diags to annotate failures.
func NewRecorder(diags Diagnostics) *Recorder {
	return &Recorder{diags: diags}
}

func (r *Recorder) StepStarted(int, Step) {}

func (r *Recorder) StepFinished(index int, step Step, code int) {
	res := StepResult{Index: index, Description: step.Description, Code: code}
	if code != 0 {
		res.Diagnostic = r.diags.Explain(code)
	}
	r.results = append(r.results, res)
}

// Results returns the outcomes of all steps executed so far.
func (r *Recorder) Results() []StepResult {
	return r.results
}
