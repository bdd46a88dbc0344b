package build

import "time"

// Step status values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// RunResult captures the outcome of one run.
type RunResult struct {
	// RunID identifies the run in logs and reports.
	RunID    string
	Solution string
	Steps    []StepResult
	State    State
	Duration time.Duration

	failed bool
}

// StepResult captures the outcome of a single build or project build.
type StepResult struct {
	Name     string // "Release|AnyCPU" or "Release|AnyCPU/Widgets"
	Status   string // "success", "failed", "skipped"
	Reasons  []string
	Duration time.Duration
}

// MarkFailed sets the run verdict to failed. It cannot be undone.
func (r *RunResult) MarkFailed() {
	r.failed = true
}

// Failed reports whether any validation failed during the run.
func (r *RunResult) Failed() bool {
	return r.failed
}

// FailedSteps counts steps that did not succeed.
func (r *RunResult) FailedSteps() int {
	n := 0
	for _, s := range r.Steps {
		if s.Status != StatusSuccess {
			n++
		}
	}
	return n
}

func (r *RunResult) addStep(s StepResult) {
	r.Steps = append(r.Steps, s)
}
