package build

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunResultJUnit(t *testing.T) {
	r := &RunResult{RunID: "run-1", Solution: "/src/App.sln", State: StateClosed, Duration: 3 * time.Second}
	r.addStep(StepResult{Name: "Debug|AnyCPU", Status: StatusSuccess, Duration: time.Second})
	r.addStep(StepResult{Name: "Release|AnyCPU", Status: StatusFailed, Reasons: []string{`found "was not prepared"`}})
	r.addStep(StepResult{Name: "Profile", Status: StatusSkipped, Reasons: []string{"configuration not found"}})

	j := r.JUnit(map[string]string{"host": "scripted"})

	assert.Equal(t, 3, j.Tests)
	assert.Equal(t, 1, j.Failures)
	assert.Equal(t, 1, j.Skipped)
	require.Len(t, j.Suites, 1)

	s := j.Suites[0]
	assert.Equal(t, "idebuild/App", s.Name)
	assert.Equal(t, "3.000", s.Time)
	require.Len(t, s.Cases, 3)
	assert.Nil(t, s.Cases[0].Failure)
	require.NotNil(t, s.Cases[1].Failure)
	assert.Equal(t, `found "was not prepared"`, s.Cases[1].Failure.Message)
	require.NotNil(t, s.Cases[2].Skipped)

	var names []string
	for _, p := range s.Properties {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"run", "state", "host"}, names)
}
