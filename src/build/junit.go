package build

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/sofmeright/idebuild/src/output"
)

// JUnit converts the run into a JUnit report: one suite for the solution
// and one test case per build step.
func (r *RunResult) JUnit(props map[string]string) output.JUnitTestSuites {
	name := strings.TrimSuffix(filepath.Base(r.Solution), filepath.Ext(r.Solution))
	if name == "" || name == "." {
		name = "solution"
	}

	suite := output.JUnitTestSuite{
		Name: "idebuild/" + name,
		Time: output.JUnitSeconds(r.Duration),
	}
	suite.Properties = append(suite.Properties, output.JUnitProperty{Name: "run", Value: r.RunID})
	suite.Properties = append(suite.Properties, output.JUnitProperty{Name: "state", Value: r.State.String()})
	for _, k := range sortedKeys(props) {
		suite.Properties = append(suite.Properties, output.JUnitProperty{Name: k, Value: props[k]})
	}

	for _, s := range r.Steps {
		tc := output.JUnitTestCase{
			Name:      s.Name,
			Classname: "idebuild." + name,
			Time:      output.JUnitSeconds(s.Duration),
		}
		switch s.Status {
		case StatusFailed:
			tc.Failure = &output.JUnitFailure{
				Message: strings.Join(s.Reasons, "; "),
				Type:    "validation",
				Body:    strings.Join(s.Reasons, "\n"),
			}
			suite.Failures++
		case StatusSkipped:
			tc.Skipped = &output.JUnitSkipped{Message: strings.Join(s.Reasons, "; ")}
			suite.Skipped++
		}
		suite.Cases = append(suite.Cases, tc)
		suite.Tests++
	}

	return output.JUnitTestSuites{
		Name:     "idebuild",
		Tests:    suite.Tests,
		Failures: suite.Failures,
		Skipped:  suite.Skipped,
		Time:     suite.Time,
		Suites:   []output.JUnitTestSuite{suite},
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
