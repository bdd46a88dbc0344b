package build

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Exit codes returned by Builder.Run.
const (
	ExitOK               = 0
	ExitFailed           = 1 // usage error or validation failure
	ExitSolutionMissing  = 2 // solution file does not exist
	ExitSolutionRejected = 3 // host did not report the solution open
	ExitHostUnavailable  = 4 // host could not be started
)

// Options is the immutable request for one run.
type Options struct {
	// Interactive shows the host UI and allows user control.
	Interactive bool

	// Clean cleans the solution before each build. Clean applies to the
	// whole solution, also when building a single project.
	Clean bool

	// StrictPlugin requires the toolchain plugin markers in the build log.
	StrictPlugin bool

	// BuildAll builds every solution configuration.
	BuildAll bool

	// Configuration limits the build to one configuration name, e.g. Release.
	Configuration string

	// Project limits the build to one project; Configuration is required.
	Project string

	ShowContexts bool
	ShowOutputs  bool
	ShowBuildLog bool

	// Solution is the path to the solution file.
	Solution string

	// SaveLogsDir, when set, receives every output pane after the builds.
	SaveLogsDir string

	// Redact masks detected secrets in echoed and saved logs.
	Redact bool
}

// ErrUsage marks option combinations that cannot be built.
var ErrUsage = errors.New("usage")

// Validate checks the option invariants.
func (o Options) Validate() error {
	if o.Solution == "" {
		return fmt.Errorf(`%w: solution must be specified with --solution c:\path\to\solution.sln`, ErrUsage)
	}
	if o.Project != "" && o.Configuration == "" {
		return fmt.Errorf("%w: --project requires --configuration", ErrUsage)
	}
	if !o.BuildAll && o.Configuration == "" {
		return fmt.Errorf("%w: neither --all nor --configuration was specified", ErrUsage)
	}
	return nil
}

// ResolveSolutionPath returns the absolute solution path, adding the .sln
// extension when the path has none.
func ResolveSolutionPath(path string) (string, error) {
	if filepath.Ext(path) == "" {
		path += ".sln"
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving solution path %s: %w", path, err)
	}
	return abs, nil
}
