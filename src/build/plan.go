package build

import "github.com/sofmeright/idebuild/src/host"

// Mode is the build selection derived from Options.
type Mode int

const (
	ModeNone          Mode = iota // nothing buildable was requested
	ModeAll                       // every configuration
	ModeProject                   // one project in one configuration
	ModeConfiguration             // one configuration
)

func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeProject:
		return "project"
	case ModeConfiguration:
		return "configuration"
	default:
		return "none"
	}
}

// SelectMode picks exactly one build mode. BuildAll wins over a named
// configuration; a project without a configuration selects ModeNone.
func SelectMode(o Options) Mode {
	switch {
	case o.BuildAll:
		return ModeAll
	case o.Configuration != "" && o.Project != "":
		return ModeProject
	case o.Configuration != "":
		return ModeConfiguration
	default:
		return ModeNone
	}
}

// BuildStep is a single build invocation against the host.
type BuildStep struct {
	Configuration host.Configuration
	Project       string // display name, empty for a solution build
	UniqueName    string // host unique name of Project
}

// Name returns the step's report name.
func (s BuildStep) Name() string {
	if s.UniqueName == "" {
		return s.Configuration.Key()
	}
	return s.Configuration.Key() + "/" + s.Project
}

// State is the orchestrator's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateHostOpen
	StateSolutionOpen
	StateDispatched
	StateValidated
	StateClosed
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHostOpen:
		return "host-open"
	case StateSolutionOpen:
		return "solution-open"
	case StateDispatched:
		return "dispatched"
	case StateValidated:
		return "validated"
	case StateClosed:
		return "closed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}
