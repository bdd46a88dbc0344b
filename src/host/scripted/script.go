// Package scripted implements a host driver that replays a scenario file
// instead of automating a real IDE. It is used for rehearsal runs and as
// the orchestrator's test double.
package scripted

import (
	"fmt"

	"github.com/sofmeright/idebuild/src/config"
	"github.com/sofmeright/idebuild/src/host"
)

// Script describes how the simulated host behaves.
type Script struct {
	// Version is the automation version the host reports.
	Version string `yaml:"version" toml:"version"`

	// StartError makes Open fail with this message.
	StartError string `yaml:"start_error,omitempty" toml:"start_error,omitempty"`

	// Reject makes OpenSolution report the solution as not open.
	Reject bool `yaml:"reject,omitempty" toml:"reject,omitempty"`

	Configurations []ConfigurationScript `yaml:"configurations" toml:"configurations"`
	Projects       []ProjectScript       `yaml:"projects" toml:"projects"`

	// Builds maps "configuration|platform" (solution builds) or
	// "configuration|platform/unique name" (project builds) to an outcome.
	// "default" applies when no key matches.
	Builds map[string]Outcome `yaml:"builds" toml:"builds"`

	// Panes are extra output panes present from the start.
	Panes map[string]string `yaml:"panes,omitempty" toml:"panes,omitempty"`

	// BusyPolls is how many Busy calls report true after each clean/build.
	BusyPolls int `yaml:"busy_polls,omitempty" toml:"busy_polls,omitempty"`
}

// ConfigurationScript is one solution configuration.
type ConfigurationScript struct {
	Name     string          `yaml:"name" toml:"name"`
	Platform string          `yaml:"platform" toml:"platform"`
	Contexts []ContextScript `yaml:"contexts,omitempty" toml:"contexts,omitempty"`
}

// ContextScript is one project context under a configuration.
type ContextScript struct {
	Project       string `yaml:"project" toml:"project"`
	Configuration string `yaml:"configuration" toml:"configuration"`
	Platform      string `yaml:"platform" toml:"platform"`
}

// ProjectScript is one project or solution folder.
type ProjectScript struct {
	Name       string            `yaml:"name" toml:"name"`
	UniqueName string            `yaml:"unique_name" toml:"unique_name"`
	FullName   string            `yaml:"full_name,omitempty" toml:"full_name,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty" toml:"properties,omitempty"`
	Children   []ProjectScript   `yaml:"children,omitempty" toml:"children,omitempty"`
}

// Outcome is what a build call produces.
type Outcome struct {
	// Status is the host's last-build-status after the build.
	Status int `yaml:"status" toml:"status"`

	// Log is appended to the Build pane.
	Log string `yaml:"log" toml:"log"`

	// Error makes the build call itself fail.
	Error string `yaml:"error,omitempty" toml:"error,omitempty"`
}

// Load reads a scenario from a YAML or TOML file.
func Load(path string) (*Script, error) {
	s := &Script{}
	if err := config.DecodeFile(path, s); err != nil {
		return nil, fmt.Errorf("scripted: loading %s: %w", path, err)
	}
	return s, nil
}

// tree flattens the scripted projects into a host.ProjectTree.
func (s *Script) tree() *host.ProjectTree {
	t := host.NewProjectTree()
	var add func(parent int, ps []ProjectScript)
	add = func(parent int, ps []ProjectScript) {
		for _, p := range ps {
			idx := t.Add(parent, p.Name, p.UniqueName)
			add(idx, p.Children)
		}
	}
	add(-1, s.Projects)
	return t
}
