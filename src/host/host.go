// Package host defines the capability interface the build orchestrator uses
// to drive an IDE automation host, plus a registry of host drivers.
package host

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownDriver is returned by Get for unregistered driver names.
	ErrUnknownDriver = errors.New("host: unknown driver")
	// ErrChannelNotFound is returned when an output channel does not exist.
	ErrChannelNotFound = errors.New("host: output channel not found")
)

// Configuration is a solution configuration as reported by the host.
type Configuration struct {
	Name     string
	Platform string
}

// Key returns the "configuration|platform" composite used for project builds.
func (c Configuration) Key() string {
	return c.Name + "|" + c.Platform
}

func (c Configuration) String() string {
	return c.Name + ":" + c.Platform
}

// OpenOptions controls how a host session is started.
type OpenOptions struct {
	// Interactive shows the host UI and hands it user control.
	Interactive bool
}

// Driver starts host sessions.
type Driver interface {
	Name() string
	Open(ctx context.Context, opts OpenOptions) (Session, error)
}

// ConfigurableDriver is implemented by drivers that accept options from
// the host section of the config file.
type ConfigurableDriver interface {
	Configure(opts map[string]any) error
}

// Session is one live host process. It is valid until Close returns.
type Session interface {
	// Version reports the host's automation version (e.g. "9.0").
	Version() string

	// OpenSolution opens the solution and reports whether the host
	// considers it open afterwards.
	OpenSolution(ctx context.Context, path string) (bool, error)
	CloseSolution(ctx context.Context) error

	ListConfigurations(ctx context.Context) ([]Configuration, error)
	Activate(ctx context.Context, cfg Configuration) error
	Clean(ctx context.Context) error
	Build(ctx context.Context) error
	BuildProject(ctx context.Context, configKey, uniqueName string) error

	ListProjects(ctx context.Context) (*ProjectTree, error)

	// LastBuildStatus is the number of projects that failed in the last
	// build; 0 means the host reported success.
	LastBuildStatus(ctx context.Context) (int, error)

	// ReadOutputChannel returns the full text of a named output pane.
	ReadOutputChannel(ctx context.Context, name string) (string, error)

	Close(ctx context.Context) error
}

// IdleReporter is implemented by sessions that can tell when background
// build work has finished.
type IdleReporter interface {
	Busy(ctx context.Context) (bool, error)
}

// SolutionContext maps a project to the configuration it builds in under
// a given solution configuration.
type SolutionContext struct {
	ProjectUniqueName string
	Configuration     string
	Platform          string
}

// ConfigurationContexts groups the project contexts of one solution configuration.
type ConfigurationContexts struct {
	Configuration Configuration
	Contexts      []SolutionContext
}

// ContextReporter is implemented by sessions that expose project contexts.
type ContextReporter interface {
	ListContexts(ctx context.Context) ([]ConfigurationContexts, error)
}

// Property is a single name/value of a project's active configuration.
type Property struct {
	Name  string
	Value string
}

// ProjectOutput describes a top-level project's active configuration.
type ProjectOutput struct {
	Name       string
	FullName   string
	Properties []Property
}

// Lookup returns the value of the named property.
func (p ProjectOutput) Lookup(name string) (string, bool) {
	for _, prop := range p.Properties {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return "", false
}

// OutputReporter is implemented by sessions that expose project output settings.
type OutputReporter interface {
	ProjectOutputs(ctx context.Context) ([]ProjectOutput, error)
}

// PaneLister is implemented by sessions that can enumerate output panes.
type PaneLister interface {
	ListPanes(ctx context.Context) ([]string, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Driver{}
)

// Register adds a driver constructor to the global registry.
// Called from init() in each driver package.
func Register(name string, constructor func() Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("host: duplicate driver registration: %s", name))
	}
	registry[name] = constructor
}

// Get returns a new instance of the named driver.
func Get(name string) (Driver, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, name)
	}
	return ctor(), nil
}

// All returns sorted names of all registered drivers.
func All() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
