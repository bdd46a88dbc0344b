package scripted

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sofmeright/idebuild/src/host"
)

// BuildPane is the pane build logs are written to.
const BuildPane = "Build"

func init() {
	host.Register("scripted", func() host.Driver { return &Driver{} })
}

// ScriptEnv names the scenario file when no path is configured.
const ScriptEnv = "IDEBUILD_HOST_SCRIPT"

// Driver opens simulated host sessions.
type Driver struct {
	// Path is the scenario file. Falls back to $IDEBUILD_HOST_SCRIPT.
	Path string

	// Script is used directly when set, bypassing Path.
	Script *Script

	last *Session
}

// New returns a driver that replays s.
func New(s *Script) *Driver {
	return &Driver{Script: s}
}

func (d *Driver) Name() string { return "scripted" }

// Configure accepts the "script" option.
func (d *Driver) Configure(opts map[string]any) error {
	v, ok := opts["script"]
	if !ok || v == nil {
		return nil
	}
	path, ok := v.(string)
	if !ok {
		return fmt.Errorf("scripted: option script must be a string, got %T", v)
	}
	d.Path = path
	return nil
}

// Open starts a simulated host session.
func (d *Driver) Open(ctx context.Context, opts host.OpenOptions) (host.Session, error) {
	s := d.Script
	if s == nil {
		path := d.Path
		if path == "" {
			path = os.Getenv(ScriptEnv)
		}
		if path == "" {
			return nil, fmt.Errorf("scripted: no scenario file (set host.script or %s)", ScriptEnv)
		}
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		s = loaded
	}
	if s.StartError != "" {
		return nil, fmt.Errorf("scripted: starting host: %s", s.StartError)
	}

	panes := make(map[string]string, len(s.Panes))
	for k, v := range s.Panes {
		panes[k] = v
	}

	d.last = &Session{
		script:      s,
		interactive: opts.Interactive,
		panes:       panes,
	}
	return d.last, nil
}

// Last returns the most recently opened session, or nil.
func (d *Driver) Last() *Session { return d.last }

// Session is a simulated host session. It records every call in order.
type Session struct {
	script      *Script
	interactive bool

	mu       sync.Mutex
	calls    []string
	open     bool
	closed   bool
	active   *host.Configuration
	status   int
	panes    map[string]string
	busyLeft int
}

// Calls returns the journal of host calls made so far.
func (s *Session) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// Interactive reports whether the session was opened with the UI shown.
func (s *Session) Interactive() bool { return s.interactive }

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) record(format string, args ...any) {
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
}

func (s *Session) Version() string { return s.script.Version }

func (s *Session) OpenSolution(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("open-solution %s", path)
	s.open = !s.script.Reject
	return s.open, nil
}

func (s *Session) CloseSolution(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("close-solution")
	s.open = false
	return nil
}

func (s *Session) ListConfigurations(ctx context.Context) ([]host.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil, errors.New("scripted: no solution open")
	}
	out := make([]host.Configuration, 0, len(s.script.Configurations))
	for _, c := range s.script.Configurations {
		out = append(out, host.Configuration{Name: c.Name, Platform: c.Platform})
	}
	return out, nil
}

func (s *Session) Activate(ctx context.Context, cfg host.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("activate %s", cfg.Key())
	s.active = &cfg
	return nil
}

func (s *Session) Clean(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("clean")
	s.busyLeft = s.script.BusyPolls
	return nil
}

func (s *Session) Build(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return errors.New("scripted: no active configuration")
	}
	key := s.active.Key()
	s.record("build %s", key)
	return s.apply(key)
}

func (s *Session) BuildProject(ctx context.Context, configKey, uniqueName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("build-project %s %s", configKey, uniqueName)
	return s.apply(configKey + "/" + uniqueName)
}

// apply replaces the Build pane with the outcome's log, as the host clears
// the pane at the start of every build.
func (s *Session) apply(key string) error {
	out, ok := s.script.Builds[key]
	if !ok {
		out = s.script.Builds["default"]
	}
	s.busyLeft = s.script.BusyPolls
	if out.Error != "" {
		return fmt.Errorf("scripted: build %s: %s", key, out.Error)
	}
	s.status = out.Status
	if out.Log != "" {
		s.panes[BuildPane] = out.Log
	} else {
		delete(s.panes, BuildPane)
	}
	return nil
}

func (s *Session) ListProjects(ctx context.Context) (*host.ProjectTree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.script.tree(), nil
}

func (s *Session) LastBuildStatus(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, nil
}

func (s *Session) ReadOutputChannel(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.panes[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", host.ErrChannelNotFound, name)
	}
	return text, nil
}

// Busy reports true for the scripted number of polls after each clean/build.
func (s *Session) Busy(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("busy?")
	if s.busyLeft > 0 {
		s.busyLeft--
		return true, nil
	}
	return false, nil
}

func (s *Session) ListContexts(ctx context.Context) ([]host.ConfigurationContexts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]host.ConfigurationContexts, 0, len(s.script.Configurations))
	for _, c := range s.script.Configurations {
		cc := host.ConfigurationContexts{Configuration: host.Configuration{Name: c.Name, Platform: c.Platform}}
		for _, sc := range c.Contexts {
			cc.Contexts = append(cc.Contexts, host.SolutionContext{
				ProjectUniqueName: sc.Project,
				Configuration:     sc.Configuration,
				Platform:          sc.Platform,
			})
		}
		out = append(out, cc)
	}
	return out, nil
}

func (s *Session) ProjectOutputs(ctx context.Context) ([]host.ProjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]host.ProjectOutput, 0, len(s.script.Projects))
	for _, p := range s.script.Projects {
		po := host.ProjectOutput{Name: p.Name, FullName: p.FullName}
		keys := make([]string, 0, len(p.Properties))
		for k := range p.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			po.Properties = append(po.Properties, host.Property{Name: k, Value: p.Properties[k]})
		}
		out = append(out, po)
	}
	return out, nil
}

func (s *Session) ListPanes(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.panes))
	for k := range s.panes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("quit")
	s.closed = true
	return nil
}

// Journal formats the call log one call per line.
func (s *Session) Journal() string {
	return strings.Join(s.Calls(), "\n")
}
