package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sofmeright/idebuild/src/host"
)

// Redactor masks secrets in log text before it is echoed or saved. An
// error means the text could not be masked and must not be emitted.
type Redactor interface {
	Redact(text string) (string, error)
}

// ErrNoRedactor is reported when masking is requested without a Redactor.
var ErrNoRedactor = errors.New("masking requested but no redactor configured")

// Builder drives one host session per Run through open, configure, clean,
// build, validate and close.
type Builder struct {
	Driver  host.Driver
	Log     logrus.FieldLogger
	Out     io.Writer
	Color   bool
	Settler Settler

	// Channel is the output pane inspected after every build.
	Channel string
	Markers []Marker

	// HostVersion is a semver constraint the host must satisfy.
	HostVersion string

	Redactor Redactor

	result *RunResult
}

// New returns a Builder with the default channel, markers and a one second
// fixed settle delay.
func New(driver host.Driver, log logrus.FieldLogger) *Builder {
	return &Builder{
		Driver:  driver,
		Log:     log,
		Out:     os.Stdout,
		Settler: FixedDelay(time.Second),
		Channel: "Build",
		Markers: Markers([]string{"was not prepared"}, []string{"Preparing", "Prepared for use on"}),
	}
}

// Result returns the outcome of the last Run.
func (b *Builder) Result() *RunResult {
	return b.result
}

// Run builds the solution as requested by opts and returns the exit code.
// The host is always closed before Run returns.
func (b *Builder) Run(ctx context.Context, opts Options) int {
	start := time.Now()
	b.result = &RunResult{RunID: uuid.NewString(), State: StateIdle}

	r := &run{
		b:      b,
		opts:   opts,
		result: b.result,
		log:    b.Log.WithField("run", b.result.RunID[:8]),
	}
	var code int
	if opts.Redact && b.Redactor == nil {
		r.log.WithError(ErrNoRedactor).Error("Refusing to run")
		b.result.MarkFailed()
		r.transition(StateAborted)
		code = ExitFailed
	} else {
		code = r.execute(ctx)
	}
	if code == ExitOK && b.result.Failed() {
		code = ExitFailed
	}
	b.result.Duration = time.Since(start)
	return code
}

// run holds the state of one Run. The session is owned here and must not
// outlive it.
type run struct {
	b      *Builder
	opts   Options
	result *RunResult
	log    logrus.FieldLogger
	sess   host.Session
}

func (r *run) transition(s State) {
	r.log.Debugf("state %s -> %s", r.result.State, s)
	r.result.State = s
}

func (r *run) abort(ctx context.Context, code int) int {
	r.closeHost(ctx)
	r.transition(StateAborted)
	return code
}

func (r *run) execute(ctx context.Context) int {
	r.log.Info("Opening host...")
	sess, err := r.b.Driver.Open(ctx, host.OpenOptions{Interactive: r.opts.Interactive})
	if err != nil {
		r.log.WithError(err).Error("Host could not be started")
		r.transition(StateAborted)
		return ExitHostUnavailable
	}
	r.sess = sess
	r.transition(StateHostOpen)

	if err := host.CheckVersion(sess.Version(), r.b.HostVersion); err != nil {
		r.log.WithError(err).Error("Host version not supported")
		return r.abort(ctx, ExitHostUnavailable)
	}

	path, err := ResolveSolutionPath(r.opts.Solution)
	if err != nil {
		r.log.WithError(err).Error("Solution file not found")
		return r.abort(ctx, ExitSolutionMissing)
	}
	r.result.Solution = path
	if _, err := os.Stat(path); err != nil {
		r.log.WithField("solution", path).Error("Solution file not found")
		return r.abort(ctx, ExitSolutionMissing)
	}
	r.log.WithField("solution", path).Info("Solution file found")

	r.log.Info("Opening solution...")
	open, err := sess.OpenSolution(ctx, path)
	if err != nil || !open {
		r.log.WithError(err).WithField("is_open", open).Error("Solution could not be opened")
		return r.abort(ctx, ExitSolutionRejected)
	}
	r.transition(StateSolutionOpen)

	r.listProjects(ctx)
	if r.opts.ShowContexts {
		r.showContexts(ctx)
	}
	if r.opts.ShowOutputs {
		r.showOutputs(ctx)
	}

	code := r.dispatch(ctx)
	r.transition(StateDispatched)

	if r.opts.ShowBuildLog {
		r.echoBuildLog(ctx)
	}
	if r.opts.SaveLogsDir != "" {
		if err := r.saveLogs(ctx, r.opts.SaveLogsDir); err != nil {
			r.log.WithError(err).Error("Saving output panes failed")
		}
	}
	r.transition(StateValidated)

	r.log.Info("Closing solution...")
	if err := sess.CloseSolution(context.WithoutCancel(ctx)); err != nil {
		r.log.WithError(err).Warn("Closing solution failed")
	}
	r.closeHost(ctx)
	r.transition(StateClosed)
	return code
}

func (r *run) closeHost(ctx context.Context) {
	if r.sess == nil {
		return
	}
	r.log.Info("Closing host...")
	// Closing must happen even when the run's context is already done.
	if err := r.sess.Close(context.WithoutCancel(ctx)); err != nil {
		r.log.WithError(err).Warn("Closing host failed")
	}
	r.sess = nil
}

// dispatch runs exactly one build mode.
func (r *run) dispatch(ctx context.Context) int {
	mode := SelectMode(r.opts)
	r.log.Debugf("build mode %s", mode)

	switch mode {
	case ModeAll:
		configs, err := r.sess.ListConfigurations(ctx)
		if err != nil {
			r.log.WithError(err).Error("Listing solution configurations failed")
			r.result.MarkFailed()
			return ExitOK
		}
		if len(configs) == 0 {
			r.log.Warn("Solution has no configurations")
		}
		for _, c := range configs {
			r.log.Infof("BuildAll starting solution configuration '%s' platform '%s'", c.Name, c.Platform)
			r.buildStep(ctx, BuildStep{Configuration: c})
		}

	case ModeProject:
		tree, err := r.sess.ListProjects(ctx)
		if err != nil {
			r.log.WithError(err).Error("Listing projects failed")
			r.result.MarkFailed()
			return ExitFailed
		}
		unique, ok := FindProject(tree, r.opts.Project)
		if !ok {
			r.log.WithField("project", r.opts.Project).Error("Project not found in solution")
			r.skip(r.opts.Configuration+"/"+r.opts.Project, "project not found")
			return ExitFailed
		}
		r.log.WithField("project", r.opts.Project).Infof("Project resolved to '%s'", unique)
		cfg, ok := r.matchConfiguration(ctx, r.opts.Configuration)
		if !ok {
			return ExitOK
		}
		r.buildStep(ctx, BuildStep{Configuration: cfg, Project: r.opts.Project, UniqueName: unique})

	case ModeConfiguration:
		cfg, ok := r.matchConfiguration(ctx, r.opts.Configuration)
		if !ok {
			return ExitOK
		}
		r.buildStep(ctx, BuildStep{Configuration: cfg})

	default:
		if r.opts.Project != "" {
			r.log.Error("A project was specified without a solution configuration")
		} else {
			r.log.Error("Neither BuildAll nor a solution configuration was specified")
		}
		r.result.MarkFailed()
		return ExitFailed
	}
	return ExitOK
}

// matchConfiguration enumerates the host's configurations afresh and
// returns the first whose name matches. A miss fails the run.
func (r *run) matchConfiguration(ctx context.Context, name string) (host.Configuration, bool) {
	configs, err := r.sess.ListConfigurations(ctx)
	if err != nil {
		r.log.WithError(err).Error("Listing solution configurations failed")
		r.skip(name, err.Error())
		return host.Configuration{}, false
	}
	for _, c := range configs {
		r.log.Debugf("Considering solution configuration '%s' platform '%s'", c.Name, c.Platform)
	}
	cfg, ok := FindConfiguration(configs, name)
	if !ok {
		r.log.WithField("config", name).Error("No solution configuration matches")
		r.skip(name, "configuration not found")
		return host.Configuration{}, false
	}
	r.log.Infof("Matched solution configuration '%s' platform '%s'", cfg.Name, cfg.Platform)
	return cfg, true
}

func (r *run) skip(name, reason string) {
	r.result.MarkFailed()
	r.result.addStep(StepResult{Name: name, Status: StatusSkipped, Reasons: []string{reason}})
}

// buildStep activates the step's configuration, optionally cleans, builds
// the solution or the project, then validates. Host errors fail the step
// without aborting the run.
func (r *run) buildStep(ctx context.Context, step BuildStep) {
	start := time.Now()
	cfg := step.Configuration
	log := r.log.WithFields(logrus.Fields{"config": cfg.Name, "platform": cfg.Platform})
	if step.UniqueName != "" {
		log = log.WithField("project", step.Project)
	}

	res := StepResult{Name: step.Name(), Status: StatusSuccess}
	if err := r.invoke(ctx, log, step); err != nil {
		log.WithError(err).Error("Build step failed")
		res.Reasons = []string{err.Error()}
	} else {
		res.Reasons = r.validate(ctx, log)
	}
	if len(res.Reasons) > 0 {
		res.Status = StatusFailed
		r.result.MarkFailed()
	} else {
		log.Info("Build validated")
	}
	res.Duration = time.Since(start)
	r.result.addStep(res)
}

func (r *run) invoke(ctx context.Context, log logrus.FieldLogger, step BuildStep) error {
	cfg := step.Configuration
	log.Infof("Activating solution configuration '%s' platform '%s'", cfg.Name, cfg.Platform)
	if err := r.sess.Activate(ctx, cfg); err != nil {
		return fmt.Errorf("activating %s: %w", cfg, err)
	}

	if r.opts.Clean {
		log.Infof("Cleaning solution configuration '%s' platform '%s'", cfg.Name, cfg.Platform)
		if err := r.sess.Clean(ctx); err != nil {
			return fmt.Errorf("cleaning %s: %w", cfg, err)
		}
		if err := r.b.Settler.Settle(ctx, r.sess); err != nil {
			return fmt.Errorf("waiting for clean: %w", err)
		}
	}

	if step.UniqueName != "" {
		log.Infof("Building project '%s' in %s", step.UniqueName, cfg.Key())
		if err := r.sess.BuildProject(ctx, cfg.Key(), step.UniqueName); err != nil {
			return fmt.Errorf("building project %s: %w", step.UniqueName, err)
		}
	} else {
		log.Infof("Building %s", cfg)
		if err := r.sess.Build(ctx); err != nil {
			return fmt.Errorf("building %s: %w", cfg, err)
		}
	}
	if err := r.b.Settler.Settle(ctx, r.sess); err != nil {
		return fmt.Errorf("waiting for build: %w", err)
	}
	return nil
}

// validate inspects the host status and the build log after a build and
// returns the reasons the build counts as failed. Empty means success.
func (r *run) validate(ctx context.Context, log logrus.FieldLogger) []string {
	status, err := r.sess.LastBuildStatus(ctx)
	if err != nil {
		log.WithError(err).Error("Reading last build status failed")
		return []string{"reading build status: " + err.Error()}
	}
	if status != 0 {
		log.WithField("failed_projects", status).Error("Some projects failed to build")
		return []string{fmt.Sprintf("host reported %d failed project(s)", status)}
	}

	strict := r.opts.StrictPlugin
	text, ok := ReadChannel(ctx, r.sess, r.b.Channel)
	if !ok {
		if strict {
			log.WithField("channel", r.b.Channel).Error("Build log not available for plugin validation")
			return []string{fmt.Sprintf("output channel %q absent", r.b.Channel)}
		}
		log.WithField("channel", r.b.Channel).Debug("Build log not available")
		return nil
	}

	v := Evaluate(text, r.b.Markers, strict)
	for _, m := range v.Violations {
		if m.Kind == MustNotContain {
			log.WithField("marker", m.Text).Error("Toolchain plugin failure in build log")
		} else {
			log.WithField("marker", m.Text).Error("Toolchain plugin marker missing from build log")
		}
	}
	return v.Reasons()
}
