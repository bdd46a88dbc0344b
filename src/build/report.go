package build

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sofmeright/idebuild/src/host"
	"github.com/sofmeright/idebuild/src/output"
)

// listProjects narrates the solution's top-level projects.
func (r *run) listProjects(ctx context.Context) {
	tree, err := r.sess.ListProjects(ctx)
	if err != nil {
		r.log.WithError(err).Warn("Listing projects failed")
		return
	}
	top := tree.TopLevel()
	r.log.Infof("Solution has %d top-level project(s), %d in total", len(top), tree.Len())
	for _, p := range top {
		r.log.Infof("Project: %s", p.DisplayName)
	}
}

// showContexts prints, per solution configuration, which configuration and
// platform each project builds in.
func (r *run) showContexts(ctx context.Context) {
	cr, ok := r.sess.(host.ContextReporter)
	if !ok {
		r.log.Warnf("Host driver %s cannot report project contexts", r.b.Driver.Name())
		return
	}
	all, err := cr.ListContexts(ctx)
	if err != nil {
		r.log.WithError(err).Warn("Listing project contexts failed")
		return
	}

	sec := output.NewSection(r.b.Out, "Project Contexts", 0, r.b.Color)
	for i, cc := range all {
		if i > 0 {
			sec.Separator()
		}
		sec.Row("%-24s %s", "solution configuration", cc.Configuration.Name)
		sec.Row("%-24s %s", "solution platform", cc.Configuration.Platform)
		for _, c := range cc.Contexts {
			sec.Row("")
			sec.Row("  %-22s %s", "project unique name", c.ProjectUniqueName)
			sec.Row("  %-22s %s", "project configuration", c.Configuration)
			sec.Row("  %-22s %s", "project platform", c.Platform)
		}
	}
	sec.Close()
}

// unknownOutputFile is shown when the host does not define OutputFilename.
const unknownOutputFile = "???.???"

// showOutputs prints each top-level project's active configuration
// properties and where its output lands.
func (r *run) showOutputs(ctx context.Context) {
	or, ok := r.sess.(host.OutputReporter)
	if !ok {
		r.log.Warnf("Host driver %s cannot report project outputs", r.b.Driver.Name())
		return
	}
	projects, err := or.ProjectOutputs(ctx)
	if err != nil {
		r.log.WithError(err).Warn("Listing project outputs failed")
		return
	}

	sec := output.NewSection(r.b.Out, "Project Outputs", 0, r.b.Color)
	for i, p := range projects {
		if i > 0 {
			sec.Separator()
		}
		sec.Row("%s", p.Name)
		for _, prop := range p.Properties {
			sec.Row("  - %s = %s", prop.Name, prop.Value)
		}
		sec.Row("  → %s", OutputFile(p))
	}
	sec.Close()
}

// OutputFile computes a project's output file from its OutputPath and
// OutputFilename properties, relative to the project file's directory.
func OutputFile(p host.ProjectOutput) string {
	dir, _ := p.Lookup("OutputPath")
	dir = filepath.Join(filepath.Dir(p.FullName), filepath.FromSlash(strings.ReplaceAll(dir, `\`, "/")))
	name, ok := p.Lookup("OutputFilename")
	if !ok || name == "" {
		name = unknownOutputFile
	}
	return filepath.Join(dir, name)
}

// echoBuildLog prints the build channel line by line.
func (r *run) echoBuildLog(ctx context.Context) {
	text, ok := ReadChannel(ctx, r.sess, r.b.Channel)
	if !ok {
		r.log.WithField("channel", r.b.Channel).Warn("Build log not available")
		return
	}
	text, err := r.redact(text)
	if err != nil {
		r.log.WithError(err).Error("Build log not echoed")
		return
	}

	sec := output.NewSection(r.b.Out, "Build Log", 0, r.b.Color)
	for _, line := range strings.Split(strings.TrimRight(text, "\r\n"), "\n") {
		sec.Row("%s", strings.TrimRight(line, "\r"))
	}
	sec.Close()
}

// redact masks text when masking was requested. On error the text must
// not be emitted.
func (r *run) redact(text string) (string, error) {
	if !r.opts.Redact {
		return text, nil
	}
	if r.b.Redactor == nil {
		return "", ErrNoRedactor
	}
	return r.b.Redactor.Redact(text)
}
