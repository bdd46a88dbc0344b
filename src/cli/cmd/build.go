package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/idebuild/src/badge"
	"github.com/sofmeright/idebuild/src/build"
	"github.com/sofmeright/idebuild/src/config"
	"github.com/sofmeright/idebuild/src/gitver"
	"github.com/sofmeright/idebuild/src/host"
	"github.com/sofmeright/idebuild/src/output"
	"github.com/sofmeright/idebuild/src/redact"
	"github.com/sofmeright/idebuild/src/version"

	"github.com/sofmeright/idebuild/src/host/scripted"
)

var (
	bSolution      string
	bAll           bool
	bConfiguration string
	bProject       string
	bClean         bool
	bStrict        bool
	bInteractive   bool
	bShowContexts  bool
	bShowOutputs   bool
	bShowLog       bool
	bHost          string
	bHostScript    string
	bSaveLogs      string
	bJUnit         string
	bBadge         string
	bRedact        bool
)

var buildCmd = &cobra.Command{
	Use:   "build [solution]",
	Short: "Build a solution through the IDE host",
	Long: `Open the solution in the IDE host, build every configuration (--all),
one configuration (--configuration) or one project in one configuration
(--configuration with --project), then validate the build log.

Exit codes:
  0  every build succeeded and validated
  1  usage error or a build/validation failure
  2  solution file not found
  3  host refused to open the solution
  4  host unavailable or unsupported version`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVar(&bSolution, "solution", "", `solution file, e.g. c:\path\to\solution.sln`)
	f.BoolVar(&bAll, "all", false, "build every solution configuration")
	f.StringVar(&bConfiguration, "configuration", "", "build one solution configuration, e.g. Release")
	f.StringVar(&bProject, "project", "", "build one project (requires --configuration)")
	f.BoolVar(&bClean, "clean", false, "clean the solution before each build")
	f.BoolVar(&bStrict, "strict-plugin", false, "require the toolchain plugin markers in the build log")
	f.BoolVar(&bInteractive, "interactive", false, "show the host UI and allow user control")
	f.BoolVar(&bShowContexts, "show-contexts", false, "print per-project configuration and platform")
	f.BoolVar(&bShowOutputs, "show-outputs", false, "print project output properties and paths")
	f.BoolVar(&bShowLog, "show-build-log", false, "echo the build log after building")
	f.StringVar(&bHost, "host", "", "host driver (default from config)")
	f.StringVar(&bHostScript, "host-script", "", "scenario file for the scripted host")
	f.StringVar(&bSaveLogs, "save-logs", "", "save every output pane into this directory")
	f.StringVar(&bJUnit, "junit", "", "write a JUnit report into this directory")
	f.StringVar(&bBadge, "badge", "", "write a build status SVG badge to this path")
	f.BoolVar(&bRedact, "redact", false, "mask detected secrets in echoed and saved logs")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	if bSolution == "" && len(args) > 0 {
		bSolution = args[0]
	}

	warnings, err := config.Validate(cfg)
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		return err
	}

	opts := buildOptions(cmd)
	if err := opts.Validate(); err != nil {
		log.Error(err)
		_ = cmd.Usage()
		return &exitError{code: build.ExitFailed}
	}

	driver, err := hostDriver(cmd)
	if err != nil {
		log.Error(err)
		return &exitError{code: build.ExitHostUnavailable}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := os.Stdout
	color := output.UseColor()
	output.ContextBlock(w, buildContextKV(opts, driver))

	b := build.New(driver, log)
	b.Out = w
	b.Color = color
	b.Settler = settler(cfg.Build)
	b.Channel = cfg.Validation.Channel
	b.Markers = build.Markers(cfg.Validation.FailureMarkers, cfg.Validation.RequiredMarkers)
	b.HostVersion = cfg.Host.Version
	if opts.Redact {
		rd := redact.New()
		if err := rd.Err(); err != nil {
			log.WithError(err).Error("Secret detector unavailable; refusing to emit unmasked logs")
			return &exitError{code: build.ExitFailed}
		}
		b.Redactor = rd
	}

	output.SectionStart(w, "idebuild_build", "Build")
	code := b.Run(ctx, opts)
	output.SectionEnd(w, "idebuild_build")

	res := b.Result()
	log.WithField("state", res.State).Infof("Run finished in %s", output.FormatElapsed(res.Duration))
	if verbose {
		if j := hostJournal(driver); j != "" {
			log.Debugf("Host calls:\n%s", j)
		}
	}
	writeSummary(w, res, color)
	writeReports(cmd, res, driver.Name())

	if code != build.ExitOK {
		return &exitError{code: code}
	}
	return nil
}

// buildOptions merges flags over config defaults. A flag wins only when
// it was given on the command line.
func buildOptions(cmd *cobra.Command) build.Options {
	f := cmd.Flags()
	opts := build.Options{
		Interactive:   bInteractive,
		Clean:         cfg.Build.Clean,
		StrictPlugin:  cfg.Build.StrictPlugin,
		BuildAll:      bAll,
		Configuration: bConfiguration,
		Project:       bProject,
		ShowContexts:  bShowContexts,
		ShowOutputs:   bShowOutputs,
		ShowBuildLog:  bShowLog,
		Solution:      bSolution,
		SaveLogsDir:   cfg.Output.SaveLogs,
		Redact:        cfg.Output.Redact,
	}
	if f.Changed("clean") {
		opts.Clean = bClean
	}
	if f.Changed("strict-plugin") {
		opts.StrictPlugin = bStrict
	}
	if f.Changed("save-logs") {
		opts.SaveLogsDir = bSaveLogs
	}
	if f.Changed("redact") {
		opts.Redact = bRedact
	}
	return opts
}

func hostDriver(cmd *cobra.Command) (host.Driver, error) {
	name := cfg.Host.Driver
	if bHost != "" {
		name = bHost
	}
	d, err := host.Get(name)
	if err != nil {
		return nil, err
	}

	script := cfg.Host.Script
	if cmd.Flags().Changed("host-script") {
		script = bHostScript
	}
	if cd, ok := d.(host.ConfigurableDriver); ok && script != "" {
		if err := cd.Configure(map[string]any{"script": script}); err != nil {
			return nil, fmt.Errorf("configuring host %s: %w", name, err)
		}
	}
	return d, nil
}

func settler(bc config.BuildConfig) build.Settler {
	if bc.Settle == config.SettlePoll {
		return build.PollIdle{Min: bc.SettleDelay.Std(), Interval: bc.PollInterval.Std()}
	}
	return build.FixedDelay(bc.SettleDelay.Std())
}

func buildContextKV(opts build.Options, driver host.Driver) []output.KV {
	kv := []output.KV{
		{Key: "idebuild", Value: version.Version},
		{Key: "Host", Value: driver.Name()},
		{Key: "Solution", Value: filepath.Base(opts.Solution)},
		{Key: "Mode", Value: build.SelectMode(opts).String()},
	}
	if opts.Configuration != "" {
		kv = append(kv, output.KV{Key: "Config", Value: opts.Configuration})
	}
	if opts.Project != "" {
		kv = append(kv, output.KV{Key: "Project", Value: opts.Project})
	}

	vi, err := gitver.DetectVersion(filepath.Dir(opts.Solution))
	if err != nil {
		log.WithError(err).Debug("Git revision not available")
		return kv
	}
	kv = append(kv, output.KV{Key: "Revision", Value: vi.Describe()})
	if vi.Branch != "" {
		kv = append(kv, output.KV{Key: "Branch", Value: vi.Branch})
	}
	return kv
}

// hostJournal returns the recorded call log of a scripted host session.
func hostJournal(d host.Driver) string {
	sd, ok := d.(*scripted.Driver)
	if !ok || sd.Last() == nil {
		return ""
	}
	return sd.Last().Journal()
}

func writeSummary(w io.Writer, res *build.RunResult, color bool) {
	sec := output.NewSection(w, "Summary", res.Duration, color)
	for _, s := range res.Steps {
		detail := ""
		if len(s.Reasons) > 0 {
			detail = s.Reasons[0]
			if n := len(s.Reasons) - 1; n > 0 {
				detail += fmt.Sprintf(" (+%d more)", n)
			}
		}
		output.SummaryRow(w, s.Name, s.Status, s.Duration, detail, color)
	}
	sec.Separator()
	status := build.StatusSuccess
	if res.Failed() {
		status = build.StatusFailed
	}
	detail := fmt.Sprintf("%d of %d step(s) failed", res.FailedSteps(), len(res.Steps))
	output.SummaryTotal(w, res.Duration, status, detail, color)
	sec.Close()
}

// writeReports writes the optional JUnit report and badge. Report
// failures are logged and never change the exit code.
func writeReports(cmd *cobra.Command, res *build.RunResult, hostName string) {
	junitDir := cfg.Output.JUnit
	if cmd.Flags().Changed("junit") {
		junitDir = bJUnit
	}
	if junitDir != "" {
		props := map[string]string{
			"host":    hostName,
			"started": time.Now().Add(-res.Duration).UTC().Format(time.RFC3339),
		}
		if vi, err := gitver.DetectVersion(filepath.Dir(res.Solution)); err == nil {
			props["revision"] = vi.Describe()
			props["version"] = vi.Version
		}
		path, err := output.WriteJUnit(junitDir, "idebuild.xml", res.JUnit(props))
		if err != nil {
			log.WithError(err).Warn("Writing JUnit report failed")
		} else {
			log.Infof("JUnit report written to %s", path)
		}
	}

	badgePath := cfg.Output.Badge
	if cmd.Flags().Changed("badge") {
		badgePath = bBadge
	}
	if badgePath != "" {
		eng, err := badge.NewWithFont(cfg.Output.BadgeFont)
		if err != nil {
			log.WithError(err).Warn("Loading badge font failed")
			return
		}
		if err := eng.WriteFile(badgePath, badge.BuildStatus(res.Failed())); err != nil {
			log.WithError(err).Warn("Writing badge failed")
			return
		}
		log.Infof("Badge written to %s", badgePath)
	}
}
