package build

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/idebuild/src/host"
	"github.com/sofmeright/idebuild/src/host/scripted"
)

const okLog = "Preparing Widgets...\nWidgets Prepared for use on 3-Series\n"

func hostOpts() host.OpenOptions { return host.OpenOptions{} }

type harness struct {
	builder *Builder
	driver  *scripted.Driver
	out     *bytes.Buffer
	logs    *logtest.Hook
	sln     string
}

func newHarness(t *testing.T, s *scripted.Script) *harness {
	t.Helper()

	dir := t.TempDir()
	sln := filepath.Join(dir, "App.sln")
	require.NoError(t, os.WriteFile(sln, []byte("Microsoft Visual Studio Solution File\n"), 0o644))

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	d := scripted.New(s)
	b := New(d, logger)
	out := &bytes.Buffer{}
	b.Out = out
	b.Settler = FixedDelay(0)

	return &harness{builder: b, driver: d, out: out, logs: hook, sln: sln}
}

func (h *harness) run(opts Options) int {
	if opts.Solution == "" {
		opts.Solution = h.sln
	}
	return h.builder.Run(context.Background(), opts)
}

func (h *harness) calls() []string {
	if h.driver.Last() == nil {
		return nil
	}
	return h.driver.Last().Calls()
}

func twoConfigs() []scripted.ConfigurationScript {
	return []scripted.ConfigurationScript{
		{Name: "Debug", Platform: "AnyCPU"},
		{Name: "Release", Platform: "AnyCPU"},
	}
}

func TestRunMissingSolution(t *testing.T) {
	h := newHarness(t, &scripted.Script{Configurations: twoConfigs()})

	code := h.run(Options{BuildAll: true, Solution: filepath.Join(t.TempDir(), "Nope.sln")})

	assert.Equal(t, ExitSolutionMissing, code)
	assert.Equal(t, []string{"quit"}, h.calls())
	assert.True(t, h.driver.Last().Closed())
	assert.Equal(t, StateAborted, h.builder.Result().State)
}

func TestRunSolutionPathWithoutExtension(t *testing.T) {
	h := newHarness(t, &scripted.Script{
		Configurations: twoConfigs(),
		Builds:         map[string]scripted.Outcome{"default": {Log: okLog}},
	})

	code := h.run(Options{Configuration: "Debug", Solution: h.sln[:len(h.sln)-len(".sln")]})

	assert.Equal(t, ExitOK, code)
	assert.Equal(t, h.sln, h.builder.Result().Solution)
}

func TestRunBuildAllContinuesAfterFailure(t *testing.T) {
	h := newHarness(t, &scripted.Script{
		Configurations: twoConfigs(),
		Builds: map[string]scripted.Outcome{
			"Debug|AnyCPU":   {Log: "Program Widgets was not prepared\n"},
			"Release|AnyCPU": {Log: okLog},
		},
	})

	code := h.run(Options{BuildAll: true})

	assert.Equal(t, ExitFailed, code)
	assert.Equal(t, []string{
		"open-solution " + h.sln,
		"activate Debug|AnyCPU",
		"build Debug|AnyCPU",
		"activate Release|AnyCPU",
		"build Release|AnyCPU",
		"close-solution",
		"quit",
	}, h.calls())

	res := h.builder.Result()
	assert.True(t, res.Failed())
	require.Len(t, res.Steps, 2)
	assert.Equal(t, StatusFailed, res.Steps[0].Status)
	assert.Equal(t, []string{`found "was not prepared"`}, res.Steps[0].Reasons)
	assert.Equal(t, StatusSuccess, res.Steps[1].Status)
	assert.Equal(t, StateClosed, res.State)
	assert.Equal(t, 1, res.FailedSteps())
}

func TestRunNestedProject(t *testing.T) {
	h := newHarness(t, &scripted.Script{
		Configurations: []scripted.ConfigurationScript{
			{Name: "Debug", Platform: "AnyCPU"},
			{Name: "Release", Platform: "x86"},
		},
		Projects: []scripted.ProjectScript{
			{Name: "App", UniqueName: `App\App.csproj`},
			{Name: "Libs", UniqueName: "Libs", Children: []scripted.ProjectScript{
				{Name: "Widgets", UniqueName: `Libs\Widgets\Widgets.csproj`},
			}},
		},
		Builds: map[string]scripted.Outcome{"default": {Log: okLog}},
	})

	code := h.run(Options{Configuration: "Release", Project: "widgets"})

	assert.Equal(t, ExitOK, code)
	assert.Contains(t, h.calls(), `build-project Release|x86 Libs\Widgets\Widgets.csproj`)
	assert.NotContains(t, h.calls(), "build Release|x86")

	res := h.builder.Result()
	require.Len(t, res.Steps, 1)
	assert.Equal(t, "Release|x86/widgets", res.Steps[0].Name)
}

func TestRunProjectWithoutConfiguration(t *testing.T) {
	opts := Options{Project: "Widgets", Solution: "App.sln"}
	require.ErrorIs(t, opts.Validate(), ErrUsage)

	h := newHarness(t, &scripted.Script{Configurations: twoConfigs()})
	code := h.run(Options{Project: "Widgets"})

	assert.Equal(t, ExitFailed, code)
	for _, c := range h.calls() {
		assert.False(t, strings.HasPrefix(c, "build") || strings.HasPrefix(c, "activate"), c)
	}
	assert.True(t, h.builder.Result().Failed())
}

func TestRunStrictMissingMarkers(t *testing.T) {
	h := newHarness(t, &scripted.Script{
		Configurations: twoConfigs(),
		Builds:         map[string]scripted.Outcome{"default": {Status: 0, Log: "Build succeeded.\n"}},
	})

	code := h.run(Options{Configuration: "Release", StrictPlugin: true})

	assert.Equal(t, ExitFailed, code)
	res := h.builder.Result()
	require.Len(t, res.Steps, 1)
	assert.Equal(t, []string{`missing "Preparing"`, `missing "Prepared for use on"`}, res.Steps[0].Reasons)
}

func TestRunStrictAbsentChannel(t *testing.T) {
	s := &scripted.Script{Configurations: twoConfigs()}

	h := newHarness(t, s)
	assert.Equal(t, ExitOK, h.run(Options{Configuration: "Debug"}))

	h = newHarness(t, s)
	assert.Equal(t, ExitFailed, h.run(Options{Configuration: "Debug", StrictPlugin: true}))
	assert.Equal(t, []string{`output channel "Build" absent`}, h.builder.Result().Steps[0].Reasons)
}

func TestRunHostReportsFailedProjects(t *testing.T) {
	h := newHarness(t, &scripted.Script{
		Configurations: twoConfigs(),
		Builds:         map[string]scripted.Outcome{"default": {Status: 2, Log: "was not prepared"}},
	})

	code := h.run(Options{Configuration: "Debug"})

	assert.Equal(t, ExitFailed, code)
	assert.Equal(t, []string{"host reported 2 failed project(s)"}, h.builder.Result().Steps[0].Reasons)
}

func TestRunBuildErrorDoesNotAbort(t *testing.T) {
	h := newHarness(t, &scripted.Script{
		Configurations: twoConfigs(),
		Builds: map[string]scripted.Outcome{
			"Debug|AnyCPU":   {Error: "host busy"},
			"Release|AnyCPU": {Log: okLog},
		},
	})

	code := h.run(Options{BuildAll: true})

	assert.Equal(t, ExitFailed, code)
	assert.Contains(t, h.calls(), "build Release|AnyCPU")
	res := h.builder.Result()
	require.Len(t, res.Steps, 2)
	assert.Equal(t, StatusFailed, res.Steps[0].Status)
	assert.Contains(t, res.Steps[0].Reasons[0], "host busy")
	assert.Equal(t, StatusSuccess, res.Steps[1].Status)
}

func TestRunConfigurationNotFound(t *testing.T) {
	h := newHarness(t, &scripted.Script{Configurations: twoConfigs()})

	code := h.run(Options{Configuration: "Profile"})

	assert.Equal(t, ExitFailed, code)
	res := h.builder.Result()
	require.Len(t, res.Steps, 1)
	assert.Equal(t, StatusSkipped, res.Steps[0].Status)
	assert.Equal(t, StateClosed, res.State)
	assert.Contains(t, h.calls(), "close-solution")
}

func TestRunProjectNotFound(t *testing.T) {
	h := newHarness(t, &scripted.Script{
		Configurations: twoConfigs(),
		Projects:       []scripted.ProjectScript{{Name: "App", UniqueName: `App\App.csproj`}},
	})

	code := h.run(Options{Configuration: "Debug", Project: "Widgets"})

	assert.Equal(t, ExitFailed, code)
	assert.NotContains(t, h.calls(), "activate Debug|AnyCPU")
	assert.Equal(t, StatusSkipped, h.builder.Result().Steps[0].Status)
}

func TestRunCleanBeforeBuild(t *testing.T) {
	h := newHarness(t, &scripted.Script{
		Configurations: twoConfigs(),
		Builds:         map[string]scripted.Outcome{"default": {Log: okLog}},
	})

	require.Equal(t, ExitOK, h.run(Options{Configuration: "Debug", Clean: true}))
	assert.Equal(t, []string{
		"open-solution " + h.sln,
		"activate Debug|AnyCPU",
		"clean",
		"build Debug|AnyCPU",
		"close-solution",
		"quit",
	}, h.calls())
}

func TestRunSolutionRejected(t *testing.T) {
	h := newHarness(t, &scripted.Script{Reject: true, Configurations: twoConfigs()})

	code := h.run(Options{BuildAll: true})

	assert.Equal(t, ExitSolutionRejected, code)
	assert.Equal(t, []string{"open-solution " + h.sln, "quit"}, h.calls())
	assert.Equal(t, StateAborted, h.builder.Result().State)
}

func TestRunHostUnavailable(t *testing.T) {
	h := newHarness(t, &scripted.Script{StartError: "automation server not registered"})

	code := h.run(Options{BuildAll: true})

	assert.Equal(t, ExitHostUnavailable, code)
	assert.Nil(t, h.driver.Last())
	assert.Equal(t, StateAborted, h.builder.Result().State)
}

func TestRunHostVersionMismatch(t *testing.T) {
	h := newHarness(t, &scripted.Script{Version: "15.0.0", Configurations: twoConfigs()})
	h.builder.HostVersion = ">= 16.0"

	code := h.run(Options{BuildAll: true})

	assert.Equal(t, ExitHostUnavailable, code)
	assert.Equal(t, []string{"quit"}, h.calls())
}

func TestRunInteractiveIsPassedToHost(t *testing.T) {
	h := newHarness(t, &scripted.Script{
		Configurations: twoConfigs(),
		Builds:         map[string]scripted.Outcome{"default": {Log: okLog}},
	})

	h.run(Options{Configuration: "Debug", Interactive: true})
	assert.True(t, h.driver.Last().Interactive())
}

func TestRunResultIsMonotonic(t *testing.T) {
	h := newHarness(t, &scripted.Script{
		Configurations: []scripted.ConfigurationScript{
			{Name: "Debug", Platform: "AnyCPU"},
			{Name: "Release", Platform: "AnyCPU"},
			{Name: "Profile", Platform: "AnyCPU"},
		},
		Builds: map[string]scripted.Outcome{
			"Debug|AnyCPU": {Log: "was not prepared"},
			"default":      {Log: okLog},
		},
	})

	assert.Equal(t, ExitFailed, h.run(Options{BuildAll: true}))
	res := h.builder.Result()
	assert.True(t, res.Failed())
	assert.Len(t, res.Steps, 3)
}

func TestRunEachRunHasOwnID(t *testing.T) {
	h := newHarness(t, &scripted.Script{
		Configurations: twoConfigs(),
		Builds:         map[string]scripted.Outcome{"default": {Log: okLog}},
	})

	h.run(Options{Configuration: "Debug"})
	first := h.builder.Result().RunID
	h.run(Options{Configuration: "Debug"})
	second := h.builder.Result().RunID

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestRunNarratesDecisions(t *testing.T) {
	h := newHarness(t, &scripted.Script{
		Configurations: twoConfigs(),
		Builds:         map[string]scripted.Outcome{"default": {Log: okLog}},
	})

	h.run(Options{Configuration: "Release"})

	var msgs []string
	for _, e := range h.logs.AllEntries() {
		msgs = append(msgs, e.Message)
	}
	assert.Contains(t, msgs, "Solution file found")
	assert.Contains(t, msgs, "Matched solution configuration 'Release' platform 'AnyCPU'")
	assert.Contains(t, msgs, "Build validated")
}

func TestRunCancelledContextStillClosesHost(t *testing.T) {
	h := newHarness(t, &scripted.Script{
		Configurations: twoConfigs(),
		Builds:         map[string]scripted.Outcome{"default": {Log: okLog}},
	})
	h.builder.Settler = FixedDelay(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code := h.builder.Run(ctx, Options{Configuration: "Debug", Solution: h.sln})

	assert.Equal(t, ExitFailed, code)
	assert.True(t, h.driver.Last().Closed())
}
