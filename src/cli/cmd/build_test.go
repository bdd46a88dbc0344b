package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/idebuild/src/build"
	"github.com/sofmeright/idebuild/src/config"
	"github.com/sofmeright/idebuild/src/host"
	"github.com/sofmeright/idebuild/src/host/scripted"
)

const testScenario = `version: "17.8.3"
configurations:
  - name: Debug
    platform: AnyCPU
  - name: Release
    platform: AnyCPU
builds:
  default:
    log: "Preparing Widgets\nPrepared for use on 3-Series\n"
  Debug|AnyCPU:
    log: "Widgets was not prepared\n"
`

const testConfig = `version: 1
host:
  driver: scripted
build:
  settle_delay: 0s
`

func setupWorkspace(t *testing.T) (sln, script string) {
	t.Helper()
	dir := t.TempDir()
	sln = filepath.Join(dir, "App.sln")
	script = filepath.Join(dir, "host.yml")
	require.NoError(t, os.WriteFile(sln, []byte("solution"), 0o644))
	require.NoError(t, os.WriteFile(script, []byte(testScenario), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".idebuild.yml"), []byte(testConfig), 0o644))
	t.Chdir(dir)
	return sln, script
}

func TestBuildCommand(t *testing.T) {
	sln, script := setupWorkspace(t)
	reports := filepath.Join(t.TempDir(), "reports")
	badgePath := filepath.Join(t.TempDir(), "build.svg")

	rootCmd.SetArgs([]string{"build", "--solution", sln, "--configuration", "Release",
		"--host-script", script, "--junit", reports, "--badge", badgePath})
	assert.Equal(t, build.ExitOK, Execute())

	assert.FileExists(t, filepath.Join(reports, "idebuild.xml"))
	data, err := os.ReadFile(badgePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "passing")

	rootCmd.SetArgs([]string{"build", "--solution", sln, "--all", "--host-script", script})
	assert.Equal(t, build.ExitFailed, Execute())

	rootCmd.SetArgs([]string{"build", "--solution", filepath.Join(filepath.Dir(sln), "Missing.sln"),
		"--all", "--host-script", script})
	assert.Equal(t, build.ExitSolutionMissing, Execute())
}

func TestSettlerFromConfig(t *testing.T) {
	bc := config.DefaultBuildConfig()
	assert.IsType(t, build.FixedDelay(0), settler(bc))

	bc.Settle = config.SettlePoll
	assert.IsType(t, build.PollIdle{}, settler(bc))
}

func TestWriteSummaryCountsFailedSteps(t *testing.T) {
	res := &build.RunResult{Steps: []build.StepResult{
		{Name: "Debug|AnyCPU", Status: build.StatusFailed, Reasons: []string{"marker missing", "status 1"}},
		{Name: "Release|AnyCPU", Status: build.StatusSuccess},
		{Name: "Test|AnyCPU", Status: build.StatusSkipped},
	}}
	res.MarkFailed()

	var buf bytes.Buffer
	writeSummary(&buf, res, false)

	out := buf.String()
	assert.Contains(t, out, "marker missing (+1 more)")
	assert.Contains(t, out, "2 of 3 step(s) failed")
}

func TestHostJournal(t *testing.T) {
	d := scripted.New(&scripted.Script{Version: "17.8.3"})
	assert.Empty(t, hostJournal(d), "no session yet")

	hs, err := d.Open(context.Background(), host.OpenOptions{})
	require.NoError(t, err)
	_, err = hs.OpenSolution(context.Background(), "/src/App.sln")
	require.NoError(t, err)

	assert.Contains(t, hostJournal(d), "App.sln")
}
