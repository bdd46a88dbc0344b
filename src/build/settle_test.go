package build

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/idebuild/src/host/scripted"
)

func TestPollIdleWaitsUntilIdle(t *testing.T) {
	h := newHarness(t, &scripted.Script{
		Configurations: twoConfigs(),
		Builds:         map[string]scripted.Outcome{"default": {Log: okLog}},
		BusyPolls:      2,
	})
	h.builder.Settler = PollIdle{Interval: time.Millisecond}

	require.Equal(t, ExitOK, h.run(Options{Configuration: "Debug"}))
	assert.Equal(t, []string{
		"open-solution " + h.sln,
		"activate Debug|AnyCPU",
		"build Debug|AnyCPU",
		"busy?",
		"busy?",
		"busy?",
		"close-solution",
		"quit",
	}, h.calls())
}

func TestFixedDelayHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := FixedDelay(time.Hour).Settle(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFixedDelayZero(t *testing.T) {
	assert.NoError(t, FixedDelay(0).Settle(context.Background(), nil))
}
