package build

import (
	"context"
	"fmt"
	"time"

	"github.com/sofmeright/idebuild/src/host"
)

// Settler waits for the host to finish background work after a clean or
// build call returns.
type Settler interface {
	Settle(ctx context.Context, sess host.Session) error
}

// FixedDelay waits a fixed duration.
type FixedDelay time.Duration

func (d FixedDelay) Settle(ctx context.Context, _ host.Session) error {
	return sleep(ctx, time.Duration(d))
}

// PollIdle waits at least Min, then polls the session until it reports
// idle. Sessions that cannot report idleness get the Min wait only.
type PollIdle struct {
	Min      time.Duration
	Interval time.Duration
}

func (p PollIdle) Settle(ctx context.Context, sess host.Session) error {
	if err := sleep(ctx, p.Min); err != nil {
		return err
	}
	ir, ok := sess.(host.IdleReporter)
	if !ok {
		return nil
	}
	for {
		busy, err := ir.Busy(ctx)
		if err != nil {
			return fmt.Errorf("polling host: %w", err)
		}
		if !busy {
			return nil
		}
		if err := sleep(ctx, p.Interval); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
