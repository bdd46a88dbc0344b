package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sofmeright/idebuild/src/host"
)

// PaneLogName returns the file name a saved output pane is written to.
func PaneLogName(solution, pane string) string {
	base := strings.TrimSuffix(filepath.Base(solution), filepath.Ext(solution))
	return "build." + sanitize(base) + "-" + sanitize(pane) + ".log"
}

// saveLogs snapshots every output pane from the host, then writes the
// snapshots to dir. Nothing is written unless every pane was masked.
// Host reads stay sequential; only the file writes run concurrently.
func (r *run) saveLogs(ctx context.Context, dir string) error {
	pl, ok := r.sess.(host.PaneLister)
	if !ok {
		return fmt.Errorf("host driver %s cannot list output panes", r.b.Driver.Name())
	}
	panes, err := pl.ListPanes(ctx)
	if err != nil {
		return fmt.Errorf("listing output panes: %w", err)
	}

	snapshots := make(map[string]string, len(panes))
	for _, name := range panes {
		text, ok := ReadChannel(ctx, r.sess, name)
		if !ok {
			r.log.WithField("pane", name).Debug("Output pane could not be read")
			continue
		}
		masked, err := r.redact(text)
		if err != nil {
			return fmt.Errorf("masking pane %s: %w", name, err)
		}
		snapshots[name] = masked
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	g, _ := errgroup.WithContext(ctx)
	for name, text := range snapshots {
		path := filepath.Join(dir, PaneLogName(r.result.Solution, name))
		g.Go(func() error {
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			return nil
		})
		r.log.WithField("pane", name).Infof("Saving output pane to %s", path)
	}
	return g.Wait()
}

// sanitize replaces characters that are awkward in file names.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}
