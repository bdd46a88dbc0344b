package badge

import (
	"fmt"
	"os"
	"path/filepath"
)

// Engine generates SVG badges using a specific font.
type Engine struct {
	metrics *FontMetrics
}

// New creates a badge engine with the given font metrics.
func New(metrics *FontMetrics) *Engine {
	return &Engine{metrics: metrics}
}

// NewWithFont creates a badge engine at 11pt using a bundled font name or
// a font file path. An empty name selects the default font.
func NewWithFont(name string) (*Engine, error) {
	m, err := LoadNamedFont(name, 11)
	if err != nil {
		return nil, err
	}
	return New(m), nil
}

// Badge defines the content and appearance of a single badge.
type Badge struct {
	Label string // left side text
	Value string // right side text
	Color string // hex color for right side (e.g. "#4c1")
}

// Generate produces a shields.io-compatible SVG badge string.
func (e *Engine) Generate(b Badge) string {
	return e.renderSVG(b)
}

// BuildStatus returns the badge for a finished run.
func BuildStatus(failed bool) Badge {
	if failed {
		return Badge{Label: "build", Value: "failing", Color: StatusColor("failed")}
	}
	return Badge{Label: "build", Value: "passing", Color: StatusColor("passed")}
}

// WriteFile renders b and writes it to path, creating parent directories.
func (e *Engine) WriteFile(path string, b Badge) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating badge dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(e.Generate(b)), 0o644); err != nil {
		return fmt.Errorf("writing badge %s: %w", path, err)
	}
	return nil
}

// StatusColor maps a status keyword to a badge hex color.
func StatusColor(status string) string {
	switch status {
	case "passed", "success":
		return "#4c1"
	case "warning":
		return "#dfb317"
	case "critical", "failed":
		return "#e05d44"
	default:
		return "#9f9f9f"
	}
}
