package config

import (
	"fmt"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"
)

// Validate checks structural invariants of a loaded Config.
// Returns warnings (soft issues) and a hard error if the config is invalid.
func Validate(cfg *Config) (warnings []string, err error) {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("version: must be 1, got %d", cfg.Version))
	}

	// ── Host ──────────────────────────────────────────────────────────────

	if cfg.Host.Driver == "" {
		errs = append(errs, "host.driver: is required")
	}
	if cfg.Host.Version != "" {
		if _, perr := masterminds.NewConstraint(cfg.Host.Version); perr != nil {
			errs = append(errs, fmt.Sprintf("host.version: invalid constraint %q: %v", cfg.Host.Version, perr))
		}
	}

	// ── Build ─────────────────────────────────────────────────────────────

	switch cfg.Build.Settle {
	case SettleFixed, SettlePoll:
	default:
		errs = append(errs, fmt.Sprintf("build.settle: unknown mode %q (supported: %s, %s)", cfg.Build.Settle, SettleFixed, SettlePoll))
	}
	if cfg.Build.SettleDelay < 0 {
		errs = append(errs, "build.settle_delay: must not be negative")
	}
	if cfg.Build.Settle == SettleFixed && cfg.Build.SettleDelay == 0 {
		warnings = append(warnings, "build.settle_delay: 0s in fixed mode; output panes are read without waiting and may be incomplete")
	}
	if cfg.Build.Settle == SettlePoll && cfg.Build.PollInterval <= 0 {
		errs = append(errs, "build.poll_interval: must be positive in poll mode")
	}

	// ── Validation ────────────────────────────────────────────────────────

	if cfg.Validation.Channel == "" {
		errs = append(errs, "validation.channel: is required")
	}
	for i, m := range cfg.Validation.FailureMarkers {
		if m == "" {
			errs = append(errs, fmt.Sprintf("validation.failure_markers[%d]: must not be empty", i))
		}
	}
	for i, m := range cfg.Validation.RequiredMarkers {
		if m == "" {
			errs = append(errs, fmt.Sprintf("validation.required_markers[%d]: must not be empty", i))
		}
	}
	if cfg.Build.StrictPlugin && len(cfg.Validation.RequiredMarkers) == 0 {
		warnings = append(warnings, "build.strict_plugin: enabled but validation.required_markers is empty; only channel presence is checked")
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return warnings, nil
}
