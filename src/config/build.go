package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Settle modes.
const (
	SettleFixed = "fixed"
	SettlePoll  = "poll"
)

// HostConfig selects and constrains the automation host.
type HostConfig struct {
	// Driver is the registered host driver name.
	Driver string `yaml:"driver" toml:"driver"`

	// Script is the scenario file for the scripted driver.
	Script string `yaml:"script,omitempty" toml:"script,omitempty"`

	// Version is a semver constraint the host's automation version must
	// satisfy, e.g. ">= 9.0, < 10". Empty accepts any host.
	Version string `yaml:"version,omitempty" toml:"version,omitempty"`
}

// DefaultHostConfig returns host defaults.
func DefaultHostConfig() HostConfig {
	return HostConfig{Driver: "scripted"}
}

// BuildConfig holds defaults for build flags and host settling.
type BuildConfig struct {
	// Clean issues a solution clean before each build.
	Clean bool `yaml:"clean" toml:"clean"`

	// StrictPlugin requires the toolchain plugin markers in the build log.
	StrictPlugin bool `yaml:"strict_plugin" toml:"strict_plugin"`

	// Settle is how to wait for the host after clean/build: "fixed" or "poll".
	Settle string `yaml:"settle" toml:"settle"`

	// SettleDelay is the fixed wait, and the minimum wait when polling.
	SettleDelay Duration `yaml:"settle_delay" toml:"settle_delay"`

	// PollInterval is the busy-poll period in poll mode.
	PollInterval Duration `yaml:"poll_interval" toml:"poll_interval"`
}

// DefaultBuildConfig returns build defaults.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		Settle:       SettleFixed,
		SettleDelay:  Duration(time.Second),
		PollInterval: Duration(250 * time.Millisecond),
	}
}

// ValidationConfig defines the post-build log markers.
type ValidationConfig struct {
	// Channel is the output pane inspected after each build.
	Channel string `yaml:"channel" toml:"channel"`

	// FailureMarkers fail the build when present in the channel.
	FailureMarkers []string `yaml:"failure_markers" toml:"failure_markers"`

	// RequiredMarkers fail the build when absent, in strict plugin mode only.
	RequiredMarkers []string `yaml:"required_markers" toml:"required_markers"`
}

// DefaultValidationConfig returns the toolchain plugin markers.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		Channel:         "Build",
		FailureMarkers:  []string{"was not prepared"},
		RequiredMarkers: []string{"Preparing", "Prepared for use on"},
	}
}

// OutputConfig holds report destinations. Empty values disable the report.
type OutputConfig struct {
	SaveLogs string `yaml:"save_logs,omitempty" toml:"save_logs,omitempty"`
	JUnit    string `yaml:"junit,omitempty" toml:"junit,omitempty"`
	Badge    string `yaml:"badge,omitempty" toml:"badge,omitempty"`

	// BadgeFont is a bundled font name (go-regular, go-bold, go-mono) or a
	// TTF/OTF path. Empty uses go-regular.
	BadgeFont string `yaml:"badge_font,omitempty" toml:"badge_font,omitempty"`

	// Redact masks detected secrets in echoed and saved logs.
	Redact bool `yaml:"redact" toml:"redact"`
}

// Duration is a time.Duration that unmarshals from strings like "1s".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalText implements encoding.TextUnmarshaler (TOML).
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}
