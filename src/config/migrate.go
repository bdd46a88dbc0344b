package config

import (
	"fmt"
)

// MigrateToLatest takes raw config data and migrates it to the current
// schema version. Returns the migrated bytes ready for writing.
//
// Migration chain:
//
//	version 1 → current (no-op, already latest)
func MigrateToLatest(path string, data []byte) ([]byte, error) {
	ver, err := peekVersion(path, data)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	switch ver {
	case 1:
		return data, nil
	case 0:
		return nil, fmt.Errorf("migrate: config has no version field; add version: 1")
	default:
		return nil, fmt.Errorf("migrate: unknown config version %d (latest supported: 1)", ver)
	}
}

// peekVersion extracts the version field without full parsing.
// Returns 0 if no version field is present.
func peekVersion(path string, data []byte) (int, error) {
	var probe struct {
		Version int `yaml:"version" toml:"version"`
	}
	if err := Decode(path, data, &probe); err != nil {
		return 0, fmt.Errorf("reading version: %w", err)
	}
	return probe.Version, nil
}
