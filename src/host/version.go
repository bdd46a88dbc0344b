package host

import (
	"fmt"

	masterminds "github.com/Masterminds/semver/v3"
)

// CheckVersion verifies that a host's reported version satisfies constraint.
// An empty constraint accepts any host.
func CheckVersion(version, constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := masterminds.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("host: parsing version constraint %q: %w", constraint, err)
	}
	v, err := masterminds.NewVersion(version)
	if err != nil {
		return fmt.Errorf("host: parsing host version %q: %w", version, err)
	}
	if ok, errs := c.Validate(v); !ok {
		if len(errs) > 0 {
			return fmt.Errorf("host: version %s rejected: %w", version, errs[0])
		}
		return fmt.Errorf("host: version %s does not satisfy %s", version, constraint)
	}
	return nil
}
