package build

import "github.com/sofmeright/idebuild/src/host"

// FindConfiguration returns the first configuration whose name equals name
// exactly. The platform is ignored, so with several platforms per name the
// first one reported by the host wins.
func FindConfiguration(configs []host.Configuration, name string) (host.Configuration, bool) {
	for _, c := range configs {
		if c.Name == name {
			return c, true
		}
	}
	return host.Configuration{}, false
}
