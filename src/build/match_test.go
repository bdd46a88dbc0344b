package build

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sofmeright/idebuild/src/host"
)

func TestFindConfiguration(t *testing.T) {
	configs := []host.Configuration{
		{Name: "Debug", Platform: "AnyCPU"},
		{Name: "Release", Platform: "x86"},
		{Name: "Release", Platform: "AnyCPU"},
	}

	t.Run("first platform wins", func(t *testing.T) {
		c, ok := FindConfiguration(configs, "Release")
		assert.True(t, ok)
		assert.Equal(t, host.Configuration{Name: "Release", Platform: "x86"}, c)
	})

	t.Run("case sensitive", func(t *testing.T) {
		_, ok := FindConfiguration(configs, "release")
		assert.False(t, ok)
	})

	t.Run("not found", func(t *testing.T) {
		_, ok := FindConfiguration(configs, "Profile")
		assert.False(t, ok)
	})

	t.Run("empty list", func(t *testing.T) {
		_, ok := FindConfiguration(nil, "Debug")
		assert.False(t, ok)
	})

	t.Run("idempotent", func(t *testing.T) {
		a, _ := FindConfiguration(configs, "Release")
		b, _ := FindConfiguration(configs, "Release")
		assert.Equal(t, a, b)
	})
}
