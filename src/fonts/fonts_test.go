package fonts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestData(t *testing.T) {
	for _, name := range Names() {
		data, err := Data(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}

	_, err := Data("comic-sans")
	assert.ErrorContains(t, err, "go-regular")
}

func TestDefaultFontIsBuiltin(t *testing.T) {
	assert.Contains(t, Names(), DefaultFont)
	assert.Equal(t, []string{"go-bold", "go-mono", "go-regular"}, Names())
}
