package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Run("desktop browser", func(t *testing.T) {
		info := Parse("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		assert.Contains(t, info.Browser, "Chrome")
		assert.Equal(t, "Windows 10", info.OS)
		assert.False(t, info.Mobile)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, Info{}, Parse(""))
	})
}
