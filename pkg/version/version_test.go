package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())
	assert.Contains(t, String(), GetVersion())
}

func TestIsRelease(t *testing.T) {
	orig := version
	t.Cleanup(func() { version = orig })

	version = "v1.4.2"
	assert.True(t, IsRelease())

	version = "v1.5.0-rc.1"
	assert.False(t, IsRelease())

	version = "dev"
	assert.False(t, IsRelease())
}
