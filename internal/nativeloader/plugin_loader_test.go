package nativeloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPluginLoader_Load_NoArtifactsReturnsEmptyNonNilSlice(t *testing.T) {
	loader := NewPluginLoader(nil)

	units, err := loader.Load(t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, units)
	assert.Empty(t, units)
}

func TestPluginLoader_Load_InvalidArtifactIsSkippedNotFatal(t *testing.T) {
	dir := t.TempDir()
	// A file that looks like a native artifact by extension but isn't a
	// valid ELF/Mach-O Go plugin; plugin.Open must fail on it, and the
	// loader must treat that as skip-and-continue, never a fatal error.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "not-a-real-plugin.so"), []byte("not a plugin"), 0o644))

	loader := NewPluginLoader(nil)
	units, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, units)
}
