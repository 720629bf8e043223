package errlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
	return dir
}

func TestSink_Append_WritesRecord(t *testing.T) {
	chdirTemp(t)
	sink := New(nil)

	runID := ulid.Make()
	sink.Append(runID, "CRITICAL ERROR applying sql migration 1 (init.sql). Halting execution.")

	data, err := os.ReadFile(filepath.Join(logDir, logFile))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, runID.String())
	assert.Contains(t, content, "CRITICAL ERROR applying sql migration 1")
	assert.Contains(t, content, "---\n")
}

func TestSink_Append_AppendsMultipleRecords(t *testing.T) {
	chdirTemp(t)
	sink := New(nil)

	sink.Append(ulid.Make(), "first failure")
	sink.Append(ulid.Make(), "second failure")

	data, err := os.ReadFile(filepath.Join(logDir, logFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "first failure")
	assert.Contains(t, string(data), "second failure")
}

func TestSink_Append_CreatesDirectoryIfMissing(t *testing.T) {
	chdirTemp(t)
	sink := New(nil)

	sink.Append(ulid.Make(), "boom")

	info, err := os.Stat(logDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
