package cleanup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReset_RemovesAndRecreatesStaleDirectories(t *testing.T) {
	base := t.TempDir()
	staging := filepath.Join(base, "staging")
	index := filepath.Join(base, "index")

	require.NoError(t, os.MkdirAll(staging, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "leftover_.ind"), []byte("stale\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(index, "stale"), 0755))

	require.NoError(t, Reset(staging, index))

	stagingEntries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, stagingEntries)

	indexEntries, err := os.ReadDir(index)
	require.NoError(t, err)
	assert.Empty(t, indexEntries)
}

func TestReset_CreatesMissingDirectories(t *testing.T) {
	base := t.TempDir()
	staging := filepath.Join(base, "staging")
	index := filepath.Join(base, "index")

	require.NoError(t, Reset(staging, index))

	assert.DirExists(t, staging)
	assert.DirExists(t, index)
}
