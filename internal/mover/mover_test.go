package mover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStaged(t *testing.T, stagingDir, token, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(stagingDir, token+StagingSuffix), []byte(content), 0644))
}

func TestMove_ExactLeafMatch(t *testing.T) {
	staging := t.TempDir()
	index := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(index, "morning"), 0755))

	writeStaged(t, staging, "morning", "a.txt\n")

	require.NoError(t, Move(staging, index))

	content, err := os.ReadFile(filepath.Join(index, "morning", "morning"+StagingSuffix))
	require.NoError(t, err)
	assert.Equal(t, "a.txt\n", string(content))

	_, err = os.Stat(filepath.Join(staging, "morning"+StagingSuffix))
	assert.True(t, os.IsNotExist(err))
}

func TestMove_CreatesLeafUnderCompressedParent(t *testing.T) {
	staging := t.TempDir()
	index := t.TempDir()
	// Skeleton has "mor" as a directory but no "morning" child yet, so
	// the remaining suffix "ning" becomes a new leaf directory beneath it.
	require.NoError(t, os.MkdirAll(filepath.Join(index, "mor"), 0755))

	writeStaged(t, staging, "morning", "a.txt\n")

	require.NoError(t, Move(staging, index))

	content, err := os.ReadFile(filepath.Join(index, "mor", "ning", "morning"+StagingSuffix))
	require.NoError(t, err)
	assert.Equal(t, "a.txt\n", string(content))
}

func TestMove_SplitsOnPartialPrefixMatch(t *testing.T) {
	staging := t.TempDir()
	index := t.TempDir()
	// Existing skeleton has a "morning" leaf directory; a "moral" token
	// arrives after the skeleton, requiring a split at "mor".
	require.NoError(t, os.MkdirAll(filepath.Join(index, "morning"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(index, "morning", "morning"+StagingSuffix), []byte("a.txt\n"), 0644))

	writeStaged(t, staging, "moral", "b.txt\n")

	require.NoError(t, Move(staging, index))

	// "mor" should now be an intermediate directory with "ning" and "al"
	// children.
	assert.DirExists(t, filepath.Join(index, "mor"))
	assert.DirExists(t, filepath.Join(index, "mor", "ning"))
	assert.DirExists(t, filepath.Join(index, "mor", "al"))

	morningContent, err := os.ReadFile(filepath.Join(index, "mor", "ning", "morning"+StagingSuffix))
	require.NoError(t, err)
	assert.Equal(t, "a.txt\n", string(morningContent))

	moralContent, err := os.ReadFile(filepath.Join(index, "mor", "al", "moral"+StagingSuffix))
	require.NoError(t, err)
	assert.Equal(t, "b.txt\n", string(moralContent))

	_, err = os.Stat(filepath.Join(index, "morning"))
	assert.True(t, os.IsNotExist(err))
}

func TestMove_IgnoresNonPostingsFiles(t *testing.T) {
	staging := t.TempDir()
	index := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staging, "notes.txt"), []byte("irrelevant"), 0644))

	require.NoError(t, Move(staging, index))

	_, err := os.Stat(filepath.Join(staging, "notes.txt"))
	assert.NoError(t, err)
}
