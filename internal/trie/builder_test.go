package trie

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/patriciasearch/internal/workerpool"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func osMkdir(root string) MkdirFunc {
	return func(path string) error {
		return os.MkdirAll(path, 0755)
	}
}

func dirExists(t *testing.T, path string) bool {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func TestBuild_SimpleCompression(t *testing.T) {
	root := t.TempDir()
	tokens := map[string]struct{}{"morning": {}, "moral": {}}

	ctx := context.Background()
	pool, gctx := workerpool.NewCPUPool(ctx)
	defer pool.Shutdown(false)

	counter, err := Build(gctx, pool, tokens, root, osMkdir(root))
	require.NoError(t, err)
	assert.Equal(t, int64(2), counter.Value())

	assert.True(t, dirExists(t, filepath.Join(root, "mor")))
	assert.True(t, dirExists(t, filepath.Join(root, "mor", "n", "ing")) ||
		dirExists(t, filepath.Join(root, "mor", "ning")))
	assert.True(t, dirExists(t, filepath.Join(root, "mor", "al")) ||
		dirExists(t, filepath.Join(root, "mor", "a", "l")))
}

func TestBuild_LeafAtIntermediateNode(t *testing.T) {
	root := t.TempDir()
	// "mor" is itself a token as well as a prefix of "morning".
	tokens := map[string]struct{}{"mor": {}, "morning": {}}

	ctx := context.Background()
	pool, gctx := workerpool.NewCPUPool(ctx)
	defer pool.Shutdown(false)

	counter, err := Build(gctx, pool, tokens, root, osMkdir(root))
	require.NoError(t, err)
	assert.Equal(t, int64(2), counter.Value())
	assert.True(t, dirExists(t, filepath.Join(root, "mor")))
}

func TestBuild_DisjointFirstCharacters(t *testing.T) {
	root := t.TempDir()
	tokens := map[string]struct{}{"apple": {}, "banana": {}, "cherry": {}}

	ctx := context.Background()
	pool, gctx := workerpool.NewCPUPool(ctx)
	defer pool.Shutdown(false)

	counter, err := Build(gctx, pool, tokens, root, osMkdir(root))
	require.NoError(t, err)
	assert.Equal(t, int64(3), counter.Value())

	for _, prefix := range []string{"a", "b", "c"} {
		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		found := false
		for _, e := range entries {
			if len(e.Name()) > 0 && e.Name()[0] == prefix[0] {
				found = true
			}
		}
		assert.True(t, found, "expected a subtree starting with %q", prefix)
	}
}

func TestBuild_ReservedNameSafeguarded(t *testing.T) {
	root := t.TempDir()
	tokens := map[string]struct{}{"con": {}, "console": {}}

	ctx := context.Background()
	pool, gctx := workerpool.NewCPUPool(ctx)
	defer pool.Shutdown(false)

	_, err := Build(gctx, pool, tokens, root, osMkdir(root))
	require.NoError(t, err)

	// "con" is a reserved Windows device name; safeguard_path splits it
	// into "c/on" so no path component is ever a bare reserved name.
	assert.True(t, dirExists(t, filepath.Join(root, "c", "on")))
	assert.False(t, dirExists(t, filepath.Join(root, "con")))
}

func TestBuild_EmptyTokenSet(t *testing.T) {
	root := t.TempDir()

	ctx := context.Background()
	pool, gctx := workerpool.NewCPUPool(ctx)
	defer pool.Shutdown(false)

	counter, err := Build(gctx, pool, map[string]struct{}{}, root, osMkdir(root))
	require.NoError(t, err)
	assert.Equal(t, int64(0), counter.Value())
}

func TestLongestCommonPrefix(t *testing.T) {
	assert.Equal(t, "mor", longestCommonPrefix([]string{"morning", "moral", "mor"}))
	assert.Equal(t, "", longestCommonPrefix([]string{"apple", "banana"}))
	assert.Equal(t, "", longestCommonPrefix(nil))
}
