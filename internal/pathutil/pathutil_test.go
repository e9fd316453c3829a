package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatriciaPath_EmptyTrie(t *testing.T) {
	root := t.TempDir()
	res := PatriciaPath("morning", root)
	assert.Equal(t, "morning", res.Target)
	assert.Equal(t, "", res.Closest)
	assert.Nil(t, res.Correction)
}

func TestPatriciaPath_ExactMatchIsIdempotent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "morning"), 0755))

	res := PatriciaPath("morning", root)
	assert.Equal(t, "morning", res.Target)
	assert.Equal(t, res.Target, res.Closest)
	assert.Nil(t, res.Correction)
}

func TestPatriciaPath_DescendsThroughCompressedEdges(t *testing.T) {
	root := t.TempDir()
	// edges: "mo" -> "rning" (token "morning" already placed)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "mo", "rning"), 0755))

	res := PatriciaPath("morning", root)
	assert.Equal(t, filepath.Join("mo", "rning"), res.Target)
	assert.Nil(t, res.Correction)
}

func TestPatriciaPath_RequiresSplit(t *testing.T) {
	root := t.TempDir()
	// Existing leaf for "morning" as a single edge from root.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "morning"), 0755))

	// "moral" shares prefix "mor" with "morning" -> split required.
	res := PatriciaPath("moral", root)
	require.NotNil(t, res.Correction)
	assert.Equal(t, "", res.Correction.Parent)
	assert.Equal(t, "mor", res.Correction.Prefix)
	assert.Equal(t, "morning", res.Correction.OldChild)
	assert.Equal(t, "ning", res.Correction.NewChild)
}

func TestPatriciaPath_NoMatchingChild(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "morning"), 0755))

	res := PatriciaPath("evening", root)
	assert.Equal(t, "evening", res.Target)
	assert.Equal(t, "", res.Closest)
	assert.Nil(t, res.Correction)
}

func TestSafeguardPath_PlainComponent(t *testing.T) {
	safe, ok := SafeguardPath("morning")
	assert.True(t, ok)
	assert.Equal(t, "morning", safe)
}

func TestSafeguardPath_ReservedComponent(t *testing.T) {
	safe, ok := SafeguardPath("con")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("c", "on"), safe)
}

func TestSafeguardPath_NestedReservedComponent(t *testing.T) {
	safe, ok := SafeguardPath(filepath.Join("foo", "nul", "bar"))
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("foo", "n", "ul", "bar"), safe)
}

func TestSafeguardPath_CaseInsensitiveReserved(t *testing.T) {
	safe, ok := SafeguardPath("Nul")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("N", "ul"), safe)
}

func TestSafeguardPath_NonReservedRoundTrips(t *testing.T) {
	safe, ok := SafeguardPath("console")
	assert.True(t, ok)
	assert.Equal(t, "console", safe)
}
