// Package mover relocates staged postings files into their PATRICIA trie
// leaves once the trie skeleton exists, splitting an existing directory
// when the token arrived after the skeleton was built around a shorter
// common prefix.
package mover

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/patriciasearch/internal/debug"
	perr "github.com/standardbeagle/patriciasearch/internal/errors"
	"github.com/standardbeagle/patriciasearch/internal/pathutil"
)

// StagingSuffix is the filename suffix a postings writer uses for a
// token's staged postings file.
const StagingSuffix = "_.ind"

// Move relocates every "<token>_.ind" file under stagingDir to its leaf
// under indexRoot, computed by pathutil.PatriciaPath. When the computed
// result carries a Correction, the existing closest directory is split
// (renamed under a new intermediate) before the file is placed. A token
// with no safe path representation is logged as an unsafe-path error and
// skipped; its staged file is left in stagingDir.
func Move(stagingDir, indexRoot string) error {
	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, StagingSuffix) {
			continue
		}
		token := strings.TrimSuffix(name, StagingSuffix)
		if err := moveOne(filepath.Join(stagingDir, name), token, indexRoot); err != nil {
			var unsafe *perr.UnsafePathError
			if errors.As(err, &unsafe) {
				debug.LogBuild("skipping token: %v", err)
				continue
			}
			return fmt.Errorf("moving postings for %q: %w", token, err)
		}
	}
	return nil
}

func moveOne(stagedPath, token, indexRoot string) error {
	result := pathutil.PatriciaPath(token, indexRoot)

	if result.Correction != nil {
		if err := applyCorrection(indexRoot, result.Correction); err != nil {
			return err
		}
		// Re-resolve: the skeleton has changed underneath the token.
		result = pathutil.PatriciaPath(token, indexRoot)
	}

	safe, ok := pathutil.SafeguardPath(result.Target)
	if !ok {
		return perr.NewUnsafePathError(token)
	}

	leafDir := filepath.Join(indexRoot, filepath.FromSlash(safe))
	if err := os.MkdirAll(leafDir, 0755); err != nil {
		return err
	}
	dest := filepath.Join(leafDir, token+StagingSuffix)
	return os.Rename(stagedPath, dest)
}

// applyCorrection performs the directory split a Correction describes: the
// existing child sharing only a partial prefix match is renamed to sit
// under a new intermediate directory named after the common prefix.
func applyCorrection(indexRoot string, c *pathutil.Correction) error {
	// c.Parent is already a resolved, on-disk path (it came from walking
	// real directory entries in PatriciaPath), so only the new prefix
	// component itself needs safeguarding, not the whole path again.
	parentDir := filepath.Join(indexRoot, filepath.FromSlash(c.Parent))

	safeParts, ok := pathutil.SafeguardPath(c.Prefix)
	if !ok {
		return fmt.Errorf("unsafe prefix %q under %q", c.Prefix, c.Parent)
	}
	intermediateDir := filepath.Join(parentDir, filepath.FromSlash(safeParts))
	if err := os.MkdirAll(intermediateDir, 0755); err != nil {
		return err
	}

	oldPath := filepath.Join(parentDir, c.OldChild)
	newPath := filepath.Join(intermediateDir, c.NewChild)
	if oldPath == newPath {
		return nil
	}
	if _, err := os.Stat(newPath); err == nil {
		// Split already applied by a concurrent mover resolving a sibling
		// token; nothing left to do.
		return nil
	}
	return os.Rename(oldPath, newPath)
}
