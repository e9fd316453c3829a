// Package trie builds the PATRICIA directory skeleton from a token
// universe: one directory per compressed prefix, split recursively by
// longest common prefix, parallelized across first-character groups since
// no two such groups can ever share a prefix.
package trie

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"github.com/standardbeagle/patriciasearch/internal/pathutil"
	"github.com/standardbeagle/patriciasearch/internal/workerpool"
)

// Counter tracks leaf registrations: one increment per directory created
// for a token that exactly matches an element of its containing set.
type Counter struct {
	n int64
}

// Add increments the counter by delta and returns the new total.
func (c *Counter) Add(delta int64) int64 {
	return atomic.AddInt64(&c.n, delta)
}

// Value returns the current count.
func (c *Counter) Value() int64 {
	return atomic.LoadInt64(&c.n)
}

// MkdirFunc creates a directory (after safeguard_path has been applied)
// and returns any error from doing so. Abstracted so tests can run
// against an in-memory fake instead of touching a real filesystem.
type MkdirFunc func(path string) error

// Build partitions tokens by first character and constructs each group's
// subtree concurrently via pool, rooted at indexRoot. mkdir is called once
// per directory node created (existing directories are tolerated by the
// caller's mkdir implementation, mirroring os.MkdirAll semantics).
func Build(ctx context.Context, pool workerpool.Pool, tokens map[string]struct{}, indexRoot string, mkdir MkdirFunc) (*Counter, error) {
	counter := &Counter{}
	groups := partitionByFirstChar(tokens)

	for _, group := range groups {
		group := group
		if err := pool.Go(ctx, func() error {
			return buildGroup(group, indexRoot, mkdir, counter)
		}); err != nil {
			break
		}
	}
	if err := pool.Wait(); err != nil {
		return counter, err
	}
	return counter, nil
}

// partitionByFirstChar splits tokens into disjoint sets keyed by their
// first rune-independent byte, consistent with the byte-wise prefix logic
// used throughout pathutil.
func partitionByFirstChar(tokens map[string]struct{}) [][]string {
	buckets := make(map[byte][]string)
	for t := range tokens {
		if t == "" {
			continue
		}
		buckets[t[0]] = append(buckets[t[0]], t)
	}
	groups := make([][]string, 0, len(buckets))
	for _, g := range buckets {
		groups = append(groups, g)
	}
	return groups
}

// buildGroup recursively constructs the subtree for one first-character
// partition, rooted at indexRoot (a flat list of tokens sharing a common
// first character at entry).
func buildGroup(tokens []string, root string, mkdir MkdirFunc, counter *Counter) error {
	return buildSet(tokens, root, "", mkdir, counter)
}

// buildSet implements the longest-common-prefix recursion described in the
// trie builder algorithm: either the whole set shares a non-empty prefix
// (collapse into one directory and recurse on the suffixes), or it must be
// split by first character into independent subsets.
func buildSet(tokens []string, indexRoot, relDir string, mkdir MkdirFunc, counter *Counter) error {
	if len(tokens) == 0 {
		return nil
	}

	cp := longestCommonPrefix(tokens)
	if cp != "" {
		safe, ok := pathutil.SafeguardPath(join(relDir, cp))
		if !ok {
			safe = join(relDir, cp)
		}
		if err := mkdir(filepath.Join(indexRoot, filepath.FromSlash(safe))); err != nil {
			return err
		}

		var rest []string
		isLeaf := false
		for _, t := range tokens {
			if t == cp {
				isLeaf = true
				continue
			}
			rest = append(rest, t[len(cp):])
		}
		if isLeaf {
			counter.Add(1)
		}
		return buildSet(rest, indexRoot, join(relDir, cp), mkdir, counter)
	}

	for _, group := range partitionByFirstChar(toSet(tokens)) {
		if err := buildSet(group, indexRoot, relDir, mkdir, counter); err != nil {
			return err
		}
	}
	return nil
}

func toSet(tokens []string) map[string]struct{} {
	s := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// longestCommonPrefix returns the longest prefix shared by every token in
// the set, or "" if the set is empty or the tokens share nothing (which
// also covers the case where tokens start with different first characters
// — buildSet only calls this within a single first-character group at the
// top level, but recursion can shrink a set to mixed characters after a
// suffix strip, so this still must check all of them).
func longestCommonPrefix(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	prefix := tokens[0]
	for _, t := range tokens[1:] {
		prefix = commonPrefix(prefix, t)
		if prefix == "" {
			return ""
		}
	}
	return prefix
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

func join(relDir, leaf string) string {
	if relDir == "" {
		return leaf
	}
	if leaf == "" {
		return relDir
	}
	return relDir + "/" + leaf
}
