package search

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/patriciasearch/internal/pathutil"
)

// FSResolver resolves query tokens against a live PATRICIA directory trie.
type FSResolver struct {
	Root string
}

// ExactResolve reads the ".ind" file living directly at the token's own
// node, if that node exists at all; any partial-prefix Correction means no
// such node exists, so the result is empty.
func (r *FSResolver) ExactResolve(ctx context.Context, tok string) (map[string]struct{}, error) {
	result := pathutil.PatriciaPath(tok, r.Root)
	if result.Correction != nil {
		return map[string]struct{}{}, nil
	}

	dirAbs := filepath.Join(r.Root, filepath.FromSlash(result.Target))
	info, err := os.Stat(dirAbs)
	if err != nil || !info.IsDir() {
		return map[string]struct{}{}, nil
	}

	return readIndFile(filepath.Join(dirAbs, tok+"_.ind"))
}

// FuzzyResolve collects every ".ind" file at or below the token's node. If
// the token's hypothetical path is only a partial match against the
// closest existing node (diverging before either ends), nothing is
// reachable from it and the result is empty.
func (r *FSResolver) FuzzyResolve(ctx context.Context, tok string) (map[string]struct{}, error) {
	result := pathutil.PatriciaPath(tok, r.Root)

	if result.Correction == nil {
		dirAbs := filepath.Join(r.Root, filepath.FromSlash(result.Target))
		info, err := os.Stat(dirAbs)
		if err != nil || !info.IsDir() {
			return map[string]struct{}{}, nil
		}
		return collectIndTree(ctx, dirAbs)
	}

	c := result.Correction
	remaining := result.Target
	if c.Parent != "" {
		remaining = strings.TrimPrefix(result.Target, c.Parent+"/")
	}
	if c.Prefix != remaining {
		// The token's hypothetical path and the closest existing node
		// diverge before either is consumed; neither is a prefix of the
		// other, so nothing below this point can match.
		return map[string]struct{}{}, nil
	}

	subtreeDir := filepath.Join(r.Root, filepath.FromSlash(c.Parent), c.OldChild)
	return collectIndTree(ctx, subtreeDir)
}

func readIndFile(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, err
	}
	return parseIndLines(content), nil
}

func collectIndTree(ctx context.Context, root string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() || !strings.HasSuffix(path, "_.ind") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for line := range parseIndLines(content) {
			out[line] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
