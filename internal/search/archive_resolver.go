package search

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/standardbeagle/patriciasearch/internal/archive"
	"github.com/standardbeagle/patriciasearch/internal/debug"
	perr "github.com/standardbeagle/patriciasearch/internal/errors"
)

// archiveExts lists the nested-tar member suffixes the archiver produces
// (and, for bzip2, may consume if built elsewhere); checked longest-first
// since ".tar.gz" must not be mistaken for a bare ".tar".
var archiveExts = []string{".tar.gz", ".tar.xz", ".tar.bz2", ".tar"}

// ArchiveResolver resolves query tokens by streaming a nested tar archive
// without ever materializing an intermediate member to disk.
type ArchiveResolver struct {
	Path string
}

func (r *ArchiveResolver) ExactResolve(ctx context.Context, tok string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	opener := func() (*tar.Reader, io.Closer, error) { return archive.OpenReader(r.Path) }
	if err := descend(ctx, opener, tok, tok, false, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ArchiveResolver) FuzzyResolve(ctx context.Context, tok string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	opener := func() (*tar.Reader, io.Closer, error) { return archive.OpenReader(r.Path) }
	if err := descend(ctx, opener, tok, tok, true, out); err != nil {
		return nil, err
	}
	return out, nil
}

// descend streams one tar level from opener, matching ".ind" members
// against the full original token and, for child tar members, pruning
// descent to those whose fragment name is a prefix of the still-unconsumed
// remaining portion of the token.
func descend(ctx context.Context, opener func() (*tar.Reader, io.Closer, error), remaining, original string, fuzzy bool, out map[string]struct{}) error {
	tr, closer, err := opener()
	if err != nil {
		return err
	}
	defer closer.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		name := hdr.Name

		if strings.HasSuffix(name, "_.ind") {
			stem := strings.TrimSuffix(name, "_.ind")
			matches := stem == original
			if fuzzy {
				matches = strings.HasPrefix(stem, original)
			}
			if matches {
				data, err := io.ReadAll(tr)
				if err != nil {
					return err
				}
				for line := range parseIndLines(data) {
					out[line] = struct{}{}
				}
			}
			continue
		}

		ext := matchArchiveExt(name)
		if ext == "" {
			continue
		}
		fragment := strings.TrimSuffix(name, ext)
		if fragment == "" {
			continue
		}

		var childRemaining string
		descendHere := false
		if remaining == "" {
			// Already at or below the token's resolved node: fuzzy mode
			// unions everything further down; exact mode never recurses
			// past the node holding the literal match.
			if !fuzzy {
				continue
			}
			descendHere = true
			childRemaining = ""
		} else if fragment[0] == remaining[0] {
			cp := commonPrefix(fragment, remaining)
			switch {
			case cp == fragment:
				descendHere = true
				childRemaining = remaining[len(fragment):]
			case fuzzy && cp == remaining:
				// The query token is fully consumed partway through this
				// fragment: everything below is a continuation of the
				// token, so a fuzzy match collects the whole subtree.
				descendHere = true
				childRemaining = ""
			}
		}
		if !descendHere {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return err
		}
		nestedOpener := func() (*tar.Reader, io.Closer, error) {
			return openNestedTar(name, data)
		}
		if err := descend(ctx, nestedOpener, childRemaining, original, fuzzy, out); err != nil {
			if ctx.Err() != nil {
				return err
			}
			// A malformed or unsupported nested member leaves that
			// subtree empty for this query rather than failing the
			// whole search.
			debug.LogSearch("archive subtree %q unreadable: %v", name, perr.NewArchiveReadError(name, err))
			continue
		}
	}
	return nil
}

func matchArchiveExt(name string) string {
	for _, ext := range archiveExts {
		if strings.HasSuffix(name, ext) {
			return ext
		}
	}
	return ""
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

// openNestedTar wraps a nested archive member's raw bytes with whatever
// decompression its name indicates, returning a tar.Reader positioned at
// the start of its contents.
func openNestedTar(name string, data []byte) (*tar.Reader, io.Closer, error) {
	br := bytes.NewReader(data)
	switch {
	case strings.HasSuffix(name, ".tar.gz"):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return tar.NewReader(gz), gz, nil
	case strings.HasSuffix(name, ".tar.xz"):
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return tar.NewReader(xzr), io.NopCloser(nil), nil
	case strings.HasSuffix(name, ".tar.bz2"):
		return tar.NewReader(bzip2.NewReader(br)), io.NopCloser(nil), nil
	case strings.HasSuffix(name, ".tar"):
		return tar.NewReader(br), io.NopCloser(nil), nil
	default:
		return nil, nil, fmt.Errorf("unrecognized nested archive member %q", name)
	}
}
