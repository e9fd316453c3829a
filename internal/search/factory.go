package search

import (
	"fmt"
	"os"

	"github.com/standardbeagle/patriciasearch/internal/archive"
	perr "github.com/standardbeagle/patriciasearch/internal/errors"
)

// Open builds a Searcher over path: a directory becomes a filesystem
// searcher, a recognized tar file (by magic, not extension) becomes an
// archive searcher, anything else is a missing-index error.
func Open(path string) (*Searcher, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, perr.NewMissingIndexError(path)
	}

	if info.IsDir() {
		return New(&FSResolver{Root: path}), nil
	}

	ok, err := archive.Sniff(path)
	if err != nil {
		return nil, fmt.Errorf("sniffing %s: %w", path, err)
	}
	if !ok {
		return nil, perr.NewMissingIndexError(path)
	}
	return New(&ArchiveResolver{Path: path}), nil
}
