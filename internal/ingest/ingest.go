// Package ingest walks a corpus directory, tokenizes each readable file,
// and feeds (source, tokens) records to a postings writer group. It is
// grounded in the teacher's FileScanner.ScanDirectory: single-pass
// filepath.Walk with symlink-cycle detection, include/exclude filtering
// before any I/O, and a failed insert retried with exponential backoff a
// bounded number of times before the error is returned.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/patriciasearch/internal/debug"
	perr "github.com/standardbeagle/patriciasearch/internal/errors"
	"github.com/standardbeagle/patriciasearch/internal/postingswriter"
	"github.com/standardbeagle/patriciasearch/internal/token"
)

// sendTimeout is the initial wait before the first retry of a failed
// insert; matches the teacher's taskChannelTimeout shape (a short initial
// wait, then exponential backoff).
const sendTimeout = 50 * time.Millisecond

// maxSendRetries bounds the exponential backoff before the insert error is
// returned to the caller.
const maxSendRetries = 5

// Options configures a Walk call.
type Options struct {
	Include []string
	Exclude []string
}

// Result summarizes one ingestion pass.
type Result struct {
	FilesScanned    int64
	FilesProcessed  int64
	GlobalTokens    map[string]struct{}
	UnreadableFiles []error
}

// Walk scans root, tokenizing every file that passes the include/exclude
// filters, and inserts each file's token set into group. It returns the
// union of every token observed (the "global token set" the trie builder
// consumes) plus the set of unreadable-source errors encountered — those
// are logged and skipped rather than aborting the whole ingest, matching
// the teacher's "continue scanning despite errors" policy.
func Walk(ctx context.Context, root string, opts Options, group *postingswriter.Group) (*Result, error) {
	res := &Result{GlobalTokens: make(map[string]struct{})}
	visitedDirs := make(map[string]bool)

	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			debug.LogIngest("scan error at %s: %v", path, walkErr)
			return nil
		}

		if info.IsDir() {
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil
			}
			if visitedDirs[realPath] {
				return filepath.SkipDir
			}
			visitedDirs[realPath] = true

			if path == root {
				return nil
			}
			rel, _ := filepath.Rel(root, path)
			rel = filepath.ToSlash(rel)
			if matchesAny(opts.Exclude, rel) || matchesAny(opts.Exclude, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if matchesAny(opts.Exclude, rel) {
			return nil
		}
		if len(opts.Include) > 0 && !matchesAny(opts.Include, rel) {
			return nil
		}

		res.FilesScanned++

		tokens, readErr := tokenizeFile(path)
		if readErr != nil {
			uerr := perr.NewUnreadableSourceError(path, readErr)
			res.UnreadableFiles = append(res.UnreadableFiles, uerr)
			debug.LogIngest("skipping unreadable source %s: %v", path, uerr)
			return nil
		}
		if len(tokens) == 0 {
			return nil
		}

		for t := range tokens {
			res.GlobalTokens[t] = struct{}{}
		}

		if err := sendRecord(ctx, group, postingswriter.Record{Source: path, Tokens: tokens}); err != nil {
			return err
		}
		res.FilesProcessed++
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("walking corpus root %s: %w", root, err)
	}
	return res, nil
}

func tokenizeFile(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return token.UniqueTokens(string(content)), nil
}

// sendRecord inserts rec into group, retrying with exponential backoff if
// the group is momentarily saturated; postingswriter.Insert does not block
// on a channel, so "back-pressure" here models the same contract by
// retrying the insert itself, which can return an error from a concurrent
// spill failure.
func sendRecord(ctx context.Context, group *postingswriter.Group, rec postingswriter.Record) error {
	err := group.Insert(rec)
	if err == nil {
		return nil
	}

	delay := sendTimeout
	for retry := 0; retry < maxSendRetries; retry++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if err = group.Insert(rec); err == nil {
			return nil
		}
		delay *= 2
	}
	return fmt.Errorf("unable to insert postings for %s after %d retries: %w", rec.Source, maxSendRetries, err)
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}
