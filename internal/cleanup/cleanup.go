// Package cleanup clears stale staging and index directories before a
// build begins, the remediation for the staging-conflict error kind: a
// leftover directory from a prior, aborted run must not silently merge
// with the new build.
package cleanup

import (
	"fmt"
	"os"

	perr "github.com/standardbeagle/patriciasearch/internal/errors"
)

// Reset removes stagingDir and indexDir if they exist and recreates them
// empty. A removal failure is reported as a StagingConflictError since it
// blocks the build from starting cleanly.
func Reset(stagingDir, indexDir string) error {
	for _, dir := range []string{stagingDir, indexDir} {
		if err := os.RemoveAll(dir); err != nil {
			return perr.NewStagingConflictError(dir, err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("recreating %s: %w", dir, err)
		}
	}
	return nil
}
