// Command patriciasearch builds a PATRICIA-trie full-text index over a
// corpus of plain-text files and answers a query against it, the way the
// teacher's cmd/lci wraps its own indexing pipeline: a single
// github.com/urfave/cli/v2 app, one linear action, no subcommands, since
// the pipeline here is a single ordered sequence rather than a command
// tree.
//
// The pipeline runs, in order: cleanup -> index -> search(directory trie)
// -> archive -> search(archive). Each phase's elapsed time is printed via
// internal/stopwatch, and each search prints its sorted match list.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/patriciasearch/internal/archive"
	"github.com/standardbeagle/patriciasearch/internal/cleanup"
	"github.com/standardbeagle/patriciasearch/internal/config"
	"github.com/standardbeagle/patriciasearch/internal/debug"
	"github.com/standardbeagle/patriciasearch/internal/ingest"
	"github.com/standardbeagle/patriciasearch/internal/mover"
	"github.com/standardbeagle/patriciasearch/internal/postingswriter"
	"github.com/standardbeagle/patriciasearch/internal/search"
	"github.com/standardbeagle/patriciasearch/internal/stopwatch"
	"github.com/standardbeagle/patriciasearch/internal/trie"
	"github.com/standardbeagle/patriciasearch/internal/workerpool"
)

func main() {
	app := &cli.App{
		Name:                   "patriciasearch",
		Usage:                  "Build and query a PATRICIA-trie full-text index over a plain-text corpus",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "entrypoint",
				Aliases:  []string{"e"},
				Usage:    "Corpus root directory to index",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "search-for",
				Usage: "Query term (repeatable; terms are joined with spaces into one query)",
			},
			&cli.StringFlag{
				Name:  "staging-dir",
				Usage: "Staging directory for in-progress postings files (default: config/cwd-derived)",
			},
			&cli.StringFlag{
				Name:  "index-dir",
				Usage: "PATRICIA directory-trie index root (default: config/cwd-derived)",
			},
			&cli.StringFlag{
				Name:  "archive-dir",
				Usage: "Directory the nested-tar archive is written into (default: config/cwd-derived)",
			},
			&cli.StringFlag{
				Name:  "compression",
				Usage: "Archive compression: gzip or xz",
				Value: "gzip",
			},
			&cli.BoolFlag{
				Name:  "inclusive",
				Usage: "Accepted but has no effect: every search runs as a fuzzy phrase match, which requires all query tokens",
			},
			&cli.BoolFlag{
				Name:  "parallel-archive",
				Usage: "Parallelize archiving across first-level subdirectories",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Optional .patricia.kdl config file path",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfigWithOverrides loads cfg from the --config file (or defaults)
// and applies every CLI flag that was explicitly set, mirroring the
// teacher's loadConfigWithOverrides in cmd/lci/main.go.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(c.String("entrypoint"))
	if err != nil {
		return nil, fmt.Errorf("resolving entrypoint: %w", err)
	}
	cfg.Corpus.Root = root

	if v := c.String("staging-dir"); v != "" {
		cfg.Staging.Dir = v
	}
	if v := c.String("index-dir"); v != "" {
		cfg.Index.Dir = v
	}
	if v := c.String("archive-dir"); v != "" {
		cfg.Archive.Dir = v
	}
	if c.IsSet("compression") {
		cfg.Archive.Compression = c.String("compression")
	}
	if c.IsSet("parallel-archive") {
		cfg.Index.ParallelArchive = c.Bool("parallel-archive")
	}
	return cfg, nil
}

func run(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	query := strings.Join(c.StringSlice("search-for"), " ")
	inclusive := c.Bool("inclusive")
	ctx := context.Background()

	sw := stopwatch.Start("cleanup")
	if err := cleanup.Reset(cfg.Staging.Dir, cfg.Index.Dir); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	sw.Stop()

	sw = stopwatch.Start("index")
	if err := buildIndex(ctx, cfg); err != nil {
		return fmt.Errorf("indexing: %w", err)
	}
	sw.Stop()

	if query != "" {
		sw = stopwatch.Start("search (directory trie)")
		if err := runSearch(ctx, cfg.Index.Dir, query, inclusive); err != nil {
			return fmt.Errorf("search over directory trie: %w", err)
		}
		sw.Stop()
	}

	sw = stopwatch.Start("archive")
	corpusName := filepath.Base(cfg.Corpus.Root)
	pool, pctx := workerpool.NewCPUPool(ctx)
	archivePath, err := archive.Fold(pctx, pool, cfg.Index.Dir, cfg.Archive.Dir, corpusName, archive.Options{
		Compression: archive.Compression(cfg.Archive.Compression),
		KeepSource:  cfg.Archive.KeepSource,
		Parallel:    cfg.Index.ParallelArchive,
	})
	pool.Shutdown(err != nil)
	if err != nil {
		return fmt.Errorf("archiving: %w", err)
	}
	sw.Stop()

	if query != "" {
		sw = stopwatch.Start("search (archive)")
		if err := runSearch(ctx, archivePath, query, inclusive); err != nil {
			return fmt.Errorf("search over archive: %w", err)
		}
		sw.Stop()
	}

	return nil
}

// buildIndex runs the ingestion -> postings-writer -> trie-builder ->
// postings-mover pipeline described in spec.md §4.4-4.7, in that order
// (the mover requires both the writer's staged files and the trie
// skeleton to already exist).
func buildIndex(ctx context.Context, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.Staging.Dir, 0755); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Index.Dir, 0755); err != nil {
		return err
	}

	group := postingswriter.NewGroup(cfg.Staging.Dir, cfg.Index.WriterWorkers, cfg.Index.SpillThreshold)

	res, err := ingest.Walk(ctx, cfg.Corpus.Root, ingest.Options{Include: cfg.Include, Exclude: cfg.Exclude}, group)
	if err != nil {
		return fmt.Errorf("ingestion: %w", err)
	}
	for _, uerr := range res.UnreadableFiles {
		debug.LogIngest("skipped: %v", uerr)
	}
	if err := group.Flush(); err != nil {
		return fmt.Errorf("flushing postings: %w", err)
	}

	pool, pctx := workerpool.NewCPUPool(ctx)
	_, err = trie.Build(pctx, pool, res.GlobalTokens, cfg.Index.Dir, func(path string) error {
		return os.MkdirAll(path, 0755)
	})
	pool.Shutdown(err != nil)
	if err != nil {
		return fmt.Errorf("building trie skeleton: %w", err)
	}

	if err := mover.Move(cfg.Staging.Dir, cfg.Index.Dir); err != nil {
		return fmt.Errorf("moving postings to trie leaves: %w", err)
	}

	return os.RemoveAll(cfg.Staging.Dir)
}

// runSearch opens indexPath (directory trie or archive, transparently) and
// prints the sorted list of matching source paths for query. The default
// search is a fuzzy phrase match (final token a prefix, earlier tokens
// exact, contiguous and in order), matching the original tool's default
// search entry point.
func runSearch(ctx context.Context, indexPath, query string, _ bool) error {
	searcher, err := search.Open(indexPath)
	if err != nil {
		return err
	}
	results, err := searcher.MatchPhrase(ctx, query, true)
	if err != nil {
		return err
	}

	sorted := make([]string, 0, len(results))
	for r := range results {
		sorted = append(sorted, r)
	}
	sort.Strings(sorted)
	for _, r := range sorted {
		fmt.Println(r)
	}
	return nil
}
