// Package config holds the tunables for a PATRICIA-trie build and search run.
//
// Architecture Pattern: configuration is loaded from an optional KDL file
// (see kdl_config.go) and then overridden by CLI flags, the same two-layer
// arrangement the indexing tool this package is descended from used for its
// own .kdl config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	DefaultSpillThreshold = 1000
	DefaultQueueCapacity  = 1024
	DefaultCompression    = "gzip"
)

// Config is the full set of knobs for one build+search invocation.
type Config struct {
	Corpus  Corpus
	Staging Staging
	Index   Index
	Archive Archive

	Include []string
	Exclude []string
}

// Corpus describes where the source text files live.
type Corpus struct {
	Root string
}

// Staging describes the flat directory of spilled postings files.
type Staging struct {
	Dir string
}

// Index describes the PATRICIA directory trie and build tuning.
type Index struct {
	Dir             string
	SpillThreshold  int // postings-writer pending-entry threshold before a spill
	QueueCapacity   int // parsed from config; no component reads it (ingestion has no queue)
	WriterWorkers   int // postings-writer worker count
	ParallelArchive bool
}

// Archive describes where and how the nested-tar form is produced.
type Archive struct {
	Dir         string
	Compression string // "gzip" or "xz"
	KeepSource  bool   // shadow-copy the directory trie instead of consuming it
}

// Default returns a Config with sane defaults rooted at cwd.
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return &Config{
		Corpus:  Corpus{Root: cwd},
		Staging: Staging{Dir: filepath.Join(cwd, ".patricia-staging")},
		Index: Index{
			Dir:             filepath.Join(cwd, ".patricia-index"),
			SpillThreshold:  DefaultSpillThreshold,
			QueueCapacity:   DefaultQueueCapacity,
			WriterWorkers:   workers,
			ParallelArchive: true,
		},
		Archive: Archive{
			Dir:         filepath.Join(cwd, ".patricia-archive"),
			Compression: DefaultCompression,
		},
	}
}

// Load loads a .patricia.kdl file if present, falling back to Default().
// A missing file is not an error: LoadKDL returns (nil, nil) for that case,
// mirroring the "no config, use defaults" contract of the teacher's own
// KDL loader.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	loaded, err := LoadKDL(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if loaded != nil {
		cfg = loaded
	}
	return cfg, nil
}
