package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultSpillThreshold, cfg.Index.SpillThreshold)
	assert.Equal(t, DefaultQueueCapacity, cfg.Index.QueueCapacity)
	assert.Equal(t, DefaultCompression, cfg.Archive.Compression)
	assert.True(t, cfg.Index.ParallelArchive)
}

func TestParseKDL_IndexOverrides(t *testing.T) {
	kdlContent := `
index {
    spill_threshold 2000
    queue_capacity 4096
    writer_workers 3
    parallel_archive false
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Index.SpillThreshold)
	assert.Equal(t, 4096, cfg.Index.QueueCapacity)
	assert.Equal(t, 3, cfg.Index.WriterWorkers)
	assert.False(t, cfg.Index.ParallelArchive)
}

func TestParseKDL_ArchiveCompression(t *testing.T) {
	kdlContent := `
archive {
    compression "xz"
    keep_source true
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	assert.Equal(t, "xz", cfg.Archive.Compression)
	assert.True(t, cfg.Archive.KeepSource)
}

func TestParseKDL_FullConfig(t *testing.T) {
	kdlContent := `
corpus {
    root "./maildir"
}

staging {
    dir "/tmp/patricia-staging"
}

index {
    dir "/tmp/patricia-index"
    spill_threshold 500
}

archive {
    dir "/tmp/patricia-archive"
    compression "gzip"
}

exclude "**/.git/**" "**/*.pst"
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, "./maildir", cfg.Corpus.Root)
	assert.Equal(t, "/tmp/patricia-staging", cfg.Staging.Dir)
	assert.Equal(t, "/tmp/patricia-index", cfg.Index.Dir)
	assert.Equal(t, 500, cfg.Index.SpillThreshold)
	assert.Equal(t, "/tmp/patricia-archive", cfg.Archive.Dir)
	assert.Contains(t, cfg.Exclude, "**/.git/**")
	assert.Contains(t, cfg.Exclude, "**/*.pst")
}
