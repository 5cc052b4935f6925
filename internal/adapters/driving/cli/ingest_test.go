package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [path]", ingestCmd.Use)
}

func TestIngestCmd_HasChunkingFlags(t *testing.T) {
	require.NotNil(t, ingestCmd.Flags().Lookup("chunk-size"))
	require.NotNil(t, ingestCmd.Flags().Lookup("overlap"))
	require.NotNil(t, ingestCmd.Flags().Lookup("rebuild"))
	require.NotNil(t, ingestCmd.Flags().Lookup("ext"))

	workers := ingestCmd.Flags().Lookup("workers")
	require.NotNil(t, workers)
	assert.Equal(t, "w", workers.Shorthand)
}

func TestIngestCmd_PrintsReport(t *testing.T) {
	_, ingestor, _, cleanup := setupTestServices()
	defer cleanup()
	ingestor.report.SkippedDuplicates = 2

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "/tmp/docs"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "3 new chunk(s)")
	assert.Contains(t, buf.String(), "2 duplicate(s) skipped")
	assert.Equal(t, "/tmp/docs", ingestor.lastReq.Path)
}

func TestIngestCmd_ForwardsOverrides(t *testing.T) {
	_, ingestor, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "/tmp/docs", "--chunk-size", "500", "--overlap", "50", "--rebuild", "--ext", ".md"})
	defer func() {
		rootCmd.SetArgs(nil)
		ingestChunkSize = 0
		ingestOverlap = 0
		ingestRebuild = false
		ingestExtensions = nil
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, 500, ingestor.lastReq.ChunkSize)
	assert.Equal(t, 50, ingestor.lastReq.ChunkOverlap)
	assert.True(t, ingestor.lastReq.RebuildIndex)
	assert.Equal(t, []string{".md"}, ingestor.lastReq.SupportedExtensions)
}

// A batch where nothing succeeded exits non-zero; degraded success does
// not.
func TestIngestCmd_TotalFailureExitsNonZero(t *testing.T) {
	_, ingestor, _, cleanup := setupTestServices()
	defer cleanup()
	ingestor.report.ProcessedFiles = 0
	ingestor.report.GeneratedChunks = 0
	ingestor.report.Errors = []string{"a.md: parse failed"}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "/tmp/docs"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, buf.String(), "a.md: parse failed")
}

func TestIngestCmd_DegradedSuccessExitsZero(t *testing.T) {
	_, ingestor, _, cleanup := setupTestServices()
	defer cleanup()
	ingestor.report.Errors = []string{"b.md: parse failed"}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "/tmp/docs"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "b.md: parse failed")
}
