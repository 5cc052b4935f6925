package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vectormem "github.com/custodia-labs/lore-cli/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lore-cli/internal/parsers"
)

// failingParser claims an extension and always fails, for per-file
// isolation tests.
type failingParser struct{}

var _ driven.DocumentParser = (*failingParser)(nil)

func (p *failingParser) Extensions() []string { return []string{".bad"} }
func (p *failingParser) Priority() int        { return 100 }
func (p *failingParser) Parse(context.Context, string, []byte) (*driven.ParsedDocument, error) {
	return nil, assert.AnError
}

func newIngestFixture() (*IngestionService, *vectormem.Store) {
	store := vectormem.NewStore()
	service := NewIngestionService(
		parsers.Defaults(),
		newMockEmbedder([]float32{1, 0, 0}),
		store,
		domain.ChunkingSettings{},
	)
	return service, store
}

// writeHandbook writes a markdown file with five short headed sections
// whose bodies are unique to the file.
func writeHandbook(t *testing.T, dir string, n int) string {
	t.Helper()
	content := fmt.Sprintf("# Handbook %d\n\n", n)
	for i := 1; i <= 5; i++ {
		content += fmt.Sprintf("## Topic %d\n\nFile %d topic %d covers the retention rules for this area.\n\n", i, n, i)
	}
	path := filepath.Join(dir, fmt.Sprintf("handbook-%d.md", n))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngest_ChunksAndStoresDirectory(t *testing.T) {
	service, store := newIngestFixture()
	dir := t.TempDir()
	for n := 1; n <= 3; n++ {
		writeHandbook(t, dir, n)
	}

	report, err := service.Ingest(context.Background(), driving.IngestRequest{Path: dir})
	require.NoError(t, err)

	assert.Equal(t, 3, report.ProcessedFiles)
	assert.Equal(t, 15, report.GeneratedChunks)
	assert.Equal(t, 0, report.SkippedDuplicates)
	assert.Empty(t, report.Errors)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15, count)

	// Per-file reports follow the sorted enumeration order.
	require.Len(t, report.PerFile, 3)
	for n, file := range report.PerFile {
		assert.Equal(t, filepath.Join(dir, fmt.Sprintf("handbook-%d.md", n+1)), file.Path)
		assert.Equal(t, domain.FileStatusOK, file.Status)
		assert.Equal(t, 5, file.Chunks)
	}
}

// Ingesting the same content twice stores nothing new: the chunk ID is
// its content hash, so every chunk already exists in the store.
func TestIngest_ReingestSkipsEverything(t *testing.T) {
	service, store := newIngestFixture()
	dir := t.TempDir()
	for n := 1; n <= 3; n++ {
		writeHandbook(t, dir, n)
	}

	_, err := service.Ingest(context.Background(), driving.IngestRequest{Path: dir})
	require.NoError(t, err)

	report, err := service.Ingest(context.Background(), driving.IngestRequest{Path: dir})
	require.NoError(t, err)

	assert.Equal(t, 3, report.ProcessedFiles)
	assert.Equal(t, 0, report.GeneratedChunks)
	assert.Equal(t, 15, report.SkippedDuplicates)
	for _, file := range report.PerFile {
		assert.Equal(t, domain.FileStatusSkipped, file.Status)
		assert.Equal(t, 5, file.SkippedDuplicates)
	}

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15, count, "re-ingestion adds nothing")
}

func TestIngest_DuplicateContentAcrossFiles(t *testing.T) {
	service, _ := newIngestFixture()
	dir := t.TempDir()

	shared := "# Note\n\nThe retention period for audit records is seven years.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte(shared), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte(shared), 0o644))

	report, err := service.Ingest(context.Background(), driving.IngestRequest{Path: dir})
	require.NoError(t, err)

	assert.Equal(t, 1, report.GeneratedChunks)
	assert.Equal(t, 1, report.SkippedDuplicates)
	assert.Equal(t, 1, report.UniqueHashes)
}

// One broken file degrades the batch instead of aborting it.
func TestIngest_PerFileFailureIsolation(t *testing.T) {
	registry := parsers.Defaults()
	registry.Register(&failingParser{})
	store := vectormem.NewStore()
	service := NewIngestionService(registry, newMockEmbedder([]float32{1, 0, 0}), store, domain.ChunkingSettings{})

	dir := t.TempDir()
	writeHandbook(t, dir, 1)
	writeHandbook(t, dir, 2)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.bad"), []byte("x"), 0o644))

	report, err := service.Ingest(context.Background(), driving.IngestRequest{Path: dir})
	require.NoError(t, err)

	assert.Equal(t, 2, report.ProcessedFiles)
	assert.Equal(t, 10, report.GeneratedChunks)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "broken.bad")
}

func TestIngest_RebuildIndexClearsPriorContent(t *testing.T) {
	service, store := newIngestFixture()
	require.NoError(t, store.Upsert(context.Background(),
		domain.Chunk{ID: "stale", Text: "stale"},
		domain.Embedding{ChunkID: "stale", Vector: []float32{1, 0, 0}}))

	dir := t.TempDir()
	writeHandbook(t, dir, 1)

	report, err := service.Ingest(context.Background(), driving.IngestRequest{Path: dir, RebuildIndex: true})
	require.NoError(t, err)
	assert.Equal(t, 5, report.GeneratedChunks)

	_, err = store.GetByID(context.Background(), "stale")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestIngest_SingleFile(t *testing.T) {
	service, _ := newIngestFixture()
	path := writeHandbook(t, t.TempDir(), 1)

	report, err := service.Ingest(context.Background(), driving.IngestRequest{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 1, report.ProcessedFiles)
	assert.Equal(t, 5, report.GeneratedChunks)
}

func TestIngest_InvalidRequests(t *testing.T) {
	service, _ := newIngestFixture()

	_, err := service.Ingest(context.Background(), driving.IngestRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.Ingest(context.Background(), driving.IngestRequest{Path: "/does/not/exist"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	dir := t.TempDir()
	unsupported := filepath.Join(dir, "image.png")
	require.NoError(t, os.WriteFile(unsupported, []byte{0x89}, 0o644))
	_, err = service.Ingest(context.Background(), driving.IngestRequest{Path: unsupported})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestIngest_ExtensionFilter(t *testing.T) {
	service, _ := newIngestFixture()
	dir := t.TempDir()
	writeHandbook(t, dir, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain text note"), 0o644))

	report, err := service.Ingest(context.Background(), driving.IngestRequest{
		Path:                dir,
		SupportedExtensions: []string{".md"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.ProcessedFiles)
	require.Len(t, report.PerFile, 1)
	assert.Equal(t, filepath.Join(dir, "handbook-1.md"), report.PerFile[0].Path)
}
