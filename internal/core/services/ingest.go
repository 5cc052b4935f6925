package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/lore-cli/internal/chunking"
	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lore-cli/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.Ingestor = (*IngestionService)(nil)

// DefaultWorkers bounds file-level parallelism when the request does
// not set it.
const DefaultWorkers = 4

// IngestionService runs ingestion batches: enumerate, parse, chunk,
// dedup, embed, store. Per-file failures degrade the batch instead of
// aborting it.
type IngestionService struct {
	parsers  driven.ParserRegistry
	embedder driven.EmbeddingService
	store    driven.VectorStore
	chunking domain.ChunkingSettings
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(
	parsers driven.ParserRegistry,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	chunkingSettings domain.ChunkingSettings,
) *IngestionService {
	return &IngestionService{
		parsers:  parsers,
		embedder: embedder,
		store:    store,
		chunking: chunkingSettings,
	}
}

// fileOutcome carries one file's result back from a worker.
type fileOutcome struct {
	report  domain.FileReport
	unique  int
	skipped int
}

// Ingest processes every matching file under the request path.
func (s *IngestionService) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.IngestReport, error) {
	started := time.Now()

	engine, err := s.engineFor(req)
	if err != nil {
		return nil, err
	}

	files, err := s.enumerate(req)
	if err != nil {
		return nil, err
	}
	logger.Section("Ingestion")
	logger.Info("ingesting %d file(s) from %s", len(files), req.Path)

	if req.RebuildIndex {
		if err := s.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clearing store for rebuild: %w", err)
		}
		logger.Debug("store cleared for rebuild")
	}

	workers := req.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	// Dedup identity is the content hash, shared across all workers so
	// correctness never depends on file processing order.
	dedup := chunking.NewDedupSet()
	outcomes := make([]fileOutcome, len(files))

	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		i, path := i, path
		submitErr := pool.Submit(func() {
			defer wg.Done()
			outcomes[i] = s.processFile(ctx, path, engine, dedup)
		})
		if submitErr != nil {
			outcomes[i] = fileOutcome{report: domain.FileReport{
				Path:   path,
				Status: domain.FileStatusFailed,
				Error:  submitErr.Error(),
			}}
			wg.Done()
		}
	}
	wg.Wait()

	report := &domain.IngestReport{
		ProcessingTime: time.Since(started),
		PerFile:        make([]domain.FileReport, 0, len(outcomes)),
	}
	for _, outcome := range outcomes {
		report.PerFile = append(report.PerFile, outcome.report)
		report.UniqueHashes += outcome.unique
		report.SkippedDuplicates += outcome.skipped
		switch outcome.report.Status {
		case domain.FileStatusOK:
			report.ProcessedFiles++
			report.GeneratedChunks += outcome.report.Chunks
		case domain.FileStatusSkipped:
			report.ProcessedFiles++
		case domain.FileStatusFailed:
			report.Errors = append(report.Errors,
				fmt.Sprintf("%s: %s", outcome.report.Path, outcome.report.Error))
		}
	}

	logger.Info("ingestion done: %d file(s), %d new chunk(s), %d duplicate(s) skipped, %d error(s)",
		report.ProcessedFiles, report.GeneratedChunks, report.SkippedDuplicates, len(report.Errors))
	return report, nil
}

// engineFor builds the chunking engine with request overrides applied.
func (s *IngestionService) engineFor(req driving.IngestRequest) (*chunking.Engine, error) {
	settings := s.chunking
	if req.ChunkSize > 0 {
		settings.ChunkSize = req.ChunkSize
	}
	if req.ChunkOverlap > 0 {
		settings.Overlap = req.ChunkOverlap
	}
	return chunking.NewEngine(settings)
}

// enumerate walks the request path and returns matching files in
// stable sorted order, which the per-file report preserves.
func (s *IngestionService) enumerate(req driving.IngestRequest) ([]string, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("%w: ingest path is empty", domain.ErrInvalidInput)
	}

	info, err := os.Stat(req.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", domain.ErrInvalidInput, req.Path, err)
	}

	allowed := make(map[string]bool)
	if len(req.SupportedExtensions) > 0 {
		for _, ext := range req.SupportedExtensions {
			allowed[strings.ToLower(ext)] = true
		}
	} else {
		for _, ext := range s.parsers.Extensions() {
			allowed[ext] = true
		}
	}

	if !info.IsDir() {
		if !allowed[strings.ToLower(filepath.Ext(req.Path))] {
			return nil, fmt.Errorf("%w: no parser for %s", domain.ErrUnsupportedType, req.Path)
		}
		return []string{req.Path}, nil
	}

	var files []string
	err = filepath.WalkDir(req.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if allowed[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerating %s: %w", req.Path, err)
	}

	sort.Strings(files)
	return files, nil
}

// processFile parses, chunks, dedups, embeds and stores one file. All
// failures are captured in the file report.
func (s *IngestionService) processFile(ctx context.Context, path string, engine *chunking.Engine, dedup *chunking.DedupSet) fileOutcome {
	outcome := fileOutcome{report: domain.FileReport{Path: path, Status: domain.FileStatusOK}}

	fail := func(err error) fileOutcome {
		logger.Warn("ingesting %s: %v", path, err)
		outcome.report.Status = domain.FileStatusFailed
		outcome.report.Error = err.Error()
		return outcome
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fail(fmt.Errorf("read file: %w", err))
	}

	parser, err := s.parsers.ForExtension(filepath.Ext(path))
	if err != nil {
		return fail(err)
	}
	doc, err := parser.Parse(ctx, path, content)
	if err != nil {
		return fail(fmt.Errorf("parse: %w", err))
	}

	pieces := engine.Split(doc)
	if len(pieces) == 0 {
		outcome.report.Status = domain.FileStatusSkipped
		return outcome
	}

	// Dedup within the batch, then against previously stored content:
	// the chunk ID is its content hash, so a GetByID hit means the
	// chunk already exists from an earlier run.
	var fresh []domain.Chunk
	for _, piece := range pieces {
		hash := chunking.Hash(piece.Text)
		if dedup.Seen(hash) {
			outcome.skipped++
			continue
		}
		outcome.unique++

		if _, err := s.store.GetByID(ctx, hash); err == nil {
			outcome.skipped++
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fail(fmt.Errorf("check existing chunk: %w", err))
		}

		fresh = append(fresh, domain.Chunk{
			ID:         hash,
			Text:       piece.Text,
			Title:      doc.Title,
			Section:    piece.Section,
			SourcePath: path,
			Hash:       hash,
			CreatedAt:  time.Now().UTC(),
			Metadata:   doc.Metadata,
		})
	}

	outcome.report.SkippedDuplicates = outcome.skipped
	if len(fresh) == 0 {
		if outcome.skipped > 0 {
			outcome.report.Status = domain.FileStatusSkipped
		}
		return outcome
	}

	texts := make([]string, len(fresh))
	for i, chunk := range fresh {
		texts[i] = chunk.Text
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fail(fmt.Errorf("embed chunks: %w", err))
	}
	if len(vectors) != len(fresh) {
		return fail(fmt.Errorf("embedding count mismatch: %d texts, %d vectors", len(fresh), len(vectors)))
	}

	for i, chunk := range fresh {
		embedding := domain.Embedding{
			ChunkID:   chunk.ID,
			Vector:    vectors[i],
			Model:     s.embedder.ModelName(),
			CreatedAt: chunk.CreatedAt,
		}
		if err := s.store.Upsert(ctx, chunk, embedding); err != nil {
			return fail(fmt.Errorf("store chunk: %w", err))
		}
		outcome.report.Chunks++
	}

	logger.Debug("ingested %s: %d chunk(s), %d duplicate(s)", path, outcome.report.Chunks, outcome.skipped)
	return outcome
}
