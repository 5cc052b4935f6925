package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driving"
)

var (
	ingestChunkSize  int
	ingestOverlap    int
	ingestRebuild    bool
	ingestWorkers    int
	ingestExtensions []string
	ingestJSON       bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest documents into the knowledge base",
	Long: `Parses, chunks, embeds and stores every supported document under the
given path. Chunks are deduplicated by content hash, within the batch
and against previously ingested content, so re-running ingestion is
cheap and idempotent.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "override the chunk window size in characters")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", 0, "override the chunk overlap in characters")
	ingestCmd.Flags().BoolVar(&ingestRebuild, "rebuild", false, "clear the store before ingesting")
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", 0, "number of parallel file workers")
	ingestCmd.Flags().StringSliceVar(&ingestExtensions, "ext", nil, "restrict to these file extensions (e.g. .md,.txt)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		if err := ensureServices(cmd.Context()); err != nil {
			return err
		}
	}

	report, err := ingestService.Ingest(cmd.Context(), driving.IngestRequest{
		Path:                args[0],
		ChunkSize:           ingestChunkSize,
		ChunkOverlap:        ingestOverlap,
		RebuildIndex:        ingestRebuild,
		SupportedExtensions: ingestExtensions,
		Workers:             ingestWorkers,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		return outputIngestJSON(cmd, report)
	}
	return outputIngestText(cmd, report)
}

// ingestOutput is the JSON shape of an ingestion report.
type ingestOutput struct {
	ProcessedFiles    int      `json:"processed_files"`
	GeneratedChunks   int      `json:"generated_chunks"`
	SkippedDuplicates int      `json:"skipped_duplicates"`
	ProcessingTimeMS  int64    `json:"processing_time_ms"`
	Errors            []string `json:"errors,omitempty"`
}

func outputIngestJSON(cmd *cobra.Command, report *domain.IngestReport) error {
	out := ingestOutput{
		ProcessedFiles:    report.ProcessedFiles,
		GeneratedChunks:   report.GeneratedChunks,
		SkippedDuplicates: report.SkippedDuplicates,
		ProcessingTimeMS:  report.ProcessingTime.Milliseconds(),
		Errors:            report.Errors,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputIngestText(cmd *cobra.Command, report *domain.IngestReport) error {
	cmd.Printf("Processed %d file(s) in %s\n",
		report.ProcessedFiles, report.ProcessingTime.Round(time.Millisecond))
	cmd.Printf("  %d new chunk(s), %d duplicate(s) skipped\n",
		report.GeneratedChunks, report.SkippedDuplicates)

	if len(report.Errors) > 0 {
		cmd.Println()
		cmd.Printf("%d file(s) failed:\n", len(report.Errors))
		for _, msg := range report.Errors {
			cmd.Printf("  %s\n", msg)
		}
	}

	if report.Failed() {
		return fmt.Errorf("ingestion produced no usable output")
	}
	return nil
}
