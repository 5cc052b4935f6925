package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

var (
	auditLimit int
	auditJSON  bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the pipeline audit log",
	Long:  `Lists and shows the audit records written for every pipeline run.`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audit entries",
	RunE:  runAuditList,
}

var auditShowCmd = &cobra.Command{
	Use:   "show [correlation-id]",
	Short: "Show one audit entry in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditShow,
}

func init() {
	auditListCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "maximum number of entries")
	auditListCmd.Flags().BoolVar(&auditJSON, "json", false, "output entries as JSON")
	auditShowCmd.Flags().BoolVar(&auditJSON, "json", false, "output the entry as JSON")

	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditShowCmd)
	rootCmd.AddCommand(auditCmd)
}

func runAuditList(cmd *cobra.Command, _ []string) error {
	if auditLog == nil {
		if err := ensureServices(cmd.Context()); err != nil {
			return err
		}
	}

	entries, err := auditLog.List(cmd.Context(), auditLimit)
	if err != nil {
		return fmt.Errorf("listing audit entries: %w", err)
	}

	if auditJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(entries) == 0 {
		cmd.Println("No audit entries.")
		return nil
	}

	for _, entry := range entries {
		cmd.Printf("%s  %-7s %-9s  %s\n",
			entry.CreatedAt.Format(time.RFC3339), entry.Operation, entry.State, entry.CorrelationID)
	}
	return nil
}

func runAuditShow(cmd *cobra.Command, args []string) error {
	if auditLog == nil {
		if err := ensureServices(cmd.Context()); err != nil {
			return err
		}
	}

	entry, err := findAuditEntry(cmd, args[0])
	if err != nil {
		return err
	}

	if auditJSON {
		data, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Correlation ID: %s\n", entry.CorrelationID)
	cmd.Printf("Operation:      %s\n", entry.Operation)
	cmd.Printf("State:          %s\n", entry.State)
	cmd.Printf("Model:          %s\n", entry.Model)
	cmd.Printf("Prompt digest:  %s\n", entry.PromptDigest)
	cmd.Printf("Tokens:         %d in / %d out\n", entry.InputTokens, entry.OutputTokens)
	cmd.Printf("Duration:       %s\n", entry.Duration.Round(time.Millisecond))
	cmd.Printf("Question:       %s\n", entry.Question)
	cmd.Printf("Answer:         %s\n", entry.AnswerContent)
	if len(entry.CitationIDs) > 0 {
		cmd.Printf("Citations:      %v\n", entry.CitationIDs)
	}
	if len(entry.Trace) > 0 {
		cmd.Println("Trace:")
		for _, stage := range entry.Trace {
			cmd.Printf("  %-12s %-45s %s\n", stage.Agent, stage.Action, stage.Duration.Round(time.Millisecond))
		}
	}
	return nil
}

// findAuditEntry resolves an ID either as a store ID or by scanning
// recent entries for a matching correlation ID.
func findAuditEntry(cmd *cobra.Command, id string) (*domain.AuditLogEntry, error) {
	entry, err := auditLog.Get(cmd.Context(), id)
	if err == nil {
		return entry, nil
	}

	entries, listErr := auditLog.List(cmd.Context(), 0)
	if listErr != nil {
		return nil, fmt.Errorf("looking up audit entry: %w", err)
	}
	for i := range entries {
		if entries[i].CorrelationID == id {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("audit entry %q: %w", id, domain.ErrNotFound)
}
