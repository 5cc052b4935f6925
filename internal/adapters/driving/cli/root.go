// Package cli provides the command-line interface for the lore
// knowledge base: ingestion, question answering, and audit inspection.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lore-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired during bootstrap. Commands check for nil so tests can
// substitute fakes without running the full bootstrap.
var (
	askService    driving.Asker
	ingestService driving.Ingestor
	auditLog      driven.AuditStore
	settingsStore driven.SettingsStore
)

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "lore",
	Short: "Local-first knowledge base with retrieval-augmented answers",
	Long: `Lore ingests your documents into a searchable knowledge base and
answers questions grounded in their content, with citations back to the
source chunks. Answers pass through governance checks (PII redaction,
content moderation, citation grounding) and every run is audited.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.lore)")
}

// Execute runs the root command and releases any services the run
// bootstrapped.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}
