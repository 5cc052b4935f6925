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
	askConversation string
	askPersona      string
	askIntent       string
	askTopK         int
	askMinScore     float64
	askRerank       bool
	askMaxTokens    int
	askJSON         bool
	askShowTrace    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the knowledge base",
	Long: `Answers a question using retrieval-augmented generation: the most
relevant chunks are retrieved from the vector store, an answer is
drafted with citations, and the result is validated for grounding and
moderated before it is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askConversation, "conversation", "c", "", "conversation ID for multi-turn memory")
	askCmd.Flags().StringVar(&askPersona, "persona", "", "persona ID shaping the answer voice")
	askCmd.Flags().StringVar(&askIntent, "intent", "", "pin the intent (ask or draft) instead of classifying")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "override the number of retrieved chunks")
	askCmd.Flags().Float64Var(&askMinScore, "min-score", 0, "override the similarity floor")
	askCmd.Flags().BoolVar(&askRerank, "rerank", false, "enable the secondary relevance pass")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 0, "override the prompt token budget")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	askCmd.Flags().BoolVar(&askShowTrace, "trace", false, "print the per-stage pipeline trace")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		if err := ensureServices(cmd.Context()); err != nil {
			return err
		}
	}

	req := driving.AskRequest{
		Question:       args[0],
		ConversationID: askConversation,
		PersonaID:      askPersona,
		Intent:         domain.Intent(askIntent),
		MaxTokens:      askMaxTokens,
		TopK:           askTopK,
		MinScore:       askMinScore,
		EnableRerank:   askRerank,
	}
	if req.MaxTokens == 0 && currentSettings != nil {
		req.MaxTokens = currentSettings.Generation.MaxTokens
	}

	result, err := askService.Ask(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, result)
	}
	return outputAskText(cmd, result)
}

// askOutput is the JSON shape of an answer.
type askOutput struct {
	Answer        string   `json:"answer"`
	LowConfidence bool     `json:"low_confidence,omitempty"`
	Citations     []string `json:"citations,omitempty"`
	CorrelationID string   `json:"correlation_id"`
	Model         string   `json:"model"`
	InputTokens   int      `json:"input_tokens"`
	OutputTokens  int      `json:"output_tokens"`
	State         string   `json:"state"`
}

func outputAskJSON(cmd *cobra.Command, result *driving.AskResult) error {
	out := askOutput{
		Answer:        result.Answer.Content,
		LowConfidence: result.Answer.LowConfidence,
		CorrelationID: result.CorrelationID,
		Model:         result.Model,
		InputTokens:   result.InputTokens,
		OutputTokens:  result.OutputTokens,
		State:         string(result.State),
	}
	for _, citation := range result.Answer.Citations {
		out.Citations = append(out.Citations, citation.ID)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAskText(cmd *cobra.Command, result *driving.AskResult) error {
	cmd.Println(result.Answer.Content)

	if result.Answer.LowConfidence {
		cmd.Println()
		cmd.Println("Note: this answer is low confidence.")
	}

	if len(result.Answer.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, citation := range result.Answer.Citations {
			label := citation.Title
			if label == "" {
				label = citation.ID
			}
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, label, citation.Score)
		}
	}

	if askShowTrace {
		cmd.Println()
		cmd.Printf("Trace (%s):\n", result.CorrelationID)
		for _, entry := range result.Trace {
			cmd.Printf("  %-12s %-45s %s\n", entry.Agent, entry.Action, entry.Duration.Round(time.Millisecond))
		}
	}
	return nil
}
