package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lore-cli/internal/logger"
)

// DefaultPromptBudget is the prompt token budget applied when the
// request does not set one.
const DefaultPromptBudget = 4000

// Draft is the outcome of the drafting stage.
type Draft struct {
	// Answer is the parsed answer with citations referencing the chunks
	// that made it into the prompt.
	Answer domain.Answer

	// Prompt is the full prompt sent to the generation service.
	Prompt string

	// PromptDigest is the hex SHA-256 of the prompt, recorded in the
	// audit log instead of the raw prompt.
	PromptDigest string

	// InputTokens and OutputTokens are the usage reported by the
	// provider.
	InputTokens  int
	OutputTokens int
}

// Drafter builds the prompt and invokes the generation capability.
type Drafter struct {
	generator driven.GenerationService
}

// NewDrafter creates a drafter over the given generation service.
func NewDrafter(generator driven.GenerationService) *Drafter {
	return &Drafter{generator: generator}
}

// Draft assembles a prompt from the question, retrieved chunks,
// persona and conversation memory, trims it to the token budget, and
// generates an answer. Citations are parsed from the [n] markers the
// generated text carries, so they reference only chunks the answer
// actually cites, which are by construction chunks that survived
// trimming into the prompt.
func (d *Drafter) Draft(
	ctx context.Context,
	question string,
	hits []driven.SearchHit,
	turns []domain.ConversationTurn,
	persona *domain.PersonaProfile,
	budget int,
) (*Draft, error) {
	if budget <= 0 {
		budget = DefaultPromptBudget
	}

	turns, hits = trimToBudget(question, turns, hits, persona, budget)

	prompt := buildPrompt(question, hits, turns, persona)
	digest := sha256.Sum256([]byte(prompt))

	result, err := d.generator.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	citations := parseCitations(result.Text, hits)

	return &Draft{
		Answer: domain.Answer{
			Content:   result.Text,
			Citations: citations,
		},
		Prompt:       prompt,
		PromptDigest: hex.EncodeToString(digest[:]),
		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,
	}, nil
}

var citationMarker = regexp.MustCompile(`\[(\d+)\]`)

// parseCitations maps the [n] markers in the generated text back to the
// context entries the prompt numbered them with. Markers outside the
// 1..len(hits) range are ignored, repeats count once, and order follows
// first appearance. Text that carries no markers yields no citations.
func parseCitations(text string, hits []driven.SearchHit) []domain.Citation {
	var citations []domain.Citation
	seen := make(map[int]bool)
	for _, match := range citationMarker.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil || n < 1 || n > len(hits) {
			continue
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		hit := hits[n-1]
		citations = append(citations, domain.Citation{
			ID:    hit.Chunk.ID,
			Score: hit.Score,
			Title: hit.Chunk.Title,
			URL:   hit.Chunk.SourcePath,
			Text:  hit.Chunk.Text,
		})
	}
	return citations
}

// estimateTokens approximates the token count of text. Four characters
// per token is close enough for budgeting.
func estimateTokens(text string) int {
	return len(text)/4 + 1
}

// trimToBudget drops prompt material until the estimate fits: oldest
// conversation turns go first, then the least relevant chunks. The
// question itself is never dropped.
func trimToBudget(
	question string,
	turns []domain.ConversationTurn,
	hits []driven.SearchHit,
	persona *domain.PersonaProfile,
	budget int,
) ([]domain.ConversationTurn, []driven.SearchHit) {
	total := func() int {
		tokens := estimateTokens(question)
		if persona != nil {
			tokens += estimateTokens(persona.Description)
		}
		for _, t := range turns {
			tokens += estimateTokens(t.Content)
		}
		for _, h := range hits {
			tokens += estimateTokens(h.Chunk.Text)
		}
		return tokens
	}

	dropped := 0
	for total() > budget && len(turns) > 0 {
		turns = turns[1:]
		dropped++
	}
	for total() > budget && len(hits) > 0 {
		hits = hits[:len(hits)-1]
		dropped++
	}
	if dropped > 0 {
		logger.Debug("trimmed %d prompt element(s) to fit budget of %d tokens", dropped, budget)
	}
	return turns, hits
}

// buildPrompt renders the prompt sections in a fixed order so the
// digest is stable for identical inputs.
func buildPrompt(
	question string,
	hits []driven.SearchHit,
	turns []domain.ConversationTurn,
	persona *domain.PersonaProfile,
) string {
	var b strings.Builder

	if persona != nil && persona.Description != "" {
		b.WriteString("You are ")
		b.WriteString(persona.Name)
		b.WriteString(". ")
		b.WriteString(persona.Description)
		b.WriteString("\n\n")
	}

	b.WriteString("Answer the question using only the context below. " +
		"Cite the context entries you rely on with their [n] markers.\n\n")

	if len(hits) > 0 {
		b.WriteString("Context:\n")
		for i, hit := range hits {
			fmt.Fprintf(&b, "[%d] (%s) %s\n", i+1, hit.Chunk.ID, hit.Chunk.Text)
		}
		b.WriteString("\n")
	}

	if len(turns) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range turns {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
		b.WriteString("\n")
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n")

	return b.String()
}
