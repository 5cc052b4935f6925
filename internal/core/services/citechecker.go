package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lore-cli/internal/logger"
)

// RefusalMessage replaces answer content whose moderation action is
// Block. The flagged text never reaches the caller.
const RefusalMessage = "I can't help with that request."

// Validation is the outcome of the validation stage.
type Validation struct {
	// Answer is the final answer after grounding and moderation.
	Answer domain.Answer

	// Moderation is the verdict on the drafted content.
	Moderation domain.ModerationResult

	// DroppedCitations counts citations removed by the grounding check.
	DroppedCitations int
}

// CiteChecker verifies answer grounding against the frozen retrieved
// set and gates the content through moderation.
type CiteChecker struct {
	gate *GovernanceGate
}

// NewCiteChecker creates a cite checker using the given governance
// gate.
func NewCiteChecker(gate *GovernanceGate) *CiteChecker {
	return &CiteChecker{gate: gate}
}

// Validate drops citations that are not members of the retrieved set,
// flags the answer low-confidence when none survive, and applies the
// moderation verdict. Blocked and ungrounded outcomes downgrade the
// answer rather than fail, unless the policy marks them hard failures.
func (c *CiteChecker) Validate(
	ctx context.Context,
	answer domain.Answer,
	retrieved []driven.SearchHit,
	policy domain.PolicyDocument,
) (*Validation, error) {
	known := make(map[string]bool, len(retrieved))
	for _, hit := range retrieved {
		known[hit.Chunk.ID] = true
	}

	kept := make([]domain.Citation, 0, len(answer.Citations))
	dropped := 0
	for _, citation := range answer.Citations {
		if known[citation.ID] {
			kept = append(kept, citation)
			continue
		}
		dropped++
		logger.Debug("dropping ungrounded citation %s", citation.ID)
	}

	hadCitations := len(answer.Citations) > 0
	answer.Citations = kept
	if hadCitations && len(kept) == 0 {
		answer.LowConfidence = true
		if policy.HardFailOnGrounding {
			return nil, fmt.Errorf("%w: no citation survived the grounding check", domain.ErrGroundingFailed)
		}
	}

	moderation, err := c.gate.Moderate(ctx, answer.Content)
	if err != nil {
		return nil, err
	}

	if moderation.Action == domain.ActionBlock {
		if policy.HardFailOnBlock {
			return nil, fmt.Errorf("%w: content blocked with severity %s",
				domain.ErrModerationBlocked, moderation.OverallSeverity)
		}
		answer.Content = RefusalMessage
		answer.Citations = nil
		answer.LowConfidence = true
	}

	return &Validation{
		Answer:           answer,
		Moderation:       moderation,
		DroppedCitations: dropped,
	}, nil
}
