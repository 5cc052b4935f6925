// Package rules provides a local keyword-based moderation classifier.
// It needs no external service, which keeps the governance gate working
// offline; deployments wanting model-backed moderation can swap in
// another ModerationClassifier implementation.
package rules

import (
	"context"
	"strings"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
)

// Ensure Classifier implements the interface.
var _ driven.ModerationClassifier = (*Classifier)(nil)

// rule maps a category to its trigger phrases and the severity a match
// carries.
type rule struct {
	category string
	severity domain.Severity
	phrases  []string
}

// defaultRules is the built-in taxonomy. Phrases are matched
// case-insensitively on whole content.
var defaultRules = []rule{
	{
		category: "violence",
		severity: domain.SeverityHigh,
		phrases:  []string{"kill them", "how to hurt", "plan an attack", "build a weapon"},
	},
	{
		category: "self-harm",
		severity: domain.SeverityCritical,
		phrases:  []string{"hurt myself", "end my life", "self-harm"},
	},
	{
		category: "hate",
		severity: domain.SeverityHigh,
		phrases:  []string{"subhuman", "deserve to die"},
	},
	{
		category: "harassment",
		severity: domain.SeverityMedium,
		phrases:  []string{"you are worthless", "nobody wants you"},
	},
	{
		category: "dangerous-instructions",
		severity: domain.SeverityHigh,
		phrases:  []string{"synthesize explosives", "make a bomb", "bypass the safety"},
	},
	{
		category: "profanity",
		severity: domain.SeverityLow,
		phrases:  []string{"damn it", "bullshit"},
	},
}

// Classifier grades content against a fixed rule set.
type Classifier struct {
	rules []rule
}

// NewClassifier creates a classifier with the built-in rule set.
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules}
}

// Classify scores the content and returns the typed verdict.
func (c *Classifier) Classify(_ context.Context, content string) (domain.ModerationResult, error) {
	lowered := strings.ToLower(content)

	result := domain.ModerationResult{
		OverallSeverity: domain.SeverityNone,
		Action:          domain.ActionAllow,
	}

	for _, r := range c.rules {
		matched := domain.SeverityNone
		for _, phrase := range r.phrases {
			if strings.Contains(lowered, phrase) {
				matched = r.severity
				break
			}
		}
		if matched == domain.SeverityNone {
			continue
		}

		result.Flagged = true
		result.Categories = append(result.Categories, domain.CategoryResult{
			Category: r.category,
			Severity: matched,
		})
		if matched > result.OverallSeverity {
			result.OverallSeverity = matched
		}
	}

	result.Action = actionFor(result.OverallSeverity)
	return result, nil
}

// actionFor maps severity to the gating action: high-risk content is
// blocked, medium risk passes with a warning, the rest is allowed.
func actionFor(severity domain.Severity) domain.ModerationAction {
	switch {
	case severity >= domain.SeverityHigh:
		return domain.ActionBlock
	case severity == domain.SeverityMedium:
		return domain.ActionWarn
	default:
		return domain.ActionAllow
	}
}
