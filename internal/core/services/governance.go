package services

import (
	"context"
	"fmt"
	"regexp"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lore-cli/internal/logger"
)

// Redaction placeholders. They contain no characters that the PII
// patterns can match, which is what makes redaction idempotent.
const (
	emailPlaceholder      = "[EMAIL]"
	phonePlaceholder      = "[PHONE]"
	identifierPlaceholder = "[ID]"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// Phone numbers with an optional country code and common separator
	// styles. Requires at least ten digits so short figures in prose
	// are left alone.
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[\s.-])?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)

	// Identifier-like sequences: SSN-style groups, UUIDs, and long
	// bare digit runs.
	identifierPattern = regexp.MustCompile(
		`\b\d{3}-\d{2}-\d{4}\b|` +
			`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b|` +
			`\b\d{9,}\b`)
)

// GovernanceGate applies PII redaction and content moderation. It is
// consulted both while drafting and as a validation step before an
// answer leaves the pipeline.
type GovernanceGate struct {
	classifier driven.ModerationClassifier
}

// NewGovernanceGate creates a governance gate backed by the given
// moderation classifier.
func NewGovernanceGate(classifier driven.ModerationClassifier) *GovernanceGate {
	return &GovernanceGate{classifier: classifier}
}

// Redact replaces PII matches with typed placeholders. Running Redact
// on already-redacted content produces zero additional changes.
func (g *GovernanceGate) Redact(content string) domain.RedactionResult {
	result := domain.RedactionResult{
		OriginalContent: content,
		RedactedContent: content,
	}

	apply := func(pattern *regexp.Regexp, rType domain.RedactionType, placeholder string) {
		result.RedactedContent = pattern.ReplaceAllStringFunc(result.RedactedContent, func(match string) string {
			result.Redactions = append(result.Redactions, domain.Redaction{
				Type:          rType,
				OriginalValue: match,
				RedactedValue: placeholder,
			})
			return placeholder
		})
	}

	// Emails go first so their digit runs never register as phones or
	// identifiers; identifiers go before phones so UUID and SSN digit
	// groups are not misread as phone numbers.
	apply(emailPattern, domain.RedactionEmail, emailPlaceholder)
	apply(identifierPattern, domain.RedactionIdentifier, identifierPlaceholder)
	apply(phonePattern, domain.RedactionPhone, phonePlaceholder)

	if len(result.Redactions) > 0 {
		logger.Debug("redacted %d PII match(es)", len(result.Redactions))
	}
	return result
}

// Moderate classifies the content and returns the typed verdict.
func (g *GovernanceGate) Moderate(ctx context.Context, content string) (domain.ModerationResult, error) {
	result, err := g.classifier.Classify(ctx, content)
	if err != nil {
		return domain.ModerationResult{}, fmt.Errorf("classify content: %w", err)
	}

	if result.Flagged {
		logger.Debug("moderation flagged content: severity=%s action=%s",
			result.OverallSeverity, result.Action)
	}
	return result, nil
}
