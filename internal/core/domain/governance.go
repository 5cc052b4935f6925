package domain

// RedactionType identifies the kind of sensitive value replaced.
type RedactionType string

// Recognised redaction types.
const (
	RedactionEmail      RedactionType = "email"
	RedactionPhone      RedactionType = "phone"
	RedactionIdentifier RedactionType = "identifier"
)

// Redaction records a single replaced value.
type Redaction struct {
	// Type is the kind of sensitive value.
	Type RedactionType

	// OriginalValue is the matched text.
	OriginalValue string

	// RedactedValue is the typed placeholder that replaced it.
	RedactedValue string
}

// RedactionResult is the outcome of scanning text for PII.
// Redaction is idempotent: redacting already-redacted content produces
// zero additional changes.
type RedactionResult struct {
	// OriginalContent is the input text.
	OriginalContent string

	// RedactedContent is the text with placeholders substituted.
	RedactedContent string

	// Redactions lists every replacement made.
	Redactions []Redaction
}

// Changed returns true if any value was redacted.
func (r RedactionResult) Changed() bool {
	return len(r.Redactions) > 0
}

// Severity grades how risky flagged content is.
type Severity int

// Severity levels from harmless to critical.
const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the string representation.
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ModerationAction is the gating decision for moderated content.
type ModerationAction string

// Moderation actions.
const (
	// ActionAllow passes content through unchanged.
	ActionAllow ModerationAction = "allow"

	// ActionWarn passes content through but records the flag.
	ActionWarn ModerationAction = "warn"

	// ActionBlock prevents the original content from reaching the caller.
	ActionBlock ModerationAction = "block"
)

// CategoryResult is the per-category moderation verdict.
type CategoryResult struct {
	// Category is the named risk category (e.g. "violence", "self-harm").
	Category string

	// Severity is the graded risk for this category.
	Severity Severity
}

// ModerationResult is the typed outcome of classifying content.
type ModerationResult struct {
	// Flagged is true if any category scored above SeverityNone.
	Flagged bool

	// OverallSeverity is the highest category severity.
	OverallSeverity Severity

	// Categories holds the per-category verdicts.
	Categories []CategoryResult

	// Action is the resulting gating decision.
	Action ModerationAction
}
