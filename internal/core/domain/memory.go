package domain

import "time"

// ConversationTurn is one message in a conversation's bounded memory.
type ConversationTurn struct {
	// ID is the unique identifier for the turn.
	ID string

	// ConversationID groups turns into a conversation.
	ConversationID string

	// Role is "user" or "assistant".
	Role string

	// Content is the message text.
	Content string

	// CreatedAt orders turns within a conversation.
	CreatedAt time.Time
}

// PersonaProfile configures the assistant's voice for drafting.
type PersonaProfile struct {
	// ID is the unique identifier for the persona.
	ID string

	// Name is the display name.
	Name string

	// Description is folded into the drafting prompt as a preamble.
	Description string
}

// PolicyDocument configures governance behaviour per deployment.
type PolicyDocument struct {
	// ID is the unique identifier for the policy.
	ID string

	// Name is the display name.
	Name string

	// HardFailOnBlock escalates a moderation block from a downgraded
	// response to a pipeline failure.
	HardFailOnBlock bool

	// HardFailOnGrounding escalates dropped citations from a
	// low-confidence answer to a pipeline failure.
	HardFailOnGrounding bool

	// RedactAuditContent applies PII redaction to question and answer
	// text before they are persisted to the audit store.
	RedactAuditContent bool
}
