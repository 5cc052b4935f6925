package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lore-cli/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.Asker = (*Orchestrator)(nil)

// memoryWindow bounds how many past turns are loaded into the prompt.
const memoryWindow = 10

// Orchestrator sequences the Router, Retriever, Drafter and CiteChecker
// stages for one request. Stages run strictly in order; any stage error
// moves the run to Failed with the partial trace preserved, and the
// audit record is written in every case.
type Orchestrator struct {
	router    *Router
	retriever *Retriever
	drafter   *Drafter
	checker   *CiteChecker
	gate      *GovernanceGate

	generator driven.GenerationService
	memory    driven.MemoryStore
	audit     driven.AuditStore

	defaults domain.RetrievalSettings
	policy   domain.PolicyDocument
}

// NewOrchestrator wires the pipeline stages with their collaborators.
func NewOrchestrator(
	router *Router,
	retriever *Retriever,
	drafter *Drafter,
	checker *CiteChecker,
	gate *GovernanceGate,
	generator driven.GenerationService,
	memory driven.MemoryStore,
	audit driven.AuditStore,
	defaults domain.RetrievalSettings,
	policy domain.PolicyDocument,
) *Orchestrator {
	return &Orchestrator{
		router:    router,
		retriever: retriever,
		drafter:   drafter,
		checker:   checker,
		gate:      gate,
		generator: generator,
		memory:    memory,
		audit:     audit,
		defaults:  defaults,
		policy:    policy,
	}
}

// run carries the mutable state of one request through the stages.
type run struct {
	correlationID string
	state         domain.PipelineState
	trace         []domain.TraceEntry
	started       time.Time

	intent     domain.Intent
	retrieved  []driven.SearchHit
	draft      *Draft
	validation *Validation
}

// advance executes one stage: it times fn, appends exactly one trace
// entry whether fn succeeds or fails, and transitions the state
// forward (or to Failed).
func (r *run) advance(agent string, next domain.PipelineState, fn func() (string, error)) error {
	started := time.Now()
	action, err := fn()
	entry := domain.TraceEntry{
		Agent:    agent,
		Action:   action,
		Duration: time.Since(started),
	}
	if err != nil {
		entry.Action = fmt.Sprintf("failed: %v", err)
		r.trace = append(r.trace, entry)
		if r.state.CanTransitionTo(domain.StateFailed) {
			r.state = domain.StateFailed
		}
		return err
	}
	r.trace = append(r.trace, entry)

	if !r.state.CanTransitionTo(next) {
		from := r.state
		r.state = domain.StateFailed
		return fmt.Errorf("%w: illegal transition %s -> %s", domain.ErrPipelineAborted, from, next)
	}
	r.state = next
	return nil
}

// Ask answers a question through the full pipeline.
func (o *Orchestrator) Ask(ctx context.Context, req driving.AskRequest) (*driving.AskResult, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	r := &run{
		correlationID: uuid.NewString(),
		state:         domain.StateCreated,
		started:       time.Now(),
	}
	logger.Section("Pipeline Run")
	logger.Debug("correlation ID: %s", r.correlationID)

	// The audit record is written whatever happens, including
	// cancellation mid-stage: a partial trace is still a timeline.
	defer func() {
		o.persistAudit(r, req)
	}()

	if err := o.runStages(ctx, req, r); err != nil {
		logger.Error("pipeline %s failed in state %s: %v", r.correlationID, r.state, err)
		return nil, fmt.Errorf("%w (correlation ID %s)", err, r.correlationID)
	}

	result := &driving.AskResult{
		Answer:          r.validation.Answer,
		CorrelationID:   r.correlationID,
		PromptDigest:    r.draft.PromptDigest,
		Model:           o.generator.ModelName(),
		InputTokens:     r.draft.InputTokens,
		OutputTokens:    r.draft.OutputTokens,
		RetrievedChunks: len(r.retrieved),
		Trace:           r.trace,
		State:           r.state,
	}

	o.recordConversation(ctx, req, r.validation.Answer)
	return result, nil
}

// runStages executes the four stages in order.
func (o *Orchestrator) runStages(ctx context.Context, req driving.AskRequest, r *run) error {
	// Router
	err := r.advance("router", domain.StateRouted, func() (string, error) {
		r.intent = o.router.Route(req.Question, req.Intent)
		if r.intent == domain.IntentIngest {
			return "", fmt.Errorf("%w: ingestion cannot run through the ask pipeline", domain.ErrInvalidInput)
		}
		return "classified intent as " + string(r.intent), nil
	})
	if err != nil {
		return err
	}

	// Retriever (ask path only; drafts run without grounding context)
	err = r.advance("retriever", domain.StateRetrieved, func() (string, error) {
		if r.intent != domain.IntentAsk {
			return "skipped for intent " + string(r.intent), nil
		}
		settings := o.retrievalSettings(req)
		hits, err := o.retriever.Retrieve(ctx, req.Question, settings)
		if err != nil {
			return "", err
		}
		r.retrieved = hits
		return fmt.Sprintf("retrieved %d chunk(s)", len(hits)), nil
	})
	if err != nil {
		return err
	}

	// Drafter
	err = r.advance("drafter", domain.StateDrafted, func() (string, error) {
		turns, persona, err := o.loadContext(ctx, req)
		if err != nil {
			return "", err
		}
		draft, err := o.drafter.Draft(ctx, req.Question, r.retrieved, turns, persona, req.MaxTokens)
		if err != nil {
			return "", err
		}
		r.draft = draft
		return fmt.Sprintf("drafted answer with %d citation(s)", len(draft.Answer.Citations)), nil
	})
	if err != nil {
		return err
	}

	// CiteChecker
	err = r.advance("citechecker", domain.StateValidated, func() (string, error) {
		validation, err := o.checker.Validate(ctx, r.draft.Answer, r.retrieved, o.policy)
		if err != nil {
			return "", err
		}
		r.validation = validation
		switch {
		case validation.Moderation.Action == domain.ActionBlock:
			return "content blocked by moderation", nil
		case validation.DroppedCitations > 0:
			return fmt.Sprintf("dropped %d ungrounded citation(s)", validation.DroppedCitations), nil
		default:
			return "answer validated", nil
		}
	})
	if err != nil {
		return err
	}

	if !r.state.CanTransitionTo(domain.StateCompleted) {
		return fmt.Errorf("%w: cannot complete from state %s", domain.ErrPipelineAborted, r.state)
	}
	r.state = domain.StateCompleted
	return nil
}

// retrievalSettings overlays request overrides on the configured
// defaults.
func (o *Orchestrator) retrievalSettings(req driving.AskRequest) domain.RetrievalSettings {
	settings := o.defaults
	if req.TopK > 0 {
		settings.TopK = req.TopK
	}
	if req.MinScore > 0 {
		settings.MinScore = req.MinScore
	}
	if req.EnableRerank {
		settings.EnableRerank = true
	}
	return settings
}

// loadContext fetches conversation memory and the persona when the
// request names them.
func (o *Orchestrator) loadContext(ctx context.Context, req driving.AskRequest) ([]domain.ConversationTurn, *domain.PersonaProfile, error) {
	var turns []domain.ConversationTurn
	if req.ConversationID != "" {
		var err error
		turns, err = o.memory.Turns(ctx, req.ConversationID, memoryWindow)
		if err != nil {
			return nil, nil, fmt.Errorf("load conversation: %w", err)
		}
	}

	var persona *domain.PersonaProfile
	if req.PersonaID != "" {
		var err error
		persona, err = o.memory.Persona(ctx, req.PersonaID)
		if err != nil {
			return nil, nil, fmt.Errorf("load persona: %w", err)
		}
	}
	return turns, persona, nil
}

// recordConversation appends the question and answer to the
// conversation. Failures only log; the answer is already produced.
func (o *Orchestrator) recordConversation(ctx context.Context, req driving.AskRequest, answer domain.Answer) {
	if req.ConversationID == "" {
		return
	}
	if err := o.memory.AppendTurn(ctx, domain.ConversationTurn{
		ConversationID: req.ConversationID,
		Role:           "user",
		Content:        req.Question,
	}); err != nil {
		logger.Warn("recording user turn: %v", err)
		return
	}
	if err := o.memory.AppendTurn(ctx, domain.ConversationTurn{
		ConversationID: req.ConversationID,
		Role:           "assistant",
		Content:        answer.Content,
	}); err != nil {
		logger.Warn("recording assistant turn: %v", err)
	}
}

// persistAudit writes the audit record for the run, redacting content
// first when the policy requires it. It uses a fresh context so a
// cancelled request still gets audited.
func (o *Orchestrator) persistAudit(r *run, req driving.AskRequest) {
	entry := domain.AuditLogEntry{
		CorrelationID: r.correlationID,
		Operation:     r.intent,
		Question:      req.Question,
		Trace:         r.trace,
		Duration:      time.Since(r.started),
		State:         r.state,
		Model:         o.generator.ModelName(),
	}
	if r.draft != nil {
		entry.PromptDigest = r.draft.PromptDigest
		entry.InputTokens = r.draft.InputTokens
		entry.OutputTokens = r.draft.OutputTokens
	}
	if r.validation != nil {
		entry.AnswerContent = r.validation.Answer.Content
		entry.Moderation = r.validation.Moderation
		for _, citation := range r.validation.Answer.Citations {
			entry.CitationIDs = append(entry.CitationIDs, citation.ID)
		}
	}

	if o.policy.RedactAuditContent {
		entry.Question = o.gate.Redact(entry.Question).RedactedContent
		entry.AnswerContent = o.gate.Redact(entry.AnswerContent).RedactedContent
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := o.audit.Append(ctx, entry); err != nil {
		logger.Error("writing audit entry for %s: %v", r.correlationID, err)
	}
}
