package services

import (
	"strings"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

// draftSignals are phrases that indicate the user wants text produced
// rather than a question answered.
var draftSignals = []string{
	"draft", "write a", "write me", "compose", "rewrite", "summarize", "summarise",
}

// ingestSignals are phrases that indicate the user is asking to load
// content rather than query it.
var ingestSignals = []string{
	"ingest", "index the", "import the", "load the documents", "add these files",
}

// Router classifies an inbound request into an intent. When the caller
// already pinned an intent, the classifier result is advisory only and
// the explicit intent wins.
type Router struct{}

// NewRouter creates a router.
func NewRouter() *Router {
	return &Router{}
}

// Route returns the intent for the question. A valid pinned intent is
// returned unchanged; otherwise the question text is classified.
func (r *Router) Route(question string, pinned domain.Intent) domain.Intent {
	if pinned.IsValid() {
		return pinned
	}
	return classify(question)
}

func classify(question string) domain.Intent {
	lowered := strings.ToLower(question)

	for _, signal := range draftSignals {
		if strings.Contains(lowered, signal) {
			return domain.IntentDraft
		}
	}
	for _, signal := range ingestSignals {
		if strings.Contains(lowered, signal) {
			return domain.IntentIngest
		}
	}
	return domain.IntentAsk
}
