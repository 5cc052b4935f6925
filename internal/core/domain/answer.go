package domain

// Citation references a chunk that supports part of an answer.
// Its ID must belong to the retrieved set frozen by the Retriever stage
// of the same request (the grounding invariant).
type Citation struct {
	// ID is the cited chunk ID.
	ID string

	// Score is the retrieval similarity of the cited chunk.
	Score float64

	// Title is the source document title.
	Title string

	// URL is an optional link to the source.
	URL string

	// Text is the cited chunk text.
	Text string
}

// Answer is the validated output of the agent pipeline.
type Answer struct {
	// Content is the answer text shown to the caller.
	Content string

	// Citations are the grounded references supporting the content.
	Citations []Citation

	// LowConfidence is set when every citation failed the grounding
	// check and was dropped.
	LowConfidence bool
}
