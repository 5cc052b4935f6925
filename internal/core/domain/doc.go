// Package domain contains the core business entities and value objects
// of the knowledge base: chunks and embeddings, answers and citations,
// governance verdicts, audit records and ingestion reports. It has no
// dependencies on adapters or external services.
package domain
