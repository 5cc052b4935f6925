// Package driven defines the outbound ports of the core: the contracts
// the knowledge base requires from vector stores, embedding and
// generation providers, document parsers, moderation, audit and memory
// storage. Adapters under internal/adapters/driven implement them.
package driven
