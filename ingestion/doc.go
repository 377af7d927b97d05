// Package ingestion turns uploaded documents into searchable vectors.
//
// The Orchestrator type owns the asynchronous processing workflow:
//   - Claiming pending documents so each is processed exactly once
//   - Chunking document text
//   - Generating embeddings per chunk, with bounded retry
//   - Reconciling the user's vector collection and committing vectors
//
// Processing runs on a bounded worker pool. A document's outcome is
// always recorded on its record: processed when at least one chunk made
// it into the collection, failed otherwise, with the reason attached.
package ingestion
