package ai

import "errors"

var (
	// ErrConfigRequired is returned when a provider is constructed without a config.
	ErrConfigRequired = errors.New("ai config required")

	// ErrUnknownKind is returned when no factory is registered for a provider kind.
	ErrUnknownKind = errors.New("unknown provider kind")

	// ErrEmbedding wraps transport or provider failures during embedding.
	// Callers use errors.Is to distinguish embedding failures from other
	// pipeline errors and decide whether to retry, skip, or abort.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration wraps transport or provider failures during answer generation.
	ErrGeneration = errors.New("generation failed")
)
