package query

import "errors"

var (
	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrManagerRequired is returned when a collection manager is not provided.
	ErrManagerRequired = errors.New("collection manager required")

	// ErrCacheRequired is returned when an answer cache is not provided.
	ErrCacheRequired = errors.New("answer cache required")

	// ErrHistoryRequired is returned when a history repository is not provided.
	ErrHistoryRequired = errors.New("history repository required")

	// ErrInvalidTopK is returned when the search depth is not positive.
	ErrInvalidTopK = errors.New("top-k must be greater than 0")
)
