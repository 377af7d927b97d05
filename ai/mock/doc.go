// Package mock provides test doubles for the ai package interfaces.
//
// The mocks generate deterministic embeddings, count their invocations,
// and allow custom behavior injection via function fields.
package mock
