// Package vectorstore defines the vector collection abstraction and the
// Manager that keeps each user's collection dimension reconciled with the
// dimensionality actually produced by the embedding provider.
//
// A collection may never hold mixed-dimension vectors. When the measured
// dimension disagrees with the configured one, the Manager drops and
// recreates the collection, losing its contents; reconciliation is
// serialized per collection so readers never observe a mid-rebuild state.
package vectorstore
