// Package query answers user questions against their ingested documents.
//
// The Pipeline type runs the retrieval-augmented flow: answer cache
// lookup, question embedding, similarity search over the user's
// collection, prompt assembly and generation. Users without documents
// and failed generations get fixed fallback answers instead of errors,
// so callers always have something to show.
package query
