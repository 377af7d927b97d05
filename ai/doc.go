// Package ai defines the provider abstractions for text embedding and
// answer generation, along with their shared configuration.
//
// Concrete providers live in subpackages (openai, ollama) and register
// themselves by kind; consumers resolve a provider once at configuration
// time via NewProvider and depend only on the interfaces defined here.
package ai
