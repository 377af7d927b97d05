// Package openai implements the ai provider interfaces on top of
// OpenAI-compatible HTTP APIs (OpenAI itself, Ollama's /v1 endpoint,
// LocalAI, vLLM). It registers itself under ai.KindOpenAI.
package openai
