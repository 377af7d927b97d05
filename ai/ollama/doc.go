// Package ollama implements the ai provider interfaces on top of the
// native Ollama HTTP API. It registers itself under ai.KindOllama.
//
// Use this provider when talking to Ollama directly; the openai package
// covers Ollama's OpenAI-compatible /v1 endpoint as well.
package ollama
