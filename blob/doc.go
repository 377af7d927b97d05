// Package blob stores uploaded document payloads and hands them back to
// the ingestion pipeline by locator.
package blob
