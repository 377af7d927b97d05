// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"unicode/utf8"
)

// MaxErrorMessageLen bounds the persisted error message for failed documents.
const MaxErrorMessageLen = 255

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Filename must not be empty
//   - Status must be a known value
//   - ErrorMessage is set if and only if Status is failed
//   - ErrorMessage must not exceed MaxErrorMessageLen bytes
//
// NOT validated (populated by the orchestrator or storage layer):
//   - CollectionName (derived at ingestion time)
//   - ID (0 is valid before a sequence assigns one)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFilename)
	}

	if err := ValidateStatus(doc.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if doc.Status == StatusFailed && doc.ErrorMessage == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrMissingError)
	}

	if doc.Status != StatusFailed && doc.ErrorMessage != "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrUnexpectedError)
	}

	if len(doc.ErrorMessage) > MaxErrorMessageLen {
		return fmt.Errorf("%w: error message exceeds %d bytes", ErrInvalidDocument, MaxErrorMessageLen)
	}

	return nil
}

// ValidateStatus validates that a DocumentStatus has a known value.
func ValidateStatus(status DocumentStatus) error {
	switch status {
	case StatusPending, StatusProcessing, StatusProcessed, StatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
}

// TruncateError bounds an error string to MaxErrorMessageLen bytes,
// cutting on a rune boundary so the result stays valid UTF-8.
func TruncateError(msg string) string {
	if len(msg) <= MaxErrorMessageLen {
		return msg
	}
	cut := MaxErrorMessageLen
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}
