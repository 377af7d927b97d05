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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidStatus indicates an unknown DocumentStatus value.
	ErrInvalidStatus = errors.New("invalid document status")

	// ErrInvalidTransition indicates a status change not allowed by the state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrEmptyFilename indicates the Filename field is empty.
	ErrEmptyFilename = errors.New("filename cannot be empty")

	// ErrEmptyQuestion indicates a question is empty after normalization.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrMissingError indicates a failed document without an error message.
	ErrMissingError = errors.New("failed document requires an error message")

	// ErrUnexpectedError indicates an error message on a non-failed document.
	ErrUnexpectedError = errors.New("error message only allowed on failed documents")
)
