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


// Package storage provides the storage abstraction layer for docqa.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic: document metadata, question/answer
// history, and the TTL-based answer cache. The badger subpackage provides
// the production implementation; consumers depend only on the interfaces
// here so alternative backends can be swapped in.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines. The ingestion orchestrator
// in particular holds its own repository handles, decoupled from any
// request-scoped resources.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support.
package storage
