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

// Package storage provides the persistence layer for processed decisions.
//
// The only persisted state is the audit log: one append-only entry per mask or
// delete decision, recording the matched key, the encryption key (or the
// deletion placeholder), the source, the stored name and the probability.
//
// # Backends
//
//   - badger: embedded BadgerDB directory, the default for local runs.
//   - gormstore: a results table in one of the configured SQL sources.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.AuditRepository interface so callers
// stay independent of the backend:
//
//	repo, err := badger.Open("./audit_db", logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemoryAuditRepository()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
