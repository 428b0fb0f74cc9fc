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

// Package storage provides the working-set abstraction for import batches.
//
// A RecordSet collects the content records built while a batch runs and
// enforces the deduplication rule: at most one record per content hash,
// first writer wins. The set lives for exactly one batch and is discarded
// with it. Nothing here persists records across runs.
//
// # Implementations
//
//   - ingestion.MemoryRecordSet: a mutex-guarded map, the default
//   - badger.RecordSet: BadgerDB-backed, in-memory unless given a directory,
//     for batches whose records should not all live on the Go heap
//
// The badger implementation stores records in the mus-go encoding produced
// by MarshalContentRecord.
//
// # Usage
//
//	set, err := badger.NewMemoryRecordSet()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer set.Close()
//
//	added, err := set.Offer(ctx, record)
//
// # Thread Safety
//
// All RecordSet implementations must be safe for concurrent Offer calls.
// Snapshot is only called after every writer has finished.
package storage
