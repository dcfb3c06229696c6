// Copyright 2023 ProTrace Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package index

import (
	"encoding/hex"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/protracehq/protrace/models/dna"
	"github.com/protracehq/protrace/models/registry"
	"github.com/protracehq/protrace/service/manifest"
	"github.com/protracehq/protrace/service/storage"
)

// Writer publishes commitments into the registry index.
type Writer struct {
	db  *badger.DB
	lib *storage.Library
}

// NewWriter creates a writer on the given database using the given storage
// library.
func NewWriter(db *badger.DB, lib *storage.Library) *Writer {

	w := Writer{
		db:  db,
		lib: lib,
	}

	return &w
}

// Commit persists a manifest document: the document itself under its root,
// every leaf record under its index, every fingerprint under its pointer,
// and the root as the latest published commitment. The whole publication is
// a single transaction.
func (w *Writer) Commit(doc *manifest.Document) error {

	data, err := hex.DecodeString(doc.Root)
	if err != nil || len(data) != 32 {
		return fmt.Errorf("invalid manifest root (root: %s)", doc.Root)
	}
	var root [32]byte
	copy(root[:], data)

	ops := []func(*badger.Txn) error{
		w.lib.SaveManifest(root, doc),
		w.lib.SaveLatest(root),
	}
	for _, leaf := range doc.Leaves {

		record := dna.Record{
			DNA:        leaf.DNA,
			Pointer:    leaf.Pointer,
			PlatformID: leaf.PlatformID,
			Timestamp:  leaf.Timestamp,
		}
		ops = append(ops, w.lib.SaveRecord(root, uint64(leaf.Index), &record))

		hash, err := dna.ParseHex(leaf.DNA)
		if err != nil {
			return fmt.Errorf("invalid leaf DNA (index: %d): %w", leaf.Index, err)
		}
		fingerprint := registry.Fingerprint{
			Pointer: leaf.Pointer,
			Hash:    hash,
		}
		ops = append(ops, w.lib.SaveFingerprint(&fingerprint))
	}

	err = w.db.Update(storage.Combine(ops...))
	if err != nil {
		return fmt.Errorf("could not publish manifest (root: %s): %w", doc.Root, err)
	}

	return nil
}
