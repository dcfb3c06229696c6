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

// Package index implements the persistent registry index over a Badger
// database, with a writer for publishing commitments and a reader for
// auditing them.
package index

import (
	"errors"

	"github.com/dgraph-io/badger/v2"

	"github.com/protracehq/protrace/models/dna"
	"github.com/protracehq/protrace/models/registry"
	"github.com/protracehq/protrace/service/manifest"
	"github.com/protracehq/protrace/service/storage"
)

// Reader retrieves commitments, records and fingerprints from the registry
// index.
type Reader struct {
	db  *badger.DB
	lib *storage.Library
}

// NewReader creates a reader on the given database using the given storage
// library.
func NewReader(db *badger.DB, lib *storage.Library) *Reader {

	r := Reader{
		db:  db,
		lib: lib,
	}

	return &r
}

// Latest returns the root of the most recently published commitment.
func (r *Reader) Latest() ([32]byte, error) {
	var root [32]byte
	err := r.db.View(r.lib.RetrieveLatest(&root))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return [32]byte{}, registry.ErrNotFound
	}
	return root, err
}

// Manifest returns the manifest document published under the given root.
func (r *Reader) Manifest(root [32]byte) (*manifest.Document, error) {
	var doc manifest.Document
	err := r.db.View(r.lib.RetrieveManifest(root, &doc))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, registry.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Record returns the leaf record at the given index of the commitment with
// the given root.
func (r *Reader) Record(root [32]byte, index uint64) (dna.Record, error) {
	var record dna.Record
	err := r.db.View(r.lib.RetrieveRecord(root, index, &record))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return dna.Record{}, registry.ErrNotFound
	}
	return record, err
}

// Fingerprint returns the fingerprint of the asset with the given pointer.
// When the fingerprint index has no entry, the lookup falls back to deriving
// the fingerprint from the asset's stored leaf records.
func (r *Reader) Fingerprint(pointer string) (registry.Fingerprint, error) {
	var fingerprint registry.Fingerprint
	err := r.db.View(storage.Fallback(
		r.lib.RetrieveFingerprint(pointer, &fingerprint),
		r.lib.LookupFingerprint(pointer, &fingerprint),
	))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return registry.Fingerprint{}, registry.ErrNotFound
	}
	if err != nil {
		return registry.Fingerprint{}, err
	}
	return fingerprint, nil
}

// Fingerprints returns all fingerprints stored in the registry, for use by
// the duplicate scan.
func (r *Reader) Fingerprints() ([]registry.Fingerprint, error) {
	var fingerprints []registry.Fingerprint
	err := r.db.View(r.lib.IterateFingerprints(func(fingerprint registry.Fingerprint) error {
		fingerprints = append(fingerprints, fingerprint)
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return fingerprints, nil
}
