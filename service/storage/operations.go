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

package storage

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/protracehq/protrace/models/dna"
	"github.com/protracehq/protrace/models/registry"
	"github.com/protracehq/protrace/service/manifest"
)

// SaveLatest is an operation that writes the root of the most recently
// published commitment.
func (l *Library) SaveLatest(root [32]byte) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixLatest), root)
}

// SaveManifest is an operation that writes a manifest document under its
// root.
func (l *Library) SaveManifest(root [32]byte, doc *manifest.Document) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixManifest, root), doc)
}

// SaveRecord is an operation that writes a leaf record under its commitment
// root and leaf index.
func (l *Library) SaveRecord(root [32]byte, index uint64, record *dna.Record) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixRecord, root, index), record)
}

// SaveFingerprint is an operation that writes an asset fingerprint under its
// pointer.
func (l *Library) SaveFingerprint(fingerprint *registry.Fingerprint) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixFingerprint, fingerprint.Pointer), fingerprint)
}

// RetrieveLatest is an operation that retrieves the root of the most
// recently published commitment.
func (l *Library) RetrieveLatest(root *[32]byte) func(*badger.Txn) error {
	return l.retrieve(EncodeKey(PrefixLatest), root)
}

// RetrieveManifest is an operation that retrieves the manifest document with
// the given root.
func (l *Library) RetrieveManifest(root [32]byte, doc *manifest.Document) func(*badger.Txn) error {
	return l.retrieve(EncodeKey(PrefixManifest, root), doc)
}

// RetrieveRecord is an operation that retrieves the leaf record at the given
// index of the commitment with the given root.
func (l *Library) RetrieveRecord(root [32]byte, index uint64, record *dna.Record) func(*badger.Txn) error {
	return l.retrieve(EncodeKey(PrefixRecord, root, index), record)
}

// RetrieveFingerprint is an operation that retrieves the fingerprint of the
// asset with the given pointer.
func (l *Library) RetrieveFingerprint(pointer string, fingerprint *registry.Fingerprint) func(*badger.Txn) error {
	return l.retrieve(EncodeKey(PrefixFingerprint, pointer), fingerprint)
}

// LookupFingerprint is an operation that derives the fingerprint of an asset
// from its stored leaf records instead of the fingerprint index. It serves as
// the fallback for pointers whose fingerprint entry was never written, such
// as manifests published by older binaries that only stored records.
func (l *Library) LookupFingerprint(pointer string, fingerprint *registry.Fingerprint) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{PrefixRecord}
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var record dna.Record
			err := it.Item().Value(func(val []byte) error {
				return l.codec.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("could not decode record (key: %x): %w", it.Item().Key(), err)
			}
			if record.Pointer != pointer {
				continue
			}
			hash, err := dna.ParseHex(record.DNA)
			if err != nil {
				return fmt.Errorf("could not parse record DNA (pointer: %s): %w", pointer, err)
			}
			*fingerprint = registry.Fingerprint{
				Pointer: pointer,
				Hash:    hash,
			}
			return nil
		}

		return badger.ErrKeyNotFound
	}
}

// IterateFingerprints is an operation that goes through all stored
// fingerprints and hands each one to the given callback.
func (l *Library) IterateFingerprints(callback func(registry.Fingerprint) error) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{PrefixFingerprint}
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var fingerprint registry.Fingerprint
			err := it.Item().Value(func(val []byte) error {
				return l.codec.Unmarshal(val, &fingerprint)
			})
			if err != nil {
				return fmt.Errorf("could not decode fingerprint (key: %x): %w", it.Item().Key(), err)
			}
			err = callback(fingerprint)
			if err != nil {
				return err
			}
		}

		return nil
	}
}
