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

package index_test

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protracehq/protrace/codec/zbor"
	"github.com/protracehq/protrace/models/dna"
	"github.com/protracehq/protrace/models/registry"
	"github.com/protracehq/protrace/service/index"
	"github.com/protracehq/protrace/service/manifest"
	"github.com/protracehq/protrace/service/merkle"
	"github.com/protracehq/protrace/service/storage"
)

func TestIndexPublishAndRead(t *testing.T) {

	db := testDB(t)
	lib := storage.New(zbor.NewCodec())
	writer := index.NewWriter(db, lib)
	reader := index.NewReader(db, lib)

	doc, records := testManifest(t, 3)
	require.NoError(t, writer.Commit(doc))

	var root [32]byte
	data, err := hex.DecodeString(doc.Root)
	require.NoError(t, err)
	copy(root[:], data)

	t.Run("latest tracks the published root", func(t *testing.T) {
		latest, err := reader.Latest()
		require.NoError(t, err)
		assert.Equal(t, root, latest)
	})

	t.Run("manifest round-trips through the index", func(t *testing.T) {
		stored, err := reader.Manifest(root)
		require.NoError(t, err)
		assert.Equal(t, doc, stored)
	})

	t.Run("records are retrievable by index", func(t *testing.T) {
		for i, want := range records {
			record, err := reader.Record(root, uint64(i))
			require.NoError(t, err)
			assert.Equal(t, want, record)
		}
	})

	t.Run("fingerprints are retrievable by pointer", func(t *testing.T) {
		for _, want := range records {
			fingerprint, err := reader.Fingerprint(want.Pointer)
			require.NoError(t, err)
			assert.Equal(t, want.Pointer, fingerprint.Pointer)
			assert.Equal(t, want.DNA, fingerprint.Hash.Hex)
		}
	})

	t.Run("fingerprint scan returns every asset", func(t *testing.T) {
		fingerprints, err := reader.Fingerprints()
		require.NoError(t, err)
		assert.Len(t, fingerprints, len(records))
	})
}

func TestIndexNotFound(t *testing.T) {

	db := testDB(t)
	lib := storage.New(zbor.NewCodec())
	reader := index.NewReader(db, lib)

	_, err := reader.Latest()
	assert.ErrorIs(t, err, registry.ErrNotFound)

	var root [32]byte
	_, err = reader.Manifest(root)
	assert.ErrorIs(t, err, registry.ErrNotFound)

	_, err = reader.Record(root, 0)
	assert.ErrorIs(t, err, registry.ErrNotFound)

	_, err = reader.Fingerprint("missing")
	assert.ErrorIs(t, err, registry.ErrNotFound)

	fingerprints, err := reader.Fingerprints()
	require.NoError(t, err)
	assert.Empty(t, fingerprints)
}

func TestIndexFingerprintFallsBackToRecords(t *testing.T) {

	db := testDB(t)
	lib := storage.New(zbor.NewCodec())
	reader := index.NewReader(db, lib)

	// Store only the leaf record, the way older manifests were published
	// before the fingerprint index existed.
	record := dna.Record{
		DNA:        strings.Repeat("b", 64),
		Pointer:    "legacy-asset",
		PlatformID: "platform",
		Timestamp:  1700000000,
	}
	var root [32]byte
	root[0] = 0xaa
	require.NoError(t, db.Update(lib.SaveRecord(root, 0, &record)))

	fingerprint, err := reader.Fingerprint("legacy-asset")
	require.NoError(t, err)
	assert.Equal(t, "legacy-asset", fingerprint.Pointer)
	assert.Equal(t, record.DNA, fingerprint.Hash.Hex)

	// A pointer with neither a fingerprint entry nor a record stays missing.
	_, err = reader.Fingerprint("unknown-asset")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestIndexLatestFollowsNewCommit(t *testing.T) {

	db := testDB(t)
	lib := storage.New(zbor.NewCodec())
	writer := index.NewWriter(db, lib)
	reader := index.NewReader(db, lib)

	first, _ := testManifest(t, 2)
	require.NoError(t, writer.Commit(first))

	second, _ := testManifest(t, 5)
	require.NoError(t, writer.Commit(second))

	latest, err := reader.Latest()
	require.NoError(t, err)
	assert.Equal(t, second.Root, hex.EncodeToString(latest[:]))

	// Earlier commitments remain addressable by root.
	var firstRoot [32]byte
	data, err := hex.DecodeString(first.Root)
	require.NoError(t, err)
	copy(firstRoot[:], data)

	stored, err := reader.Manifest(firstRoot)
	require.NoError(t, err)
	assert.Equal(t, first, stored)
}

func TestIndexCommitRejectsBadRoot(t *testing.T) {

	db := testDB(t)
	lib := storage.New(zbor.NewCodec())
	writer := index.NewWriter(db, lib)

	doc, _ := testManifest(t, 1)
	doc.Root = "not-hex"
	assert.Error(t, writer.Commit(doc))
}

func testDB(t *testing.T) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func testManifest(t *testing.T, n int) (*manifest.Document, []dna.Record) {
	t.Helper()

	tree := merkle.NewTree()
	records := make([]dna.Record, 0, n)
	for i := 0; i < n; i++ {
		record := dna.Record{
			DNA:        strings.Repeat(fmt.Sprintf("%x", (i+n)%16), 64),
			Pointer:    fmt.Sprintf("asset-%d-%d", n, i),
			PlatformID: "platform",
			Timestamp:  int64(1700000000 + i),
		}
		records = append(records, record)
		tree.AddLeaf(record)
	}
	_, err := tree.Build()
	require.NoError(t, err)

	doc, err := manifest.NewCodec().Export(tree)
	require.NoError(t, err)

	return doc, records
}
