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
	"encoding/binary"
	"testing"

	"github.com/OneOfOne/xxhash"
	"github.com/stretchr/testify/assert"
)

func TestEncodeKey(t *testing.T) {
	t.Parallel()

	t.Run("prefix only", func(t *testing.T) {
		t.Parallel()

		key := EncodeKey(PrefixLatest)
		assert.Equal(t, []byte{PrefixLatest}, key)
	})

	t.Run("uint64 segment is big endian", func(t *testing.T) {
		t.Parallel()

		key := EncodeKey(PrefixRecord, uint64(0x0102030405060708))
		assert.Equal(t, []byte{PrefixRecord, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, key)
	})

	t.Run("root segment is raw bytes", func(t *testing.T) {
		t.Parallel()

		var root [32]byte
		for i := range root {
			root[i] = byte(i)
		}

		key := EncodeKey(PrefixManifest, root)
		assert.Equal(t, append([]byte{PrefixManifest}, root[:]...), key)
	})

	t.Run("string segment has fixed width", func(t *testing.T) {
		t.Parallel()

		short := EncodeKey(PrefixFingerprint, "a")
		long := EncodeKey(PrefixFingerprint, "a-much-longer-asset-pointer")
		assert.Len(t, short, 9)
		assert.Len(t, long, 9)
		assert.NotEqual(t, short, long)

		want := make([]byte, 8)
		binary.BigEndian.PutUint64(want, xxhash.ChecksumString64("a"))
		assert.Equal(t, append([]byte{PrefixFingerprint}, want...), short)
	})

	t.Run("compound key", func(t *testing.T) {
		t.Parallel()

		var root [32]byte
		key := EncodeKey(PrefixRecord, root, uint64(7))
		assert.Len(t, key, 1+32+8)
		assert.Equal(t, byte(7), key[len(key)-1])
	})

	t.Run("unsupported segment panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			EncodeKey(PrefixRecord, 3.14)
		})
	})
}
