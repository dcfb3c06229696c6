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
	"fmt"

	"github.com/OneOfOne/xxhash"
)

// EncodeKey encodes a storage key from a prefix and a list of fixed-width
// segments. Variable-length strings are reduced to a 64-bit xxhash so that
// every key has a deterministic width. Unsupported segment types indicate a
// programmer error and panic.
func EncodeKey(prefix uint8, segments ...interface{}) []byte {

	key := []byte{prefix}
	for _, segment := range segments {
		switch s := segment.(type) {
		case uint64:
			val := make([]byte, 8)
			binary.BigEndian.PutUint64(val, s)
			key = append(key, val...)
		case [32]byte:
			key = append(key, s[:]...)
		case string:
			val := make([]byte, 8)
			binary.BigEndian.PutUint64(val, xxhash.ChecksumString64(s))
			key = append(key, val...)
		default:
			panic(fmt.Sprintf("unsupported key segment type (%T)", segment))
		}
	}

	return key
}
