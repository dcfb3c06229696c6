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

package dna

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one registration of a fingerprinted asset. The pointer is an
// opaque unique identifier chosen by the caller, such as a UUID or a content
// address. Records are immutable once appended to an accumulator.
type Record struct {
	DNA        string `json:"dna_hex" cbor:"dna_hex"`
	Pointer    string `json:"pointer" cbor:"pointer"`
	PlatformID string `json:"platform_id" cbor:"platform_id"`
	Timestamp  int64  `json:"timestamp" cbor:"timestamp"`
}

// Encode returns the canonical byte encoding of the record. This is the only
// representation that is ever hashed into a commitment; any change to the
// field order or separators changes every derived root.
func (r Record) Encode() []byte {
	return []byte(fmt.Sprintf("%s|%s|%s|%d", r.DNA, r.Pointer, r.PlatformID, r.Timestamp))
}

// DecodeRecord parses a canonical byte encoding back into a record. The
// pointer and platform identifier are opaque, but must not contain the pipe
// separator, which is reserved for the encoding itself.
func DecodeRecord(data []byte) (Record, error) {

	parts := strings.Split(string(data), "|")
	if len(parts) != 4 {
		return Record{}, fmt.Errorf("invalid field count (have: %d, want: 4)", len(parts))
	}

	timestamp, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("could not parse timestamp: %w", err)
	}

	record := Record{
		DNA:        parts[0],
		Pointer:    parts[1],
		PlatformID: parts[2],
		Timestamp:  timestamp,
	}

	return record, nil
}
