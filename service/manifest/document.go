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

package manifest

// Document is the serializable snapshot of a built accumulator. It carries
// the root, the full ordered leaf list and a precomputed proof for every
// leaf index, making it self-contained for offline auditing. All binary
// hashes are lowercase hex without a prefix at this boundary; proof map keys
// are decimal leaf indices.
type Document struct {
	Root        string                    `json:"root" cbor:"root" validate:"required,len=64,hexadecimal,lowercase"`
	TotalLeaves int                       `json:"total_leaves" cbor:"total_leaves" validate:"required,min=1"`
	Leaves      []Leaf                    `json:"leaves" cbor:"leaves" validate:"required,min=1,dive"`
	Proofs      map[string][]ProofElement `json:"proofs" cbor:"proofs" validate:"required,dive,dive"`
}

// Leaf is the transport form of one registration record, annotated with its
// position in the canonical index space.
type Leaf struct {
	Index      int    `json:"index" cbor:"index" validate:"min=0"`
	DNA        string `json:"dna_hex" cbor:"dna_hex" validate:"required,len=64,hexadecimal,lowercase"`
	Pointer    string `json:"pointer" cbor:"pointer" validate:"required,excludes=0x7C"`
	PlatformID string `json:"platform_id" cbor:"platform_id" validate:"required,excludes=0x7C"`
	Timestamp  int64  `json:"timestamp" cbor:"timestamp"`
}

// ProofElement is the transport form of one proof step. The position names
// the side the sibling occupies relative to the node being proven.
type ProofElement struct {
	Hash     string `json:"hash" cbor:"hash" validate:"required,len=64,hexadecimal,lowercase"`
	Position string `json:"position" cbor:"position" validate:"required,oneof=left right"`
}
