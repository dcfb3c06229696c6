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

package merkle

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/protracehq/protrace/models/dna"
)

// Tree is a balanced binary Merkle accumulator over registration records,
// hashed with BLAKE3. Leaves are kept in insertion order, which defines the
// canonical index space. When a level has an odd number of nodes, the last
// node is paired with itself to produce its parent; there is no power-of-two
// padding and no hash-of-empty constant.
//
// The tree is single-writer: one owner appends leaves and builds, after
// which the frozen tree is safe for concurrent reads.
type Tree struct {
	records []dna.Record
	levels  [][][32]byte
	root    [32]byte
	built   bool
}

// NewTree creates an empty accumulator.
func NewTree() *Tree {
	t := Tree{}
	return &t
}

// AddLeaf appends a registration record to the leaf list and returns its
// index. Identical records are allowed and receive distinct indices. Adding
// a leaf invalidates any previously built levels.
func (t *Tree) AddLeaf(record dna.Record) int {
	t.records = append(t.records, record)
	t.levels = nil
	t.built = false
	return len(t.records) - 1
}

// Size returns the number of leaves in the tree.
func (t *Tree) Size() int {
	return len(t.records)
}

// Records returns the ordered leaf records. The returned slice is owned by
// the tree and must not be mutated.
func (t *Tree) Records() []dna.Record {
	return t.records
}

// Build constructs the tree bottom-up from the current leaf list and returns
// the root hash. The per-level node arrays are retained so that proof
// generation can walk them instead of rebuilding from the leaves. Building
// the same leaf list again yields the same root.
func (t *Tree) Build() ([32]byte, error) {

	if len(t.records) == 0 {
		return [32]byte{}, ErrNoLeaves
	}

	level := make([][32]byte, 0, len(t.records))
	for _, record := range t.records {
		level = append(level, hashLeaf(record.Encode()))
	}

	t.levels = [][][32]byte{level}
	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, hashNodes(left, right))
		}
		t.levels = append(t.levels, next)
		level = next
	}

	t.root = level[0]
	t.built = true

	return t.root, nil
}

// Root returns the root hash of a built tree.
func (t *Tree) Root() ([32]byte, error) {
	if !t.built {
		return [32]byte{}, ErrNotBuilt
	}
	return t.root, nil
}

// RootHex returns the root hash of a built tree as lowercase hex.
func (t *Tree) RootHex() (string, error) {
	root, err := t.Root()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(root[:]), nil
}

// Proof derives the inclusion proof for the leaf at the given index by
// walking the retained levels from the leaves towards the root. When a node
// pairs with itself at an odd-sized level, the proof contains the node's own
// hash as a right sibling, so that verification is a plain fold without
// special cases.
func (t *Tree) Proof(index int) (Proof, error) {

	if !t.built {
		return nil, ErrNotBuilt
	}
	if index < 0 || index >= len(t.records) {
		return nil, ErrIndexOutOfRange
	}

	var proof Proof
	for _, level := range t.levels[:len(t.levels)-1] {
		if index%2 == 0 {
			sibling := index
			if index+1 < len(level) {
				sibling = index + 1
			}
			proof = append(proof, Step{Hash: level[sibling], Position: Right})
		} else {
			proof = append(proof, Step{Hash: level[index-1], Position: Left})
		}
		index /= 2
	}

	return proof, nil
}

func hashLeaf(data []byte) [32]byte {
	return blake3.Sum256(data)
}

func hashNodes(left [32]byte, right [32]byte) [32]byte {
	var hash [32]byte
	hasher := blake3.New()
	_, _ = hasher.Write(left[:])
	_, _ = hasher.Write(right[:])
	copy(hash[:], hasher.Sum(nil))
	return hash
}
