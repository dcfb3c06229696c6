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
	"github.com/zeebo/blake3"
)

// Step is one element of an inclusion proof: the sibling hash at one level
// and the side the sibling occupies relative to the node being proven.
type Step struct {
	Hash     [32]byte
	Position Position
}

// Proof is an ordered list of proof steps from the leaf level towards the
// root. A single-leaf tree has an empty proof.
type Proof []Step

// Verify folds the proof over the canonical leaf encoding and compares the
// result against the expected root. An invalid proof is a normal outcome of
// verification, not an error.
func Verify(leaf []byte, proof Proof, root [32]byte) bool {

	current := hashLeaf(leaf)
	for _, step := range proof {
		hasher := blake3.New()
		if step.Position == Left {
			_, _ = hasher.Write(step.Hash[:])
			_, _ = hasher.Write(current[:])
		} else {
			_, _ = hasher.Write(current[:])
			_, _ = hasher.Write(step.Hash[:])
		}
		copy(current[:], hasher.Sum(nil))
	}

	return current == root
}
