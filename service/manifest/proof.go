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

import (
	"encoding/hex"
	"fmt"

	"github.com/protracehq/protrace/service/merkle"
)

// FromProof converts an inclusion proof into its transport form.
func FromProof(proof merkle.Proof) []ProofElement {

	elements := make([]ProofElement, 0, len(proof))
	for _, step := range proof {
		elements = append(elements, ProofElement{
			Hash:     hex.EncodeToString(step.Hash[:]),
			Position: step.Position.String(),
		})
	}

	return elements
}

// ToProof converts transport proof elements back into an inclusion proof.
func ToProof(elements []ProofElement) (merkle.Proof, error) {

	proof := make(merkle.Proof, 0, len(elements))
	for i, element := range elements {

		data, err := hex.DecodeString(element.Hash)
		if err != nil {
			return nil, fmt.Errorf("could not decode hash (element: %d): %w", i, err)
		}
		if len(data) != 32 {
			return nil, fmt.Errorf("invalid hash length (element: %d, have: %d, want: 32)", i, len(data))
		}

		position, err := merkle.ParsePosition(element.Position)
		if err != nil {
			return nil, fmt.Errorf("could not parse position (element: %d): %w", i, err)
		}

		var step merkle.Step
		copy(step.Hash[:], data)
		step.Position = position
		proof = append(proof, step)
	}

	return proof, nil
}
