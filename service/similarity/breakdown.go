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

package similarity

import (
	"github.com/protracehq/protrace/models/dna"
)

// Scores holds the component-wise similarity between two DNA fingerprints,
// alongside the combined score and distance.
type Scores struct {
	Combined float64 `json:"combined"`
	DHash    float64 `json:"dhash"`
	Grid     float64 `json:"grid"`
	Distance int     `json:"distance"`
}

// Breakdown compares two full fingerprints and scores the difference hash
// and grid hash components independently, which helps distinguish gradient
// matches (recompression) from structural matches (crops and overlays).
func Breakdown(h1 dna.Hash, h2 dna.Hash) (Scores, error) {

	combined, err := Similarity(h1.Hex, h2.Hex)
	if err != nil {
		return Scores{}, err
	}
	dhash, err := Similarity(h1.DHash, h2.DHash)
	if err != nil {
		return Scores{}, err
	}
	grid, err := Similarity(h1.GridHash, h2.GridHash)
	if err != nil {
		return Scores{}, err
	}
	distance, err := HammingDistance(h1.Hex, h2.Hex)
	if err != nil {
		return Scores{}, err
	}

	scores := Scores{
		Combined: combined,
		DHash:    dhash,
		Grid:     grid,
		Distance: distance,
	}

	return scores, nil
}
