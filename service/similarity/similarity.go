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

// Package similarity implements bit-level comparison over hex-encoded
// perceptual fingerprints. All functions are pure and safe for concurrent
// use.
package similarity

import (
	"encoding/hex"
	"fmt"
	"math/bits"

	"github.com/protracehq/protrace/models/dna"
)

// DefaultThreshold is the maximum Hamming distance at which two full 256-bit
// DNA fingerprints are considered duplicates. 26 differing bits corresponds
// to roughly 89.8% similarity.
const DefaultThreshold = 26

// HammingDistance counts the differing bits between two hex fingerprints of
// equal length. Mismatched lengths are a caller error, never a silent
// sentinel value.
func HammingDistance(h1 string, h2 string) (int, error) {

	if len(h1) != len(h2) {
		return 0, fmt.Errorf("%w: have %d and %d", dna.ErrMismatchedLength, len(h1), len(h2))
	}

	b1, err := hex.DecodeString(h1)
	if err != nil {
		return 0, fmt.Errorf("could not decode first hash: %w", err)
	}
	b2, err := hex.DecodeString(h2)
	if err != nil {
		return 0, fmt.Errorf("could not decode second hash: %w", err)
	}

	distance := 0
	for i := range b1 {
		distance += bits.OnesCount8(b1[i] ^ b2[i])
	}

	return distance, nil
}

// Similarity returns the fraction of matching bits between two fingerprints,
// in the range [0.0, 1.0].
func Similarity(h1 string, h2 string) (float64, error) {

	distance, err := HammingDistance(h1, h2)
	if err != nil {
		return 0, err
	}

	total := 4 * len(h1)
	return 1.0 - float64(distance)/float64(total), nil
}

// IsDuplicate reports whether two fingerprints lie within the given Hamming
// distance of each other. The check is symmetric in its arguments.
func IsDuplicate(h1 string, h2 string, threshold int) (bool, error) {

	distance, err := HammingDistance(h1, h2)
	if err != nil {
		return false, err
	}

	return distance <= threshold, nil
}

// Match is one duplicate pair found by an exhaustive scan, identified by the
// positions of the two fingerprints in the scanned sequence.
type Match struct {
	I        int `json:"i"`
	J        int `json:"j"`
	Distance int `json:"distance"`
}

// FindDuplicatePairs scans all pairs of the given fingerprints and returns
// every pair within the threshold, in ascending (i, j) order. The scan is
// quadratic, which is acceptable for registry batches in the low thousands;
// larger corpora need a bucketed prefilter in front of it.
func FindDuplicatePairs(hashes []string, threshold int) ([]Match, error) {

	var matches []Match
	for i := 0; i < len(hashes); i++ {
		for j := i + 1; j < len(hashes); j++ {
			distance, err := HammingDistance(hashes[i], hashes[j])
			if err != nil {
				return nil, fmt.Errorf("could not compare hashes %d and %d: %w", i, j, err)
			}
			if distance <= threshold {
				matches = append(matches, Match{I: i, J: j, Distance: distance})
			}
		}
	}

	return matches, nil
}
