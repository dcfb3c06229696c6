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
)

const (
	// DHashHexLen is the hex length of the 64-bit difference hash component.
	DHashHexLen = 16

	// GridHexLen is the hex length of the 192-bit multi-scale grid component.
	GridHexLen = 48

	// HexLen is the hex length of the full 256-bit DNA fingerprint.
	HexLen = DHashHexLen + GridHexLen

	// Bits is the total number of bits in a full DNA fingerprint.
	Bits = 256
)

// Hash is the 256-bit perceptual fingerprint of an image. It combines a
// 64-bit gradient-direction difference hash with a 192-bit multi-scale grid
// hash. The combined hex form is always the concatenation of the two
// components; the three fields are never partially populated.
type Hash struct {
	DHash    string `json:"dhash" cbor:"dhash"`
	GridHash string `json:"grid_hash" cbor:"grid_hash"`
	Hex      string `json:"dna_hex" cbor:"dna_hex"`
}

// NewHash combines a difference hash and a grid hash into a full DNA
// fingerprint, checking both components for valid lowercase hex of the
// expected width.
func NewHash(dhash string, gridHash string) (Hash, error) {

	err := ValidateHex(dhash, DHashHexLen)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid difference hash: %w", err)
	}
	err = ValidateHex(gridHash, GridHexLen)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid grid hash: %w", err)
	}

	h := Hash{
		DHash:    dhash,
		GridHash: gridHash,
		Hex:      dhash + gridHash,
	}

	return h, nil
}

// ParseHex splits a 64-character combined fingerprint back into its
// difference hash and grid hash components.
func ParseHex(hex string) (Hash, error) {

	err := ValidateHex(hex, HexLen)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid DNA hex: %w", err)
	}

	h := Hash{
		DHash:    hex[:DHashHexLen],
		GridHash: hex[DHashHexLen:],
		Hex:      hex,
	}

	return h, nil
}

// ValidateHex checks that the given string is lowercase hex of exactly the
// wanted length. A failed check is a caller error and is never silently
// defaulted to a zero hash.
func ValidateHex(hex string, length int) error {

	if len(hex) != length {
		return fmt.Errorf("%w: have %d, want %d", ErrMismatchedLength, len(hex), length)
	}

	for i := 0; i < len(hex); i++ {
		c := hex[i]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') {
			continue
		}
		return fmt.Errorf("%w: character %q at offset %d", ErrInvalidCharacter, c, i)
	}

	return nil
}
