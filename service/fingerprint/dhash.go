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

package fingerprint

import (
	"encoding/hex"
	"image"
)

const (
	dhashCropSize  = 512
	dhashBlockSize = 4
)

// DHash computes the gradient-direction difference hash of the image: a
// centered 512-pixel crop is converted to luma, smoothed with a 3x3 box
// filter, block-averaged by a factor of 4 and resized to (size+1) x size
// with a bilinear filter, after which each row contributes size horizontal
// gradient bits. Bits are packed MSB-first and hex-encoded, yielding 16
// characters at the default size of 8.
func (f *Fingerprinter) DHash(img image.Image) string {

	size := f.cfg.HashSize

	gray := toGray(centerCrop(img, dhashCropSize))
	gray = boxBlur3(gray)
	gray = blockAverage(gray, dhashBlockSize)
	small := resizeBilinear(gray, size+1, size)

	bits := make([]uint8, 0, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if small.at(x+1, y) > small.at(x, y) {
				bits = append(bits, 1)
			} else {
				bits = append(bits, 0)
			}
		}
	}

	return packBitsHex(bits)
}

// packBitsHex packs bits MSB-first into bytes and encodes them as lowercase
// hex, trimmed to exactly one character per four bits.
func packBitsHex(bits []uint8) string {

	packed := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit != 0 {
			packed[i/8] |= 1 << (7 - uint(i%8))
		}
	}

	encoded := hex.EncodeToString(packed)
	want := len(bits) / 4
	if len(encoded) > want {
		encoded = encoded[:want]
	}

	return encoded
}
