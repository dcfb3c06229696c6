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
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"
)

const (
	gridPadSize    = 2048
	gridCenterSize = 1024
	gridEdge       = 8
)

// gridBlockSizes are the block edge lengths of the three independent grid
// scales, producing 8x8, 12x12 and 16x16 grids over the 1024-pixel center
// region. The order is fixed; it defines the bit layout of the hash.
var gridBlockSizes = []int{128, 85, 64}

// GridHash computes the 192-bit multi-scale grid hash of the image: the
// image is centered on a black 2048-pixel square, the 1024-pixel center is
// converted to luma, and each of the three scales block-averages the region,
// binarizes the cells against the grid's median, reduces the grid to 8x8
// with nearest-neighbor resampling where needed, and contributes 64 bits.
// The three scales are independent and computed concurrently.
func (f *Fingerprinter) GridHash(img image.Image) string {

	gray := toGray(centerCrop(padToSquare(img, gridPadSize), gridCenterSize))

	words := make([]uint64, len(gridBlockSizes))
	var group errgroup.Group
	for i, block := range gridBlockSizes {
		i, block := i, block
		group.Go(func() error {
			words[i] = gridWord(gray, block)
			return nil
		})
	}
	_ = group.Wait()

	return fmt.Sprintf("%016x%016x%016x", words[0], words[1], words[2])
}

// gridWord computes the 64-bit contribution of a single grid scale over the
// shared luma plane, which it only reads.
func gridWord(gray *plane, block int) uint64 {

	cells := blockAverage(gray, block)
	threshold := median(cells.pixels)

	binary := newPlane(cells.width, cells.height)
	for i, v := range cells.pixels {
		if v > threshold {
			binary.pixels[i] = 255
		}
	}

	if binary.width != gridEdge || binary.height != gridEdge {
		binary = resizeNearest(binary, gridEdge, gridEdge)
	}

	var word uint64
	for y := 0; y < gridEdge; y++ {
		for x := 0; x < gridEdge; x++ {
			word <<= 1
			if binary.at(x, y) > 127 {
				word |= 1
			}
		}
	}

	return word
}
