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
	"bytes"
	"image"
	"image/color"
	"sort"

	// Register the decoders for the supported image formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// plane is a single-channel float image used throughout the pipeline.
// Pixels are stored row-major.
type plane struct {
	width  int
	height int
	pixels []float32
}

func newPlane(width int, height int) *plane {
	p := plane{
		width:  width,
		height: height,
		pixels: make([]float32, width*height),
	}
	return &p
}

func (p *plane) at(x int, y int) float32 {
	return p.pixels[y*p.width+x]
}

func (p *plane) set(x int, y int, v float32) {
	p.pixels[y*p.width+x] = v
}

// toGray converts an image into a luma plane using the ITU-R 601-2
// transform, truncated to 8-bit values before any further processing.
func toGray(img image.Image) *plane {

	bounds := img.Bounds()
	p := newPlane(bounds.Dx(), bounds.Dy())
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			luma := ((r>>8)*299 + (g>>8)*587 + (b>>8)*114) / 1000
			p.set(x, y, float32(uint8(luma)))
		}
	}

	return p
}

// centerCrop extracts the centered size-by-size window of the image, or the
// full image along any axis that is already smaller. There is no upscaling.
func centerCrop(img image.Image, size int) image.Image {

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	cropW := width
	if cropW > size {
		cropW = size
	}
	cropH := height
	if cropH > size {
		cropH = size
	}
	left := bounds.Min.X + (width-cropW)/2
	top := bounds.Min.Y + (height-cropH)/2

	out := image.NewRGBA(image.Rect(0, 0, cropW, cropH))
	draw.Copy(out, image.Point{}, img, image.Rect(left, top, left+cropW, top+cropH), draw.Src, nil)

	return out
}

// padToSquare centers the image on a black target-by-target canvas. Images
// larger than the target are clipped to their centered target window, which
// composes with the subsequent center crop to the same region either way.
func padToSquare(img image.Image, target int) image.Image {

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	out := image.NewRGBA(image.Rect(0, 0, target, target))
	offset := image.Pt((target-width)/2, (target-height)/2)
	draw.Copy(out, offset, img, bounds, draw.Src, nil)

	return out
}

// boxBlur3 applies a 3x3 box filter with clamped edges to suppress
// re-encoding noise before gradient extraction.
func boxBlur3(p *plane) *plane {

	out := newPlane(p.width, p.height)
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			var sum float32
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sx := clamp(x+dx, 0, p.width-1)
					sy := clamp(y+dy, 0, p.height-1)
					sum += p.at(sx, sy)
				}
			}
			out.set(x, y, sum/9)
		}
	}

	return out
}

// blockAverage downsamples the plane by averaging non-overlapping blocks of
// the given edge length, dropping any remainder rows and columns. Planes
// smaller than one block are returned unchanged.
func blockAverage(p *plane, block int) *plane {

	outW := p.width / block
	outH := p.height / block
	if outW == 0 || outH == 0 {
		return p
	}

	out := newPlane(outW, outH)
	norm := float32(block * block)
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			var sum float32
			for dy := 0; dy < block; dy++ {
				for dx := 0; dx < block; dx++ {
					sum += p.at(x*block+dx, y*block+dy)
				}
			}
			out.set(x, y, sum/norm)
		}
	}

	return out
}

func (p *plane) toImage() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, p.width, p.height))
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			out.SetGray(x, y, grayPixel(p.at(x, y)))
		}
	}
	return out
}

func fromImage(img *image.Gray) *plane {
	bounds := img.Bounds()
	p := newPlane(bounds.Dx(), bounds.Dy())
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			p.set(x, y, float32(img.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y))
		}
	}
	return p
}

func resizeBilinear(p *plane, width int, height int) *plane {
	src := p.toImage()
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return fromImage(dst)
}

func resizeNearest(p *plane, width int, height int) *plane {
	src := p.toImage()
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return fromImage(dst)
}

// median returns the median of the given values, averaging the two middle
// values for even counts.
func median(values []float32) float32 {

	sorted := make([]float32, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func grayPixel(v float32) color.Gray {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return color.Gray{Y: uint8(v)}
}

func clamp(v int, lo int, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
