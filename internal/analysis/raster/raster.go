// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

// Package raster provides the shared pixel-plane primitives the
// forensic analyzers and model preprocessors operate on: decoding,
// luminance extraction, separable blur, Sobel gradients, and tiling.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	// Register the supported still-image containers with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/skygate-forensics/skygate/internal/analysis"
)

// Decode parses the artifact bytes into an image. Unknown containers
// (video, documents) surface analysis.ErrUnsupportedFormat so callers
// can skip rather than fail; a recognized-but-corrupt stream returns the
// codec's own error and should be treated as a failure.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("%w: %s", analysis.ErrUnsupportedFormat, err)
		}
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Plane is a single-channel float64 raster in row-major order with
// values normalized to [0,1]. All forensic signal math runs on planes.
type Plane struct {
	W, H int
	Pix  []float64
}

// NewPlane allocates a zeroed plane.
func NewPlane(w, h int) *Plane {
	return &Plane{W: w, H: h, Pix: make([]float64, w*h)}
}

// At returns the value at (x, y). Callers must stay in bounds.
func (p *Plane) At(x, y int) float64 {
	return p.Pix[y*p.W+x]
}

// Set stores v at (x, y). Callers must stay in bounds.
func (p *Plane) Set(x, y int, v float64) {
	p.Pix[y*p.W+x] = v
}

// Luminance converts an image to a normalized luma plane using the
// Rec. 601 weights.
func Luminance(img image.Image) *Plane {
	b := img.Bounds()
	p := NewPlane(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			luma := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 65535.0
			p.Set(x-b.Min.X, y-b.Min.Y, luma)
		}
	}
	return p
}

// BoxBlur returns a new plane smoothed with a separable box filter of
// the given radius. Two passes (horizontal then vertical) give the
// low-frequency estimate the noise-residual extraction subtracts.
func BoxBlur(p *Plane, radius int) *Plane {
	if radius < 1 {
		radius = 1
	}
	tmp := NewPlane(p.W, p.H)
	out := NewPlane(p.W, p.H)

	// Horizontal pass.
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			var sum float64
			var n int
			for dx := -radius; dx <= radius; dx++ {
				xx := x + dx
				if xx < 0 || xx >= p.W {
					continue
				}
				sum += p.At(xx, y)
				n++
			}
			tmp.Set(x, y, sum/float64(n))
		}
	}

	// Vertical pass.
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			var sum float64
			var n int
			for dy := -radius; dy <= radius; dy++ {
				yy := y + dy
				if yy < 0 || yy >= p.H {
					continue
				}
				sum += tmp.At(x, yy)
				n++
			}
			out.Set(x, y, sum/float64(n))
		}
	}
	return out
}

// Subtract returns a-b per pixel. Panics if dimensions differ; callers
// always derive both planes from the same image.
func Subtract(a, b *Plane) *Plane {
	if a.W != b.W || a.H != b.H {
		panic("raster: subtract dimension mismatch")
	}
	out := NewPlane(a.W, a.H)
	for i := range a.Pix {
		out.Pix[i] = a.Pix[i] - b.Pix[i]
	}
	return out
}

// SobelMagnitude returns the gradient magnitude plane using the 3x3
// Sobel operator. Border pixels are left at zero.
func SobelMagnitude(p *Plane) *Plane {
	out := NewPlane(p.W, p.H)
	for y := 1; y < p.H-1; y++ {
		for x := 1; x < p.W-1; x++ {
			gx := -p.At(x-1, y-1) + p.At(x+1, y-1) +
				-2*p.At(x-1, y) + 2*p.At(x+1, y) +
				-p.At(x-1, y+1) + p.At(x+1, y+1)
			gy := -p.At(x-1, y-1) - 2*p.At(x, y-1) - p.At(x+1, y-1) +
				p.At(x-1, y+1) + 2*p.At(x, y+1) + p.At(x+1, y+1)
			out.Set(x, y, math.Hypot(gx, gy))
		}
	}
	return out
}

// Tile is a rectangular region of a plane.
type Tile struct {
	X0, Y0, X1, Y1 int
}

// Tiles splits a w by h raster into non-overlapping size by size tiles.
// Partial edge tiles are dropped so every tile carries the same number
// of samples; callers must check for an empty result on small inputs.
func Tiles(w, h, size int) []Tile {
	if size < 1 {
		return nil
	}
	cols := w / size
	rows := h / size
	tiles := make([]Tile, 0, cols*rows)
	for ty := 0; ty < rows; ty++ {
		for tx := 0; tx < cols; tx++ {
			tiles = append(tiles, Tile{
				X0: tx * size,
				Y0: ty * size,
				X1: (tx + 1) * size,
				Y1: (ty + 1) * size,
			})
		}
	}
	return tiles
}

// Region copies the tile's samples out of the plane for statistics.
func (p *Plane) Region(t Tile) []float64 {
	out := make([]float64, 0, (t.X1-t.X0)*(t.Y1-t.Y0))
	for y := t.Y0; y < t.Y1; y++ {
		for x := t.X0; x < t.X1; x++ {
			out = append(out, p.At(x, y))
		}
	}
	return out
}
