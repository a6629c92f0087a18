// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package model

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Input dimensions and normalization constants shared by the built-in
// classifiers. Both models were trained on ImageNet-normalized 224x224
// crops; the mean/std triples are the standard ImageNet statistics.
const (
	InputSize = 224
	channels  = 3
)

var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// Preprocessor converts decoded images into normalized CHW tensors.
// The zero value is not usable; construct with NewPreprocessor.
type Preprocessor struct {
	size int
}

// NewPreprocessor creates a preprocessor producing InputSize x InputSize
// tensors.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{size: InputSize}
}

// Preprocess resizes the image to the model input size with Catmull-Rom
// resampling and normalizes each channel with ImageNet statistics,
// returning a [3, size, size] CHW tensor.
//
// Resampling quality matters here: nearest-neighbor resizing introduces
// aliasing artifacts that shift classifier probabilities on borderline
// inputs.
func (p *Preprocessor) Preprocess(img image.Image) Tensor {
	resized := image.NewRGBA(image.Rect(0, 0, p.size, p.size))
	xdraw.CatmullRom.Scale(resized, resized.Bounds(), img, img.Bounds(), xdraw.Over, nil)

	plane := p.size * p.size
	data := make([]float32, channels*plane)

	for y := 0; y < p.size; y++ {
		for x := 0; x < p.size; x++ {
			i := resized.PixOffset(x, y)
			// Pix layout is RGBA; alpha is discarded.
			r := float32(resized.Pix[i]) / 255.0
			g := float32(resized.Pix[i+1]) / 255.0
			b := float32(resized.Pix[i+2]) / 255.0

			idx := y*p.size + x
			data[idx] = (r - imagenetMean[0]) / imagenetStd[0]
			data[plane+idx] = (g - imagenetMean[1]) / imagenetStd[1]
			data[2*plane+idx] = (b - imagenetMean[2]) / imagenetStd[2]
		}
	}

	return Tensor{
		Shape: []int{channels, p.size, p.size},
		Data:  data,
	}
}
