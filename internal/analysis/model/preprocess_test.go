// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package model

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestPreprocess_Shape(t *testing.T) {
	pre := NewPreprocessor()

	tests := []struct {
		name string
		w, h int
	}{
		{name: "already input size", w: 224, h: 224},
		{name: "downscale", w: 1024, h: 768},
		{name: "upscale", w: 60, h: 80},
		{name: "extreme aspect", w: 1000, h: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tensor := pre.Preprocess(uniformImage(tt.w, tt.h, color.RGBA{128, 128, 128, 255}))

			wantShape := []int{3, InputSize, InputSize}
			if len(tensor.Shape) != 3 || tensor.Shape[0] != wantShape[0] || tensor.Shape[1] != wantShape[1] || tensor.Shape[2] != wantShape[2] {
				t.Errorf("Preprocess() shape = %v, want %v", tensor.Shape, wantShape)
			}
			if got, want := len(tensor.Data), 3*InputSize*InputSize; got != want {
				t.Errorf("Preprocess() data length = %d, want %d", got, want)
			}
			if err := tensor.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestPreprocess_Normalization(t *testing.T) {
	// A uniform mid-gray image (128/255 per channel) must produce the
	// ImageNet-normalized constant everywhere in each channel plane.
	pre := NewPreprocessor()
	tensor := pre.Preprocess(uniformImage(224, 224, color.RGBA{128, 128, 128, 255}))

	v := float32(128) / 255.0
	want := [3]float32{
		(v - imagenetMean[0]) / imagenetStd[0],
		(v - imagenetMean[1]) / imagenetStd[1],
		(v - imagenetMean[2]) / imagenetStd[2],
	}

	plane := InputSize * InputSize
	for ch := 0; ch < 3; ch++ {
		for _, idx := range []int{0, plane / 2, plane - 1} {
			got := tensor.Data[ch*plane+idx]
			if math.Abs(float64(got-want[ch])) > 1e-4 {
				t.Fatalf("channel %d sample %d = %v, want %v", ch, idx, got, want[ch])
			}
		}
	}
}

func TestPreprocess_ChannelSeparation(t *testing.T) {
	// A pure red image must normalize R high and G/B to the zero-value
	// normalized constants, in CHW order.
	pre := NewPreprocessor()
	tensor := pre.Preprocess(uniformImage(100, 100, color.RGBA{255, 0, 0, 255}))

	plane := InputSize * InputSize
	r := tensor.Data[0]
	g := tensor.Data[plane]
	b := tensor.Data[2*plane]

	wantR := (1.0 - imagenetMean[0]) / imagenetStd[0]
	wantG := (0.0 - imagenetMean[1]) / imagenetStd[1]
	wantB := (0.0 - imagenetMean[2]) / imagenetStd[2]

	if math.Abs(float64(r-wantR)) > 1e-4 {
		t.Errorf("red channel = %v, want %v", r, wantR)
	}
	if math.Abs(float64(g-wantG)) > 1e-4 {
		t.Errorf("green channel = %v, want %v", g, wantG)
	}
	if math.Abs(float64(b-wantB)) > 1e-4 {
		t.Errorf("blue channel = %v, want %v", b, wantB)
	}
}

func TestTensor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tensor  Tensor
		wantErr bool
	}{
		{
			name:   "consistent",
			tensor: Tensor{Shape: []int{3, 2, 2}, Data: make([]float32, 12)},
		},
		{
			name:    "length mismatch",
			tensor:  Tensor{Shape: []int{3, 2, 2}, Data: make([]float32, 11)},
			wantErr: true,
		},
		{
			name:    "zero dimension",
			tensor:  Tensor{Shape: []int{3, 0, 2}, Data: nil},
			wantErr: true,
		},
		{
			name:    "empty shape with data",
			tensor:  Tensor{Shape: nil, Data: make([]float32, 1)},
			wantErr: true,
		},
		{
			name:   "empty tensor",
			tensor: Tensor{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tensor.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func BenchmarkPreprocess(b *testing.B) {
	pre := NewPreprocessor()
	img := uniformImage(1024, 768, color.RGBA{90, 120, 150, 255})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pre.Preprocess(img)
	}
}
