// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package model

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by the registry and scorers.
var (
	// ErrUnknownModel is returned when invoking a model id that was
	// never registered.
	ErrUnknownModel = errors.New("unknown model id")

	// ErrDuplicateModel is returned when registering a model id twice.
	ErrDuplicateModel = errors.New("model id already registered")
)

// Tensor is a preprocessed image in CHW layout (channels, height, width),
// float32, ready for classifier input. Data length must equal the product
// of Shape. Tensors are read-only once built; concurrent scorers may share
// one tensor without copying.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// Elements returns the expected data length for the tensor's shape.
func (t Tensor) Elements() int {
	if len(t.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Validate checks shape/data consistency.
func (t Tensor) Validate() error {
	for _, d := range t.Shape {
		if d <= 0 {
			return fmt.Errorf("tensor shape dimension %d is not positive", d)
		}
	}
	if got, want := len(t.Data), t.Elements(); got != want {
		return fmt.Errorf("tensor data length %d does not match shape (want %d)", got, want)
	}
	return nil
}

// Scorer is one registered classification model. A scorer is a pure
// function from a preprocessed tensor to the probability the image is
// AI-generated; it holds no per-invocation mutable state and is safe for
// concurrent use.
//
// In-process scorers and remote sidecar models implement the same
// interface, so the registry and the orchestrator never distinguish them.
type Scorer interface {
	// ID is the stable model identifier, matching the detection method
	// name the scorer emits (e.g. "vit", "resnet_nodown").
	ID() string

	// DisplayName is the human-readable model name for factor text.
	DisplayName() string

	// Version identifies the deployed model build for audit stamps.
	Version() string

	// Score returns the probability in [0,1] that the input is
	// AI-generated.
	Score(ctx context.Context, t Tensor) (float64, error)
}
