// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package pixel

import (
	"context"
	"image/color"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/skygate-forensics/skygate/internal/analysis"
)

func TestTextureFlatImageSuspicious(t *testing.T) {
	in := analysis.Input{
		UploadRef: "tex-flat",
		Filename:  "flat.png",
		Data:      encodePNG(t, flatImage(128, 128, color.RGBA{200, 180, 160, 255})),
	}

	out := single(t, NewTexture(TextureConfig{}).Analyze(context.Background(), in))
	if out.Method != analysis.MethodTexture {
		t.Fatalf("expected method %s, got %s", analysis.MethodTexture, out.Method)
	}
	if out.Status != analysis.StatusOK {
		t.Fatalf("expected ok, got %s (%s)", out.Status, out.Reason)
	}
	if out.Score <= 0.99 {
		t.Errorf("expected maximal smoothness for flat image, got %v", out.Score)
	}
	if !strings.Contains(out.Analysis, "unnaturally uniform") {
		t.Errorf("unexpected analysis text %q", out.Analysis)
	}

	var d textureDetail
	if err := json.Unmarshal(out.Detail, &d); err != nil {
		t.Fatalf("unmarshal detail: %v", err)
	}
	if !d.Suspicious {
		t.Error("expected flat image to be suspicious")
	}
	if d.EdgeDensity != 0 {
		t.Errorf("expected zero edge density, got %v", d.EdgeDensity)
	}
	if d.TileCount != 16 {
		t.Errorf("expected 16 tiles for 128x128/32, got %d", d.TileCount)
	}
}

func TestTextureNoiseImageNatural(t *testing.T) {
	in := analysis.Input{
		UploadRef: "tex-noise",
		Filename:  "noise.png",
		Data:      encodePNG(t, noiseImage(128, 128, 42)),
	}

	out := single(t, NewTexture(TextureConfig{}).Analyze(context.Background(), in))
	if out.Status != analysis.StatusOK {
		t.Fatalf("expected ok, got %s (%s)", out.Status, out.Reason)
	}
	if out.Score >= 0.5 {
		t.Errorf("expected low smoothness for noisy image, got %v", out.Score)
	}
	if !strings.Contains(out.Analysis, "natural texture variation") {
		t.Errorf("unexpected analysis text %q", out.Analysis)
	}

	var d textureDetail
	if err := json.Unmarshal(out.Detail, &d); err != nil {
		t.Fatalf("unmarshal detail: %v", err)
	}
	if d.Suspicious {
		t.Errorf("expected natural verdict, smoothness %v", d.Smoothness)
	}
	if d.EdgeDensity < 0.5 {
		t.Errorf("expected dense gradients in noise, got edge density %v", d.EdgeDensity)
	}
	if d.GradientMean <= 0.4 {
		t.Errorf("expected strong mean gradient in noise, got %v", d.GradientMean)
	}
}

func TestTextureSmallImageSkipped(t *testing.T) {
	in := analysis.Input{
		UploadRef: "tex-small",
		Data:      encodePNG(t, flatImage(40, 40, color.RGBA{80, 80, 80, 255})),
	}

	out := single(t, NewTexture(TextureConfig{}).Analyze(context.Background(), in))
	if out.Status != analysis.StatusSkipped {
		t.Fatalf("expected skipped, got %s", out.Status)
	}
	if !strings.Contains(out.Reason, "below 64px minimum") {
		t.Errorf("unexpected reason %q", out.Reason)
	}
}

func TestTextureConfigDefaults(t *testing.T) {
	a := NewTexture(TextureConfig{SmoothThreshold: 0.8})
	if a.cfg.SmoothThreshold != 0.8 {
		t.Errorf("expected explicit threshold kept, got %v", a.cfg.SmoothThreshold)
	}
	if a.cfg.HistBins != 10 {
		t.Errorf("expected default 10 histogram bins, got %d", a.cfg.HistBins)
	}
	if a.cfg.GradientScale != 0.4 {
		t.Errorf("expected default gradient scale 0.4, got %v", a.cfg.GradientScale)
	}
}
