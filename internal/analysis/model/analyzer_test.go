// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package model

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/skygate-forensics/skygate/internal/analysis"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testInput(t *testing.T) analysis.Input {
	t.Helper()
	return analysis.Input{
		UploadRef: "m-1",
		Filename:  "photo.png",
		MIME:      "image/png",
		Data:      encodePNG(t, uniformImage(64, 64, color.RGBA{100, 140, 180, 255})),
	}
}

func TestModelAnalyzer(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&stubScorer{id: "vit", display: "Vision Transformer", version: "1.0", p: 0.92}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	a := NewModelAnalyzer(reg, "vit")
	if a.Name() != "model-vit" {
		t.Errorf("Name() = %q, want model-vit", a.Name())
	}
	if methods := a.Methods(); len(methods) != 1 || methods[0] != analysis.MethodVit {
		t.Errorf("Methods() = %v, want [vit]", methods)
	}

	outs := a.Analyze(context.Background(), testInput(t))
	if len(outs) != 1 {
		t.Fatalf("Analyze() outcome count = %d, want 1", len(outs))
	}

	out := outs[0]
	if out.Status != analysis.StatusOK {
		t.Fatalf("status = %s (reason %q), want ok", out.Status, out.Reason)
	}
	if out.Score != 0.92 {
		t.Errorf("score = %v, want 0.92", out.Score)
	}
	if !strings.Contains(out.Analysis, "Vision Transformer") {
		t.Errorf("analysis text = %q, want model display name", out.Analysis)
	}
	if !strings.Contains(out.Analysis, "0.920") {
		t.Errorf("analysis text = %q, want probability", out.Analysis)
	}

	var detail modelDetail
	if err := json.Unmarshal(out.Detail, &detail); err != nil {
		t.Fatalf("unmarshal detail: %v", err)
	}
	if detail.Model != "vit" || detail.Version != "1.0" {
		t.Errorf("detail identity = %s@%s, want vit@1.0", detail.Model, detail.Version)
	}
	if len(detail.InputShape) != 3 || detail.InputShape[1] != InputSize {
		t.Errorf("detail input shape = %v, want [3 %d %d]", detail.InputShape, InputSize, InputSize)
	}
	if detail.SourceFormat != "png" {
		t.Errorf("detail source format = %q, want png", detail.SourceFormat)
	}
}

func TestModelAnalyzer_ScorerFailure(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&stubScorer{id: "vit", version: "1.0", err: errors.New("connection refused")}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	out := NewModelAnalyzer(reg, "vit").Analyze(context.Background(), testInput(t))[0]
	if out.Status != analysis.StatusFailed {
		t.Fatalf("status = %s, want failed", out.Status)
	}
	if !strings.Contains(out.Reason, "connection refused") {
		t.Errorf("reason = %q, want inference error", out.Reason)
	}
}

func TestModelAnalyzer_UnknownContainer(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newStub("vit", 0.9)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	in := analysis.Input{UploadRef: "m-2", Filename: "doc.pdf", Data: []byte("%PDF-1.7 not an image")}
	out := NewModelAnalyzer(reg, "vit").Analyze(context.Background(), in)[0]
	if out.Status != analysis.StatusSkipped {
		t.Fatalf("status = %s, want skipped", out.Status)
	}
	if !strings.Contains(out.Reason, "unsupported container") {
		t.Errorf("reason = %q, want unsupported container", out.Reason)
	}
}

func TestModelAnalyzer_CorruptImage(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newStub("vit", 0.9)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	full := encodePNG(t, uniformImage(64, 64, color.RGBA{10, 20, 30, 255}))
	in := analysis.Input{UploadRef: "m-3", Filename: "cut.png", Data: full[:40]}

	out := NewModelAnalyzer(reg, "vit").Analyze(context.Background(), in)[0]
	if out.Status != analysis.StatusFailed {
		t.Fatalf("status = %s, want failed", out.Status)
	}
}

func TestModelAnalyzer_UnregisteredID(t *testing.T) {
	out := NewModelAnalyzer(NewRegistry(), "ghost").Analyze(context.Background(), testInput(t))[0]
	if out.Status != analysis.StatusFailed {
		t.Fatalf("status = %s, want failed", out.Status)
	}
	if !strings.Contains(out.Reason, "unknown model") {
		t.Errorf("reason = %q, want unknown model", out.Reason)
	}
}

func TestModelAnalyzer_CancelledContext(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newStub("vit", 0.9)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := NewModelAnalyzer(reg, "vit").Analyze(ctx, testInput(t))[0]
	if out.Status != analysis.StatusFailed {
		t.Fatalf("status = %s, want failed on cancelled context", out.Status)
	}
}

func TestAnalyzers_OnePerModel(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []string{"vit", "resnet_nodown"} {
		if err := reg.Register(newStub(id, 0.5)); err != nil {
			t.Fatalf("Register(%q) error = %v", id, err)
		}
	}

	analyzers := Analyzers(reg)
	if len(analyzers) != 2 {
		t.Fatalf("Analyzers() count = %d, want 2", len(analyzers))
	}
	if analyzers[0].Name() != "model-resnet_nodown" {
		t.Errorf("analyzers[0].Name() = %q, want model-resnet_nodown", analyzers[0].Name())
	}
	if analyzers[1].Name() != "model-vit" {
		t.Errorf("analyzers[1].Name() = %q, want model-vit", analyzers[1].Name())
	}
}
