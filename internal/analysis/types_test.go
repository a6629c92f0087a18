// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package analysis

import (
	"strings"
	"testing"
	"time"
)

func TestSucceededClampsScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{"in range", 0.42, 0.42},
		{"below zero", -0.1, 0},
		{"above one", 1.7, 1},
		{"exact zero", 0, 0},
		{"exact one", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Succeeded(MethodPRNU, tt.score, "x", nil, time.Millisecond)
			if out.Status != StatusOK {
				t.Fatalf("expected status %s, got %s", StatusOK, out.Status)
			}
			if out.Score != tt.want {
				t.Errorf("expected score %v, got %v", tt.want, out.Score)
			}
		})
	}
}

func TestSucceededUnserializableDetailDegradesToFailed(t *testing.T) {
	out := Succeeded(MethodELA, 0.5, "x", func() {}, 0)
	if out.Status != StatusFailed {
		t.Fatalf("expected status %s, got %s", StatusFailed, out.Status)
	}
	if !strings.Contains(out.Reason, "encode detail") {
		t.Errorf("expected encode detail reason, got %q", out.Reason)
	}
}

func TestFailedAndSkippedCarryReasons(t *testing.T) {
	f := Failed(MethodVit, "model unavailable", time.Second)
	if f.Usable() {
		t.Error("failed outcome must not be usable")
	}
	if f.Reason != "model unavailable" {
		t.Errorf("unexpected reason %q", f.Reason)
	}

	s := Skipped(MethodELA, "lossless source", 0)
	if s.Usable() {
		t.Error("skipped outcome must not be usable")
	}
	if s.Status != StatusSkipped {
		t.Errorf("expected status %s, got %s", StatusSkipped, s.Status)
	}
}

func TestWeightTableDefaultsAndClamping(t *testing.T) {
	table := NewWeightTable("test", map[Method]float64{
		MethodVit:  2.0,
		MethodELA:  -0.5,
		MethodPRNU: 0,
	})

	if got := table.Weight(MethodVit); got != 2.0 {
		t.Errorf("expected registered weight 2.0, got %v", got)
	}
	if got := table.Weight(MethodELA); got != 0 {
		t.Errorf("expected negative weight clamped to 0, got %v", got)
	}
	if got := table.Weight(MethodMetadata); got != DefaultWeight {
		t.Errorf("expected default weight %v for unregistered method, got %v", DefaultWeight, got)
	}
	if table.Registered(MethodMetadata) {
		t.Error("metadata should not be registered")
	}
	if !table.Registered(MethodPRNU) {
		t.Error("zero-weight method should still be registered")
	}
	if got := table.Version(); got != "test" {
		t.Errorf("expected version test, got %q", got)
	}
}

func TestWeightTableIsolatedFromSourceMap(t *testing.T) {
	src := map[Method]float64{MethodVit: 1.0}
	table := NewWeightTable("v", src)
	src[MethodVit] = 9.0

	if got := table.Weight(MethodVit); got != 1.0 {
		t.Errorf("table must copy weights at construction, got %v", got)
	}
}

func TestWeightTableWithVersion(t *testing.T) {
	table := NewWeightTable("a1b2c3d4", map[Method]float64{MethodVit: 0.15})
	stamped := table.WithVersion("a1b2c3d4+resnet_nodown@1.0,vit@1.0")

	if got := stamped.Version(); got != "a1b2c3d4+resnet_nodown@1.0,vit@1.0" {
		t.Errorf("unexpected stamped version %q", got)
	}
	if got := table.Version(); got != "a1b2c3d4" {
		t.Errorf("original table version changed to %q", got)
	}
	if got := stamped.Weight(MethodVit); got != 0.15 {
		t.Errorf("stamped table lost weights, got %v", got)
	}
}

func TestWeightTableMethodsSorted(t *testing.T) {
	table := NewWeightTable("v", DefaultWeights())
	methods := table.Methods()
	for i := 1; i < len(methods); i++ {
		if methods[i-1] >= methods[i] {
			t.Fatalf("methods not in ascending order: %v", methods)
		}
	}
	if len(methods) != len(KnownMethods()) {
		t.Errorf("expected %d methods, got %d", len(KnownMethods()), len(methods))
	}
}

func TestDefaultWeightsCoverAllKnownMethods(t *testing.T) {
	weights := DefaultWeights()
	for _, m := range KnownMethods() {
		if _, ok := weights[m]; !ok {
			t.Errorf("method %s missing from default weights", m)
		}
	}
}

func TestDisplayNames(t *testing.T) {
	tests := []struct {
		method Method
		want   string
	}{
		{MethodVit, "Vision Transformer"},
		{MethodResNetNoDown, "ResNet50 NoDown"},
		{MethodMetadata, "Metadata Forensics"},
		{Method("custom_probe"), "custom_probe"},
	}

	for _, tt := range tests {
		if got := tt.method.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%s) = %q, want %q", tt.method, got, tt.want)
		}
	}
}
