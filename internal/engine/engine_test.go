// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package engine

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/skygate-forensics/skygate/internal/analysis"
	"github.com/skygate-forensics/skygate/internal/config"
)

// stubAnalyzer is a scriptable analyzer for orchestration tests.
type stubAnalyzer struct {
	name    string
	methods []analysis.Method
	fn      func(ctx context.Context, in analysis.Input) []analysis.MethodOutcome
}

func (s *stubAnalyzer) Name() string               { return s.name }
func (s *stubAnalyzer) Methods() []analysis.Method { return s.methods }

func (s *stubAnalyzer) Analyze(ctx context.Context, in analysis.Input) []analysis.MethodOutcome {
	return s.fn(ctx, in)
}

// scoreAnalyzer emits one ok outcome with a fixed score.
func scoreAnalyzer(m analysis.Method, score float64) *stubAnalyzer {
	return &stubAnalyzer{
		name:    "stub-" + string(m),
		methods: []analysis.Method{m},
		fn: func(ctx context.Context, in analysis.Input) []analysis.MethodOutcome {
			return []analysis.MethodOutcome{analysis.Succeeded(m, score, "", nil, time.Millisecond)}
		},
	}
}

// failAnalyzer emits one failed outcome.
func failAnalyzer(m analysis.Method, reason string) *stubAnalyzer {
	return &stubAnalyzer{
		name:    "fail-" + string(m),
		methods: []analysis.Method{m},
		fn: func(ctx context.Context, in analysis.Input) []analysis.MethodOutcome {
			return []analysis.MethodOutcome{analysis.Failed(m, reason, time.Millisecond)}
		},
	}
}

func testEngineConfig() *config.EngineConfig {
	return &config.EngineConfig{
		Parallelism:   4,
		MethodTimeout: time.Second,
		RunTimeout:    2 * time.Second,
		Threshold:     0.5,
		TopFactors:    5,
	}
}

func TestNew_Defaults(t *testing.T) {
	e := New(nil, analysis.NewWeightTable("builtin", nil))

	if e.parallelism != DefaultParallelism {
		t.Errorf("parallelism = %d, want %d", e.parallelism, DefaultParallelism)
	}
	if e.methodTimeout != DefaultMethodTimeout {
		t.Errorf("methodTimeout = %v, want %v", e.methodTimeout, DefaultMethodTimeout)
	}
	if e.runTimeout != DefaultRunTimeout {
		t.Errorf("runTimeout = %v, want %v", e.runTimeout, DefaultRunTimeout)
	}
}

func TestNew_ZeroFieldsKeepDefaults(t *testing.T) {
	e := New(&config.EngineConfig{Parallelism: 2}, analysis.NewWeightTable("builtin", nil))

	if e.parallelism != 2 {
		t.Errorf("parallelism = %d, want 2", e.parallelism)
	}
	if e.runTimeout != DefaultRunTimeout {
		t.Errorf("runTimeout = %v, want default %v", e.runTimeout, DefaultRunTimeout)
	}
}

func TestRegister(t *testing.T) {
	e := New(testEngineConfig(), analysis.NewWeightTable("builtin", nil))

	if err := e.Register(scoreAnalyzer(analysis.MethodVit, 0.9)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := e.Register(scoreAnalyzer(analysis.MethodELA, 0.4)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	wantNames := []string{"stub-vit", "stub-ela"}
	if got := e.Analyzers(); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("Analyzers() = %v, want %v", got, wantNames)
	}

	wantMethods := []analysis.Method{analysis.MethodELA, analysis.MethodVit}
	if got := e.Methods(); !reflect.DeepEqual(got, wantMethods) {
		t.Errorf("Methods() = %v, want %v", got, wantMethods)
	}
}

func TestRegister_NilAnalyzer(t *testing.T) {
	e := New(testEngineConfig(), analysis.NewWeightTable("builtin", nil))
	if err := e.Register(nil); err == nil {
		t.Error("Register(nil) error = nil, want error")
	}
}

func TestRegister_NoMethods(t *testing.T) {
	e := New(testEngineConfig(), analysis.NewWeightTable("builtin", nil))
	a := &stubAnalyzer{name: "empty", methods: nil}
	if err := e.Register(a); err == nil {
		t.Error("Register() with no methods error = nil, want error")
	}
}

func TestRegister_DuplicateMethod(t *testing.T) {
	e := New(testEngineConfig(), analysis.NewWeightTable("builtin", nil))

	if err := e.Register(scoreAnalyzer(analysis.MethodVit, 0.9)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	err := e.Register(scoreAnalyzer(analysis.MethodVit, 0.1))
	if err == nil {
		t.Fatal("Register() duplicate method error = nil, want error")
	}
	if !strings.Contains(err.Error(), "already registered") {
		t.Errorf("Register() error = %v, want duplicate message", err)
	}
}
