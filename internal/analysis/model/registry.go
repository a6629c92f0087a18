// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package model

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/skygate-forensics/skygate/internal/logging"
)

// Registry holds the fixed set of classification models for an engine
// instance. Models are registered during startup; after that the registry
// is effectively read-only and all methods are safe for concurrent use.
//
// Registration is pluggable: adding a model touches only the registry,
// never the aggregation logic.
type Registry struct {
	mu      sync.RWMutex
	scorers map[string]Scorer
}

// NewRegistry creates an empty model registry.
func NewRegistry() *Registry {
	return &Registry{
		scorers: make(map[string]Scorer),
	}
}

// Register adds a scorer under its ID. Registering the same id twice is
// a configuration error and fails rather than silently replacing.
func (r *Registry) Register(s Scorer) error {
	if s == nil {
		return fmt.Errorf("register model: scorer is nil")
	}
	id := s.ID()
	if id == "" {
		return fmt.Errorf("register model: empty model id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scorers[id]; exists {
		return fmt.Errorf("register model %q: %w", id, ErrDuplicateModel)
	}
	r.scorers[id] = s

	logging.Info().Str("model", id).Str("version", s.Version()).Msg("Model registered")
	return nil
}

// Models returns the registered model ids in ascending order.
func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.scorers))
	for id := range r.scorers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scorers)
}

// Lookup returns the scorer registered under id.
func (r *Registry) Lookup(id string) (Scorer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scorers[id]
	return s, ok
}

// Invoke runs the model registered under id against the tensor.
// Unknown ids return ErrUnknownModel.
func (r *Registry) Invoke(ctx context.Context, id string, t Tensor) (float64, error) {
	s, ok := r.Lookup(id)
	if !ok {
		return 0, fmt.Errorf("invoke model %q: %w", id, ErrUnknownModel)
	}
	return s.Score(ctx, t)
}

// Version returns the composed registry version stamp, one "id@version"
// segment per model in ascending id order (e.g. "resnet_nodown@1.0,vit@1.0").
// The stamp is part of every verdict's algorithm_version so audits can
// reproduce which model builds produced a historical result.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	segments := make([]string, 0, len(r.scorers))
	for id, s := range r.scorers {
		segments = append(segments, id+"@"+s.Version())
	}
	sort.Strings(segments)
	return strings.Join(segments, ",")
}
