// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package model

import (
	"context"

	"github.com/skygate-forensics/skygate/internal/analysis"
)

// RemoteScorer exposes one sidecar-served model through the Scorer
// interface. The heavy lifting (rate limiting, breaker, retries) lives in
// the shared Client; a RemoteScorer is just the per-model identity.
type RemoteScorer struct {
	id      string
	display string
	version string
	client  *Client
}

// NewRemoteScorer creates a scorer for the given sidecar model id.
func NewRemoteScorer(client *Client, id, display, version string) *RemoteScorer {
	return &RemoteScorer{
		id:      id,
		display: display,
		version: version,
		client:  client,
	}
}

// ID returns the stable model identifier.
func (s *RemoteScorer) ID() string { return s.id }

// DisplayName returns the human-readable model name.
func (s *RemoteScorer) DisplayName() string { return s.display }

// Version returns the deployed model build identifier.
func (s *RemoteScorer) Version() string { return s.version }

// Score invokes the sidecar model.
func (s *RemoteScorer) Score(ctx context.Context, t Tensor) (float64, error) {
	return s.client.Score(ctx, s.id, t)
}

// BuiltinScorers returns remote scorers for the two shipped classifiers:
// the patch-based vision transformer and the ResNet50 NoDown GAN-artifact
// detector, both served by the inference sidecar.
func BuiltinScorers(client *Client, version string) []Scorer {
	return []Scorer{
		NewRemoteScorer(client, string(analysis.MethodVit), analysis.MethodVit.DisplayName(), version),
		NewRemoteScorer(client, string(analysis.MethodResNetNoDown), analysis.MethodResNetNoDown.DisplayName(), version),
	}
}
