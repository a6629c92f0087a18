// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package ingest

import (
	"context"
	"errors"

	"github.com/skygate-forensics/skygate/internal/analysis"
	"github.com/skygate-forensics/skygate/internal/events"
	"github.com/skygate-forensics/skygate/internal/logging"
	"github.com/skygate-forensics/skygate/internal/store"
)

// VerdictRunner is the slice of the detection engine the pipeline needs.
type VerdictRunner interface {
	RunDetection(ctx context.Context, in analysis.Input) (*analysis.Verdict, error)
}

// Persister is the slice of the result assembler the pipeline needs.
type Persister interface {
	Persist(ctx context.Context, verdict *analysis.Verdict, in analysis.Input) (*store.Summary, error)
}

// Detector runs one artifact through detection and persistence. Intake
// paths (spool poller, one-shot CLI) depend on this rather than on the
// concrete pipeline.
type Detector interface {
	Detect(ctx context.Context, in analysis.Input) (*store.Summary, error)
}

// Pipeline chains the detection engine, the result assembler, and the
// completion event publisher into the single call intake paths make.
type Pipeline struct {
	engine    VerdictRunner
	persister Persister
	publisher events.Publisher
}

// NewPipeline wires a pipeline. A nil publisher is replaced with the no-op
// publisher so callers never have to branch on event delivery being off.
func NewPipeline(engine VerdictRunner, persister Persister, publisher events.Publisher) (*Pipeline, error) {
	if engine == nil {
		return nil, errors.New("detection engine cannot be nil")
	}
	if persister == nil {
		return nil, errors.New("result persister cannot be nil")
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Pipeline{engine: engine, persister: persister, publisher: publisher}, nil
}

// Detect runs detection on in and persists the verdict.
//
// A non-nil summary together with a non-nil error means the relational
// summary committed but the detail document write failed: the result exists
// and is readable in degraded form, and the error is advisory. Callers that
// only care whether a result was recorded should branch on the summary.
func (p *Pipeline) Detect(ctx context.Context, in analysis.Input) (*store.Summary, error) {
	verdict, err := p.engine.RunDetection(ctx, in)
	if err != nil {
		return nil, err
	}

	summary, err := p.persister.Persist(ctx, verdict, in)
	if summary == nil {
		return nil, err
	}

	p.publishCompleted(ctx, summary)
	return summary, err
}

// publishCompleted is fire-and-report: delivery failures are logged and
// counted by the publisher, never surfaced to the intake path.
func (p *Pipeline) publishCompleted(ctx context.Context, summary *store.Summary) {
	event := events.DetectionCompleted{
		ResultRef:        summary.ResultRef,
		UploadRef:        summary.UploadRef,
		IsAIGenerated:    summary.IsAIGenerated,
		Confidence:       summary.Confidence,
		AlgorithmVersion: summary.AlgorithmVersion,
		CreatedAt:        summary.CreatedAt,
	}
	if err := p.publisher.PublishDetectionCompleted(ctx, event); err != nil {
		logging.Warn().
			Err(err).
			Str("result_ref", summary.ResultRef).
			Msg("Failed to publish detection completion event")
	}
}

// Compile-time interface check.
var _ Detector = (*Pipeline)(nil)
