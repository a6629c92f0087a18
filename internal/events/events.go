// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package events

import (
	"context"
	"time"
)

// DefaultTopic is the subject detection lifecycle events are published to
// when the configuration does not name one.
const DefaultTopic = "detections.completed"

// DetectionCompleted is emitted after a verdict has been persisted. It
// carries the summary fields a downstream consumer needs to decide whether
// to fetch the full forensic report.
type DetectionCompleted struct {
	ResultRef        string    `json:"result_ref"`
	UploadRef        string    `json:"upload_ref"`
	IsAIGenerated    bool      `json:"is_ai_generated"`
	Confidence       float64   `json:"confidence_score"`
	AlgorithmVersion string    `json:"algorithm_version"`
	CreatedAt        time.Time `json:"created_at"`
}

// Publisher delivers detection lifecycle events to external consumers.
// Publication is fire-and-report: a failed publish is logged and counted
// but never invalidates the persisted result.
type Publisher interface {
	PublishDetectionCompleted(ctx context.Context, event DetectionCompleted) error
	Close() error
}

// NopPublisher discards all events. It is the publisher wired when event
// publication is disabled or the binary was built without NATS support.
type NopPublisher struct{}

// PublishDetectionCompleted implements Publisher.
func (NopPublisher) PublishDetectionCompleted(context.Context, DetectionCompleted) error {
	return nil
}

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// Compile-time interface assertion
var _ Publisher = NopPublisher{}
