// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package events

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestDetectionCompletedJSON(t *testing.T) {
	event := DetectionCompleted{
		ResultRef:        "4f7c2b6e-1111-2222-3333-444455556666",
		UploadRef:        "upload-42",
		IsAIGenerated:    true,
		Confidence:       0.7166666666666667,
		AlgorithmVersion: "1.0/aaaa1111",
		CreatedAt:        time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	wantKeys := []string{"result_ref", "upload_ref", "is_ai_generated", "confidence_score", "algorithm_version", "created_at"}
	for _, key := range wantKeys {
		if _, ok := decoded[key]; !ok {
			t.Errorf("marshaled event missing key %q", key)
		}
	}

	var roundtrip DetectionCompleted
	if err := json.Unmarshal(data, &roundtrip); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if roundtrip.ResultRef != event.ResultRef || roundtrip.UploadRef != event.UploadRef {
		t.Errorf("roundtrip refs = %s/%s, want %s/%s", roundtrip.ResultRef, roundtrip.UploadRef, event.ResultRef, event.UploadRef)
	}
	if roundtrip.Confidence != event.Confidence || roundtrip.IsAIGenerated != event.IsAIGenerated {
		t.Errorf("roundtrip verdict = %v/%v, want %v/%v", roundtrip.IsAIGenerated, roundtrip.Confidence, event.IsAIGenerated, event.Confidence)
	}
	if !roundtrip.CreatedAt.Equal(event.CreatedAt) {
		t.Errorf("roundtrip CreatedAt = %v, want %v", roundtrip.CreatedAt, event.CreatedAt)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}

	if err := p.PublishDetectionCompleted(context.Background(), DetectionCompleted{}); err != nil {
		t.Errorf("PublishDetectionCompleted() error = %v, want nil", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}
