// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

// Package events publishes detection lifecycle notifications.
//
// A DetectionCompleted event is emitted after a verdict has been persisted,
// carrying the summary fields downstream consumers need to decide whether
// to fetch the full forensic report by reference key.
//
// Publication is optional and build-gated: compiling with -tags=nats wires
// a Watermill NATS publisher; the default build substitutes NopPublisher
// behind the same NewPublisher signature. In both builds publication is
// fire-and-report, and a failed publish never invalidates a persisted
// result.
package events
