// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

//go:build !nats

package events

import (
	"github.com/skygate-forensics/skygate/internal/config"
	"github.com/skygate-forensics/skygate/internal/logging"
)

// NewPublisher returns a no-op publisher. Event publication requires
// building with -tags=nats; this stub keeps the call site identical in
// both builds.
func NewPublisher(cfg *config.EventsConfig) (Publisher, error) {
	if cfg != nil && cfg.Enabled {
		logging.Warn().Msg("Event publication is enabled in config but the binary was built without the nats tag; events will be discarded")
	}
	return NopPublisher{}, nil
}
