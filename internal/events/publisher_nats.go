// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

//go:build nats

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/skygate-forensics/skygate/internal/config"
	"github.com/skygate-forensics/skygate/internal/logging"
	"github.com/skygate-forensics/skygate/internal/metrics"
)

// NATSPublisher publishes detection lifecycle events over NATS via
// Watermill. Connection loss is handled by the client's reconnect loop;
// publishes during an outage fail fast and are counted, not queued.
type NATSPublisher struct {
	publisher message.Publisher
	topic     string

	mu     sync.RWMutex
	closed bool
}

// NewPublisher connects a Watermill NATS publisher from configuration.
// Returns a NopPublisher when event publication is disabled.
func NewPublisher(cfg *config.EventsConfig) (Publisher, error) {
	if cfg == nil || !cfg.Enabled {
		return NopPublisher{}, nil
	}

	logger := watermill.NewStdLogger(false, false)

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    true, // Nats-Msg-Id deduplication on redelivery
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	logging.Info().
		Str("url", cfg.URL).
		Str("topic", topic).
		Msg("NATS event publisher connected")

	return &NATSPublisher{publisher: pub, topic: topic}, nil
}

// PublishDetectionCompleted serializes and publishes one event. The result
// reference doubles as the message UUID so consumers can deduplicate.
func (p *NATSPublisher) PublishDetectionCompleted(ctx context.Context, event DetectionCompleted) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return errors.New("event publisher is closed")
	}
	p.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal detection event: %w", err)
	}

	msg := message.NewMessage(event.ResultRef, data)
	msg.Metadata.Set("upload_ref", event.UploadRef)

	err = p.publisher.Publish(p.topic, msg)
	metrics.RecordEventPublish(p.topic, err)
	if err != nil {
		return fmt.Errorf("publish detection event %s: %w", event.ResultRef, err)
	}
	return nil
}

// Close shuts down the underlying Watermill publisher. Close is
// idempotent.
func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.publisher.Close()
}

// Compile-time interface assertion
var _ Publisher = (*NATSPublisher)(nil)
