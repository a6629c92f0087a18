// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSlogLoggerBridgesToZerolog(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).With().Timestamp().Logger())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	slogger := NewSlogLogger()
	slogger.Info("service started", "service", "badger-gc", "restarts", int64(2))

	output := buf.String()
	if !strings.Contains(output, `"level":"info"`) {
		t.Errorf("expected info level in output: %s", output)
	}
	if !strings.Contains(output, `"service":"badger-gc"`) {
		t.Errorf("expected service attr in output: %s", output)
	}
	if !strings.Contains(output, `"restarts":2`) {
		t.Errorf("expected restarts attr in output: %s", output)
	}
	if !strings.Contains(output, "service started") {
		t.Errorf("expected message in output: %s", output)
	}
}

func TestSlogLevelsMapToZerolog(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	slogger := NewSlogLogger()

	tests := []struct {
		name    string
		logFunc func()
		level   string
	}{
		{"Debug", func() { slogger.Debug("d") }, `"level":"debug"`},
		{"Info", func() { slogger.Info("i") }, `"level":"info"`},
		{"Warn", func() { slogger.Warn("w") }, `"level":"warn"`},
		{"Error", func() { slogger.Error("e") }, `"level":"error"`},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.logFunc()
		if !strings.Contains(buf.String(), tt.level) {
			t.Errorf("%s: expected %s in output: %s", tt.name, tt.level, buf.String())
		}
	}
}

func TestSlogWithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	slogger := NewSlogLogger().WithGroup("svc").With("name", "ingest-poller")
	slogger.Info("restarting", "restarts", int64(1))

	output := buf.String()
	if !strings.Contains(output, `"svc.name":"ingest-poller"`) {
		t.Errorf("expected grouped pre-set attr in output: %s", output)
	}
	if !strings.Contains(output, `"svc.restarts":1`) {
		t.Errorf("expected grouped record attr in output: %s", output)
	}
}
