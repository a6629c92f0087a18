// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

// Package logging provides centralized zerolog-based structured logging
// for SkyGate.
//
// All components log through the package-level functions so output
// format and level are configured once, at startup, from the loaded
// configuration:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("upload_ref", ref).Msg("detection complete")
//
// JSON output is the production default; console output is for
// development. Component loggers carry a fixed field:
//
//	engineLog := logging.With().Str("component", "engine").Logger()
//
// The slog adapter bridges libraries that require *slog.Logger (the
// supervision tree's sutureslog hook) onto the same zerolog backend:
//
//	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
//
// Always terminate log chains with .Msg() or .Send(); a dangling chain
// is silently dropped.
package logging
