// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

// Package ingest feeds artifacts into the detection pipeline.
//
// Two intake paths share the same machinery. The spool poller watches a
// directory on an interval and processes every regular file dropped there;
// the one-shot CLI path reads a single file and exits. Both go through
// ReadArtifact, which mints the upload reference, sniffs the MIME type from
// content, enforces the size limit, and validates the resulting envelope
// before anything touches the engine.
//
// The spool directory is the queue. After a file is processed it is moved
// into the processed/ or failed/ subdirectory with its reference key
// prefixed to the name, so the archive doubles as an index from artifact to
// stored result. Files are never deleted by this package.
package ingest
