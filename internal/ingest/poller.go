// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skygate-forensics/skygate/internal/config"
	"github.com/skygate-forensics/skygate/internal/logging"
	"github.com/skygate-forensics/skygate/internal/metrics"
)

// Archive subdirectories inside the spool. Files land in exactly one of
// them after a scan pass touches them.
const (
	processedDir = "processed"
	failedDir    = "failed"
)

// defaultPollInterval applies when the configured interval is zero or
// negative.
const defaultPollInterval = 5 * time.Second

// Poller watches the spool directory and runs every artifact dropped there
// through the detection pipeline. Processed files are moved into an archive
// subdirectory with the result reference prefixed to the name, so an
// archived file can always be matched back to its stored result.
//
// Poller implements suture.Service.
type Poller struct {
	dir      string
	interval time.Duration
	maxSize  int64
	detector Detector
}

// NewPoller creates a spool poller from config.
func NewPoller(cfg *config.IngestConfig, detector Detector) (*Poller, error) {
	if cfg == nil {
		return nil, errors.New("ingest config cannot be nil")
	}
	if detector == nil {
		return nil, errors.New("detector cannot be nil")
	}
	if cfg.SpoolDir == "" {
		return nil, errors.New("spool directory cannot be empty")
	}

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	return &Poller{
		dir:      cfg.SpoolDir,
		interval: interval,
		maxSize:  cfg.MaxFileSize,
		detector: detector,
	}, nil
}

// EnsureDirs creates the spool directory and its archive subdirectories.
func (p *Poller) EnsureDirs() error {
	dirs := []string{
		p.dir,
		filepath.Join(p.dir, processedDir),
		filepath.Join(p.dir, failedDir),
	}
	for _, dir := range dirs {
		// 0750: owner rwx, group rx. Spooled artifacts are user uploads
		// and must not be world-readable.
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create spool directory %s: %w", dir, err)
		}
	}
	return nil
}

// Serve runs the poll loop: one scan immediately, then one per tick, until
// the context is canceled.
func (p *Poller) Serve(ctx context.Context) error {
	if err := p.EnsureDirs(); err != nil {
		return err
	}

	logging.Info().
		Str("dir", p.dir).
		Dur("interval", p.interval).
		Msg("Spool poller started")

	p.scan(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Spool poller stopping")
			return ctx.Err()
		case <-ticker.C:
			p.scan(ctx)
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (p *Poller) String() string {
	return "spool-poller"
}

// scan runs a single pass over the spool directory. Archive subdirectories,
// dotfiles, and empty files (possibly still being written) are skipped.
func (p *Poller) scan(ctx context.Context) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		logging.Error().Err(err).Str("dir", p.dir).Msg("Failed to read spool directory")
		return
	}

	var pending []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		pending = append(pending, entry.Name())
	}

	metrics.SpoolQueueDepth.Set(float64(len(pending)))
	if len(pending) == 0 {
		return
	}

	// Oldest-name-first keeps reprocessing order stable across restarts.
	sort.Strings(pending)

	logging.Debug().Int("count", len(pending)).Msg("Spool scan found artifacts")

	for _, name := range pending {
		if ctx.Err() != nil {
			return
		}
		p.process(ctx, name)
	}
}

// process runs one spool file through the pipeline and archives it.
func (p *Poller) process(ctx context.Context, name string) {
	path := filepath.Join(p.dir, name)

	in, err := ReadArtifact(path, p.maxSize)
	if err != nil {
		logging.Error().Err(err).Str("file", name).Msg("Artifact rejected at intake")
		p.archive(name, "", failedDir)
		metrics.SpoolFilesProcessed.WithLabelValues("failed").Inc()
		return
	}

	summary, err := p.detector.Detect(ctx, in)
	if summary == nil {
		logging.Error().
			Err(err).
			Str("file", name).
			Str("upload_ref", in.UploadRef).
			Msg("Detection failed for spooled artifact")
		p.archive(name, in.UploadRef, failedDir)
		metrics.SpoolFilesProcessed.WithLabelValues("failed").Inc()
		return
	}

	// A detail-stage persistence error still leaves a committed summary;
	// the result is recorded and the artifact counts as processed.
	if err != nil {
		logging.Warn().
			Err(err).
			Str("result_ref", summary.ResultRef).
			Msg("Spooled artifact processed with degraded persistence")
	}

	logging.Info().
		Str("file", name).
		Str("result_ref", summary.ResultRef).
		Bool("is_ai_generated", summary.IsAIGenerated).
		Float64("confidence", summary.Confidence).
		Msg("Spooled artifact processed")

	p.archive(name, summary.ResultRef, processedDir)
	metrics.SpoolFilesProcessed.WithLabelValues("completed").Inc()
}

// archive moves a spool file into subdir, prefixing the name with the
// reference key that ties the file to its result. Files rejected before a
// reference exists get a fresh prefix so repeated failures of the same
// filename never overwrite each other.
func (p *Poller) archive(name, ref, subdir string) {
	prefix := shortRef(ref)
	target := prefix + "_" + name

	src := filepath.Join(p.dir, name)
	dst := filepath.Join(p.dir, subdir, target)
	if err := os.Rename(src, dst); err != nil {
		logging.Error().
			Err(err).
			Str("file", name).
			Str("target", dst).
			Msg("Failed to archive spool file")
	}
}

// shortRef returns the first eight characters of a reference key, minting
// one when the caller has none.
func shortRef(ref string) string {
	if ref == "" {
		ref = uuid.New().String()
	}
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}
