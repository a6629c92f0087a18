// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

// Package metadata scores capture-metadata anomalies: generator
// software signatures, missing device identity, implausible or
// conflicting capture settings. Genuine camera output carries a dense,
// internally consistent EXIF block; generated images usually carry
// none, or one stamped by the generator itself.
package metadata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skygate-forensics/skygate/internal/analysis"
)

// Evidence increments per fired indicator. The increments accumulate
// additively and clamp to [0,1], so several weak anomalies add up to a
// strong verdict while one matched generator signature dominates alone.
const (
	scoreNoMetadata        = 0.70
	scoreGeneratorTag      = 0.95
	scoreMissingDevice     = 0.20
	scoreMissingExposure   = 0.15
	scoreTimestampConflict = 0.15
	scoreMissingLens       = 0.10
	scoreImplausibleValues = 0.10
	scoreMissingGPS        = 0.05
)

// Physical plausibility bounds for exposure tags. Values outside these
// ranges do not occur on shipping camera hardware.
const (
	minFNumber = 0.7
	maxFNumber = 64
	minISO     = 50
	maxISO     = 409600
)

// DefaultSignatures returns the software-tag substrings that identify
// known generators and generative tooling. Matching is case-insensitive.
func DefaultSignatures() []string {
	return []string{
		"stable diffusion",
		"dall-e",
		"dall·e",
		"midjourney",
		"generative",
		"gan",
		"neural",
		"deep dream",
		"ai image",
		"openai",
	}
}

// Config tunes the metadata analyzer.
type Config struct {
	// Signatures overrides the built-in generator signature list when
	// non-empty.
	Signatures []string `koanf:"signatures" json:"signatures"`
}

// Analyzer implements the metadata forensic method.
type Analyzer struct {
	signatures []string
}

// New builds the metadata analyzer.
func New(cfg Config) *Analyzer {
	sigs := cfg.Signatures
	if len(sigs) == 0 {
		sigs = DefaultSignatures()
	}
	lowered := make([]string, len(sigs))
	for i, s := range sigs {
		lowered[i] = strings.ToLower(s)
	}
	return &Analyzer{signatures: lowered}
}

// Name implements analysis.Analyzer.
func (a *Analyzer) Name() string { return "metadata-exif" }

// Methods implements analysis.Analyzer.
func (a *Analyzer) Methods() []analysis.Method {
	return []analysis.Method{analysis.MethodMetadata}
}

// Indicator is one fired anomaly with its evidence weight.
type Indicator struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Note   string  `json:"note"`
}

// metadataDetail is the persisted structured explanation for one run.
type metadataDetail struct {
	Present    bool        `json:"metadata_present"`
	Fields     *Fields     `json:"fields,omitempty"`
	Indicators []Indicator `json:"indicators"`
}

// Analyze implements analysis.Analyzer.
func (a *Analyzer) Analyze(ctx context.Context, in analysis.Input) []analysis.MethodOutcome {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return []analysis.MethodOutcome{analysis.Failed(analysis.MethodMetadata, err.Error(), time.Since(start))}
	}
	if len(in.Data) == 0 {
		return []analysis.MethodOutcome{analysis.Failed(analysis.MethodMetadata, "empty artifact", time.Since(start))}
	}

	fields := Extract(in.Data)
	if fields == nil {
		detail := &metadataDetail{
			Indicators: []Indicator{{
				Name:   "no_metadata",
				Weight: scoreNoMetadata,
				Note:   "container carries no readable capture metadata",
			}},
		}
		return []analysis.MethodOutcome{analysis.Succeeded(analysis.MethodMetadata,
			scoreNoMetadata, "no camera metadata present in container", detail, time.Since(start))}
	}

	score, indicators, text := a.scoreFields(fields)
	detail := &metadataDetail{Present: true, Fields: fields, Indicators: indicators}

	return []analysis.MethodOutcome{
		analysis.Succeeded(analysis.MethodMetadata, score, text, detail, time.Since(start)),
	}
}

// scoreFields applies the anomaly policy to an extracted EXIF block.
func (a *Analyzer) scoreFields(f *Fields) (float64, []Indicator, string) {
	var indicators []Indicator
	var matched string

	for _, tag := range []string{f.Software, f.Make, f.Model} {
		if tag == "" {
			continue
		}
		lower := strings.ToLower(tag)
		for _, sig := range a.signatures {
			if strings.Contains(lower, sig) {
				matched = tag
				indicators = append(indicators, Indicator{
					Name:   "generator_signature",
					Weight: scoreGeneratorTag,
					Note:   fmt.Sprintf("tag %q matches signature %q", tag, sig),
				})
				break
			}
		}
		if matched != "" {
			break
		}
	}

	if !f.HasDevice() {
		indicators = append(indicators, Indicator{
			Name:   "missing_device",
			Weight: scoreMissingDevice,
			Note:   "no camera make or model recorded",
		})
	}
	if !f.HasExposure() {
		indicators = append(indicators, Indicator{
			Name:   "missing_exposure",
			Weight: scoreMissingExposure,
			Note:   "no exposure time, aperture, or ISO recorded",
		})
	}
	if f.TimestampConflict() {
		indicators = append(indicators, Indicator{
			Name:   "timestamp_conflict",
			Weight: scoreTimestampConflict,
			Note:   fmt.Sprintf("capture time %s postdates modification time %s", f.DateTimeOriginal, f.DateTime),
		})
	}
	if f.LensModel == "" {
		indicators = append(indicators, Indicator{
			Name:   "missing_lens",
			Weight: scoreMissingLens,
			Note:   "no lens model recorded",
		})
	}
	if note := implausibleValues(f); note != "" {
		indicators = append(indicators, Indicator{
			Name:   "implausible_values",
			Weight: scoreImplausibleValues,
			Note:   note,
		})
	}
	if !f.HasGPS {
		indicators = append(indicators, Indicator{
			Name:   "missing_gps",
			Weight: scoreMissingGPS,
			Note:   "no GPS position recorded",
		})
	} else if f.Latitude == 0 && f.Longitude == 0 {
		indicators = append(indicators, Indicator{
			Name:   "missing_gps",
			Weight: scoreMissingGPS,
			Note:   "GPS position is the zero coordinate",
		})
	}

	var score float64
	for _, ind := range indicators {
		score += ind.Weight
	}
	if score > 1 {
		score = 1
	}

	switch {
	case matched != "":
		return score, indicators, fmt.Sprintf("software signature %q matches known generator", matched)
	case len(indicators) > 0:
		names := make([]string, len(indicators))
		for i, ind := range indicators {
			names[i] = ind.Name
		}
		return score, indicators, fmt.Sprintf("%d metadata anomalies: %s", len(indicators), strings.Join(names, ", "))
	default:
		return score, indicators, "camera metadata consistent with device capture"
	}
}

// implausibleValues checks recorded exposure tags against hardware
// bounds. Only set tags are judged.
func implausibleValues(f *Fields) string {
	if f.FNumber != 0 && (f.FNumber < minFNumber || f.FNumber > maxFNumber) {
		return fmt.Sprintf("aperture f/%.1f outside physical range", f.FNumber)
	}
	if f.ISO != 0 && (f.ISO < minISO || f.ISO > maxISO) {
		return fmt.Sprintf("ISO %d outside physical range", f.ISO)
	}
	return ""
}
