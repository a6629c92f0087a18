// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package pixel

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/skygate-forensics/skygate/internal/analysis"
	"github.com/skygate-forensics/skygate/internal/analysis/raster"
)

// TextureAnalyzer scores texture-smoothness uniformity. Generated
// content tends toward unnaturally uniform smoothness across large
// regions; the signal combines edge density, mean gradient energy, and
// the spread of per-tile local variance.
type TextureAnalyzer struct {
	cfg TextureConfig
}

// NewTexture builds the texture analyzer, filling zero config fields
// with the shipped calibration.
func NewTexture(cfg TextureConfig) *TextureAnalyzer {
	def := DefaultTextureConfig()
	if cfg.TileSize <= 0 {
		cfg.TileSize = def.TileSize
	}
	if cfg.EdgeThreshold <= 0 {
		cfg.EdgeThreshold = def.EdgeThreshold
	}
	if cfg.GradientScale <= 0 {
		cfg.GradientScale = def.GradientScale
	}
	if cfg.SmoothThreshold <= 0 {
		cfg.SmoothThreshold = def.SmoothThreshold
	}
	if cfg.HistBins <= 0 {
		cfg.HistBins = def.HistBins
	}
	if cfg.MinDimension <= 0 {
		cfg.MinDimension = def.MinDimension
	}
	return &TextureAnalyzer{cfg: cfg}
}

// Name implements analysis.Analyzer.
func (a *TextureAnalyzer) Name() string { return "pixel-texture" }

// Methods implements analysis.Analyzer.
func (a *TextureAnalyzer) Methods() []analysis.Method {
	return []analysis.Method{analysis.MethodTexture}
}

// textureDetail is the persisted structured explanation for one run.
type textureDetail struct {
	EdgeDensity  float64 `json:"edge_density"`
	GradientMean float64 `json:"gradient_mean"`
	HistSpread   float64 `json:"hist_spread"`
	TileCount    int     `json:"tile_count"`
	Smoothness   float64 `json:"smoothness"`
	Suspicious   bool    `json:"suspicious"`
}

// Analyze implements analysis.Analyzer.
func (a *TextureAnalyzer) Analyze(ctx context.Context, in analysis.Input) []analysis.MethodOutcome {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return []analysis.MethodOutcome{analysis.Failed(analysis.MethodTexture, err.Error(), time.Since(start))}
	}

	img, _, err := raster.Decode(in.Data)
	if err != nil {
		return []analysis.MethodOutcome{terminalDecodeOutcome(analysis.MethodTexture, err, time.Since(start))}
	}

	gray := raster.Luminance(img)
	if gray.W < a.cfg.MinDimension || gray.H < a.cfg.MinDimension {
		return []analysis.MethodOutcome{analysis.Skipped(analysis.MethodTexture,
			fmt.Sprintf("image %dx%d below %dpx minimum for texture tiling", gray.W, gray.H, a.cfg.MinDimension),
			time.Since(start))}
	}

	mag := raster.SobelMagnitude(gray)

	var edges int
	var gradSum float64
	for _, v := range mag.Pix {
		gradSum += v
		if v > a.cfg.EdgeThreshold {
			edges++
		}
	}
	detail := &textureDetail{
		EdgeDensity:  float64(edges) / float64(len(mag.Pix)),
		GradientMean: gradSum / float64(len(mag.Pix)),
	}

	tiles := raster.Tiles(gray.W, gray.H, a.cfg.TileSize)
	if len(tiles) == 0 {
		return []analysis.MethodOutcome{analysis.Skipped(analysis.MethodTexture,
			"image too small for texture tiling", time.Since(start))}
	}
	detail.TileCount = len(tiles)

	tileStds := make([]float64, 0, len(tiles))
	for _, t := range tiles {
		sd, err := stats.StandardDeviation(gray.Region(t))
		if err != nil {
			return []analysis.MethodOutcome{analysis.Failed(analysis.MethodTexture,
				fmt.Sprintf("tile variance statistics: %v", err), time.Since(start))}
		}
		tileStds = append(tileStds, sd)
	}

	spread, err := a.histSpread(tileStds)
	if err != nil {
		return []analysis.MethodOutcome{analysis.Failed(analysis.MethodTexture,
			fmt.Sprintf("variance histogram: %v", err), time.Since(start))}
	}
	detail.HistSpread = spread

	// Smoothness blends the three indicators 40/40/20; each term rises
	// as its texture evidence weakens.
	detail.Smoothness = 0.4*(1-detail.EdgeDensity) +
		0.4*(1-math.Min(detail.GradientMean/a.cfg.GradientScale, 1)) +
		0.2*(1-spread)
	detail.Suspicious = detail.Smoothness > a.cfg.SmoothThreshold

	var text string
	if detail.Suspicious {
		text = fmt.Sprintf("unnaturally uniform smoothness %.2f across %d tiles", detail.Smoothness, detail.TileCount)
	} else {
		text = fmt.Sprintf("natural texture variation (smoothness %.2f)", detail.Smoothness)
	}

	return []analysis.MethodOutcome{
		analysis.Succeeded(analysis.MethodTexture, detail.Smoothness, text, detail, time.Since(start)),
	}
}

// histSpread bins the per-tile standard deviations and returns the
// diversity of the resulting histogram: 1 when tiles spread evenly
// across variance classes, 0 when every tile shares one class.
func (a *TextureAnalyzer) histSpread(tileStds []float64) (float64, error) {
	maxStd, err := stats.Max(tileStds)
	if err != nil {
		return 0, err
	}
	if maxStd == 0 {
		// Every tile is perfectly flat: a single variance class.
		return 0, nil
	}

	bins := make([]float64, a.cfg.HistBins)
	for _, sd := range tileStds {
		idx := int(sd / maxStd * float64(a.cfg.HistBins))
		if idx >= a.cfg.HistBins {
			idx = a.cfg.HistBins - 1
		}
		bins[idx]++
	}
	for i := range bins {
		bins[i] /= float64(len(tileStds))
	}

	binStd, err := stats.StandardDeviation(bins)
	if err != nil {
		return 0, err
	}

	// A one-hot distribution over k bins has the maximum possible
	// population std sqrt(k-1)/k; normalize concentration against it
	// and invert so even histograms score 1.
	k := float64(a.cfg.HistBins)
	maxPossible := math.Sqrt(k-1) / k
	return 1 - math.Min(binStd/maxPossible, 1), nil
}
