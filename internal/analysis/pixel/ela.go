// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package pixel

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/skygate-forensics/skygate/internal/analysis"
	"github.com/skygate-forensics/skygate/internal/analysis/raster"
)

// ELAAnalyzer scores compression-error-level consistency. Re-encoding a
// genuine JPEG at a controlled quality concentrates error at edges and
// texture, giving a patchy error map; generated or heavily reprocessed
// content yields unnaturally uniform or near-absent error structure.
type ELAAnalyzer struct {
	cfg ELAConfig
}

// NewELA builds the error-level analyzer, filling zero config fields
// with the shipped calibration.
func NewELA(cfg ELAConfig) *ELAAnalyzer {
	def := DefaultELAConfig()
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = def.Quality
	}
	if cfg.Amplification <= 0 {
		cfg.Amplification = def.Amplification
	}
	if cfg.TileSize <= 0 {
		cfg.TileSize = def.TileSize
	}
	if cfg.UniformityScale <= 0 {
		cfg.UniformityScale = def.UniformityScale
	}
	if cfg.MinDimension <= 0 {
		cfg.MinDimension = def.MinDimension
	}
	return &ELAAnalyzer{cfg: cfg}
}

// Name implements analysis.Analyzer.
func (a *ELAAnalyzer) Name() string { return "pixel-ela" }

// Methods implements analysis.Analyzer.
func (a *ELAAnalyzer) Methods() []analysis.Method {
	return []analysis.Method{analysis.MethodELA}
}

// elaDetail is the persisted structured explanation for one run.
type elaDetail struct {
	Quality       int        `json:"quality"`
	Amplification float64    `json:"amplification"`
	ChannelMeans  [3]float64 `json:"channel_means"`
	ChannelStds   [3]float64 `json:"channel_stds"`
	MeanError     float64    `json:"mean_error"`
	TileCount     int        `json:"tile_count"`
	ErrorCV       float64    `json:"error_cv"`
	Suspicious    bool       `json:"suspicious"`
}

// Analyze implements analysis.Analyzer.
func (a *ELAAnalyzer) Analyze(ctx context.Context, in analysis.Input) []analysis.MethodOutcome {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return []analysis.MethodOutcome{analysis.Failed(analysis.MethodELA, err.Error(), time.Since(start))}
	}

	img, format, err := raster.Decode(in.Data)
	if err != nil {
		return []analysis.MethodOutcome{terminalDecodeOutcome(analysis.MethodELA, err, time.Since(start))}
	}
	if format != "jpeg" {
		return []analysis.MethodOutcome{analysis.Skipped(analysis.MethodELA,
			fmt.Sprintf("no compression error structure in lossless %s source", format),
			time.Since(start))}
	}

	b := img.Bounds()
	if b.Dx() < a.cfg.MinDimension || b.Dy() < a.cfg.MinDimension {
		return []analysis.MethodOutcome{analysis.Skipped(analysis.MethodELA,
			fmt.Sprintf("image %dx%d below %dpx minimum for error tiling", b.Dx(), b.Dy(), a.cfg.MinDimension),
			time.Since(start))}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: a.cfg.Quality}); err != nil {
		return []analysis.MethodOutcome{analysis.Failed(analysis.MethodELA,
			fmt.Sprintf("controlled re-encode: %v", err), time.Since(start))}
	}
	reenc, err := jpeg.Decode(&buf)
	if err != nil {
		return []analysis.MethodOutcome{analysis.Failed(analysis.MethodELA,
			fmt.Sprintf("decode re-encoded image: %v", err), time.Since(start))}
	}

	errPlane, detail := a.errorLevels(img, reenc)

	tiles := raster.Tiles(errPlane.W, errPlane.H, a.cfg.TileSize)
	if len(tiles) == 0 {
		return []analysis.MethodOutcome{analysis.Skipped(analysis.MethodELA,
			"image too small for error tiling", time.Since(start))}
	}
	tileMeans := make([]float64, 0, len(tiles))
	for _, t := range tiles {
		m, err := stats.Mean(errPlane.Region(t))
		if err != nil {
			return []analysis.MethodOutcome{analysis.Failed(analysis.MethodELA,
				fmt.Sprintf("tile error statistics: %v", err), time.Since(start))}
		}
		tileMeans = append(tileMeans, m)
	}
	detail.TileCount = len(tiles)

	tileMean, err := stats.Mean(tileMeans)
	if err != nil {
		return []analysis.MethodOutcome{analysis.Failed(analysis.MethodELA,
			fmt.Sprintf("error statistics: %v", err), time.Since(start))}
	}
	tileStd, err := stats.StandardDeviation(tileMeans)
	if err != nil {
		return []analysis.MethodOutcome{analysis.Failed(analysis.MethodELA,
			fmt.Sprintf("error statistics: %v", err), time.Since(start))}
	}
	if tileMean > 0 {
		detail.ErrorCV = tileStd / tileMean
	}

	// Natural JPEG error varies strongly between busy and flat regions.
	// Low variation, or no measurable error at all, is the suspicious
	// signature.
	naturalness := math.Min(detail.ErrorCV/a.cfg.UniformityScale, 1)
	score := 1 - naturalness
	detail.Suspicious = score > 0.5

	var text string
	if detail.Suspicious {
		text = fmt.Sprintf("compression error uniform across %d tiles (cv %.2f)", detail.TileCount, detail.ErrorCV)
	} else {
		text = fmt.Sprintf("natural compression error variation (cv %.2f)", detail.ErrorCV)
	}

	return []analysis.MethodOutcome{
		analysis.Succeeded(analysis.MethodELA, score, text, detail, time.Since(start)),
	}
}

// errorLevels builds the amplified re-encode difference plane (channel
// mean per pixel) and accumulates per-channel mean/std features.
func (a *ELAAnalyzer) errorLevels(orig, reenc image.Image) (*raster.Plane, *elaDetail) {
	b := orig.Bounds()
	plane := raster.NewPlane(b.Dx(), b.Dy())
	detail := &elaDetail{Quality: a.cfg.Quality, Amplification: a.cfg.Amplification}

	var sums, sumSqs [3]float64
	n := float64(b.Dx() * b.Dy())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			or, og, ob, _ := orig.At(x, y).RGBA()
			rr, rg, rb, _ := reenc.At(x, y).RGBA()

			diffs := [3]float64{
				amplify(or, rr, a.cfg.Amplification),
				amplify(og, rg, a.cfg.Amplification),
				amplify(ob, rb, a.cfg.Amplification),
			}
			for c, d := range diffs {
				sums[c] += d
				sumSqs[c] += d * d
			}
			plane.Set(x-b.Min.X, y-b.Min.Y, (diffs[0]+diffs[1]+diffs[2])/3)
		}
	}

	var total float64
	for c := 0; c < 3; c++ {
		mean := sums[c] / n
		detail.ChannelMeans[c] = mean
		variance := sumSqs[c]/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		detail.ChannelStds[c] = math.Sqrt(variance)
		total += mean
	}
	detail.MeanError = total / 3
	return plane, detail
}

// amplify computes the clipped, amplified absolute channel difference in
// normalized units.
func amplify(a, b uint32, amplification float64) float64 {
	d := math.Abs(float64(a)-float64(b)) / 65535.0 * amplification
	if d > 1 {
		return 1
	}
	return d
}
