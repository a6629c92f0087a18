// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package pixel

// PRNUConfig tunes the sensor-pattern-noise consistency signal.
type PRNUConfig struct {
	// TileSize is the square tile edge for residual energy sampling.
	TileSize int `json:"tile_size"`

	// BlurRadius is the box-blur radius of the denoise pass whose
	// difference against the original forms the noise residual.
	BlurRadius int `json:"blur_radius"`

	// NoiseScale is the mean residual energy (normalized units) at
	// which sensor noise is considered fully present.
	NoiseScale float64 `json:"noise_scale"`

	// PatternThreshold flags suspicion when the pattern score falls
	// below it.
	PatternThreshold float64 `json:"pattern_threshold"`

	// MaxScore caps the emitted suspicion score.
	MaxScore float64 `json:"max_score"`

	// MinDimension is the smallest usable image edge; smaller inputs
	// are skipped.
	MinDimension int `json:"min_dimension"`
}

// DefaultPRNUConfig returns the shipped PRNU calibration.
func DefaultPRNUConfig() PRNUConfig {
	return PRNUConfig{
		TileSize:         32,
		BlurRadius:       2,
		NoiseScale:       0.02,
		PatternThreshold: 0.3,
		MaxScore:         0.95,
		MinDimension:     64,
	}
}

// ELAConfig tunes the compression-error-level consistency signal.
type ELAConfig struct {
	// Quality is the JPEG quality of the controlled re-encode.
	Quality int `json:"quality"`

	// Amplification scales the per-pixel re-encode difference before
	// clipping, matching classic ELA visualization practice.
	Amplification float64 `json:"amplification"`

	// TileSize is the square tile edge for error uniformity sampling.
	TileSize int `json:"tile_size"`

	// UniformityScale is the tile-error coefficient of variation at
	// which error structure is considered fully natural.
	UniformityScale float64 `json:"uniformity_scale"`

	// MinDimension is the smallest usable image edge.
	MinDimension int `json:"min_dimension"`
}

// DefaultELAConfig returns the shipped ELA calibration.
func DefaultELAConfig() ELAConfig {
	return ELAConfig{
		Quality:         90,
		Amplification:   10,
		TileSize:        32,
		UniformityScale: 0.5,
		MinDimension:    64,
	}
}

// TextureConfig tunes the texture-smoothness uniformity signal.
type TextureConfig struct {
	// TileSize is the square tile edge for local variance sampling.
	TileSize int `json:"tile_size"`

	// EdgeThreshold is the Sobel magnitude above which a pixel counts
	// as an edge (normalized gradient units).
	EdgeThreshold float64 `json:"edge_threshold"`

	// GradientScale is the mean gradient magnitude considered fully
	// textured.
	GradientScale float64 `json:"gradient_scale"`

	// SmoothThreshold flags suspicion when smoothness exceeds it.
	SmoothThreshold float64 `json:"smooth_threshold"`

	// HistBins is the local-variance histogram resolution.
	HistBins int `json:"hist_bins"`

	// MinDimension is the smallest usable image edge.
	MinDimension int `json:"min_dimension"`
}

// DefaultTextureConfig returns the shipped texture calibration.
func DefaultTextureConfig() TextureConfig {
	return TextureConfig{
		TileSize:        32,
		EdgeThreshold:   0.25,
		GradientScale:   0.4,
		SmoothThreshold: 0.6,
		HistBins:        10,
		MinDimension:    64,
	}
}
