// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package metadata

import (
	"bytes"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// exifTimeLayout is the timestamp format mandated by the EXIF standard.
const exifTimeLayout = "2006:01:02 15:04:05"

// Fields holds the capture metadata the scoring policy inspects. Zero
// values mean the tag was absent or unreadable; individual tag errors
// never abort extraction.
type Fields struct {
	Make              string  `json:"make,omitempty"`
	Model             string  `json:"model,omitempty"`
	LensModel         string  `json:"lens_model,omitempty"`
	Software          string  `json:"software,omitempty"`
	DateTime          string  `json:"date_time,omitempty"`
	DateTimeOriginal  string  `json:"date_time_original,omitempty"`
	DateTimeDigitized string  `json:"date_time_digitized,omitempty"`
	ExposureTime      float64 `json:"exposure_time,omitempty"`
	FNumber           float64 `json:"f_number,omitempty"`
	ISO               int     `json:"iso,omitempty"`
	HasGPS            bool    `json:"has_gps"`
	Latitude          float64 `json:"latitude,omitempty"`
	Longitude         float64 `json:"longitude,omitempty"`
}

// HasDevice reports whether any camera identity tag survived.
func (f *Fields) HasDevice() bool {
	return f.Make != "" || f.Model != ""
}

// HasExposure reports whether any exposure setting survived.
func (f *Fields) HasExposure() bool {
	return f.ExposureTime != 0 || f.FNumber != 0 || f.ISO != 0
}

// TimestampConflict reports whether the claimed capture time postdates
// the last modification time. Both tags must parse for a verdict.
func (f *Fields) TimestampConflict() bool {
	if f.DateTime == "" || f.DateTimeOriginal == "" {
		return false
	}
	modified, err := time.Parse(exifTimeLayout, f.DateTime)
	if err != nil {
		return false
	}
	original, err := time.Parse(exifTimeLayout, f.DateTimeOriginal)
	if err != nil {
		return false
	}
	return original.After(modified)
}

// Extract parses the artifact's EXIF block into Fields. A missing or
// unreadable block returns nil: for detection purposes absence is a
// signal to score, not an error to surface.
func Extract(data []byte) *Fields {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	f := &Fields{
		Make:              stringTag(x, exif.Make),
		Model:             stringTag(x, exif.Model),
		LensModel:         stringTag(x, exif.LensModel),
		Software:          stringTag(x, exif.Software),
		DateTime:          stringTag(x, exif.DateTime),
		DateTimeOriginal:  stringTag(x, exif.DateTimeOriginal),
		DateTimeDigitized: stringTag(x, exif.DateTimeDigitized),
		ExposureTime:      ratTag(x, exif.ExposureTime),
		FNumber:           ratTag(x, exif.FNumber),
		ISO:               intTag(x, exif.ISOSpeedRatings),
	}
	if lat, long, err := x.LatLong(); err == nil {
		f.HasGPS = true
		f.Latitude = lat
		f.Longitude = long
	}
	return f
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func ratTag(x *exif.Exif, name exif.FieldName) float64 {
	tag, err := x.Get(name)
	if err != nil {
		return 0
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func intTag(x *exif.Exif, name exif.FieldName) int {
	tag, err := x.Get(name)
	if err != nil {
		return 0
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0
	}
	return v
}
