// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// jpegHeader is enough of a JPEG preamble for content-type sniffing.
var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

// pngHeader is the fixed eight-byte PNG signature.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

func writeSpoolFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadArtifact(t *testing.T) {
	dir := t.TempDir()
	data := append(append([]byte{}, jpegHeader...), bytes.Repeat([]byte{0x42}, 100)...)
	path := writeSpoolFile(t, dir, "IMG_4032.jpg", data)

	in, err := ReadArtifact(path, 1<<20)
	if err != nil {
		t.Fatalf("ReadArtifact() error = %v", err)
	}

	if _, err := uuid.Parse(in.UploadRef); err != nil {
		t.Errorf("UploadRef %q is not a UUID: %v", in.UploadRef, err)
	}
	if in.Filename != "IMG_4032.jpg" {
		t.Errorf("Filename = %q, want base name IMG_4032.jpg", in.Filename)
	}
	if in.MIME != "image/jpeg" {
		t.Errorf("MIME = %q, want image/jpeg", in.MIME)
	}
	if !bytes.Equal(in.Data, data) {
		t.Errorf("Data length = %d, want %d", len(in.Data), len(data))
	}
}

func TestReadArtifact_MIMEFromContentNotExtension(t *testing.T) {
	dir := t.TempDir()

	// PNG bytes behind a .jpg extension sniff as PNG.
	path := writeSpoolFile(t, dir, "mislabeled.jpg", append(append([]byte{}, pngHeader...), 0x00, 0x00))

	in, err := ReadArtifact(path, 0)
	if err != nil {
		t.Fatalf("ReadArtifact() error = %v", err)
	}
	if in.MIME != "image/png" {
		t.Errorf("MIME = %q, want image/png from content sniffing", in.MIME)
	}
}

func TestReadArtifact_FreshReferencePerRead(t *testing.T) {
	dir := t.TempDir()
	path := writeSpoolFile(t, dir, "twice.jpg", jpegHeader)

	first, err := ReadArtifact(path, 0)
	if err != nil {
		t.Fatalf("ReadArtifact() error = %v", err)
	}
	second, err := ReadArtifact(path, 0)
	if err != nil {
		t.Fatalf("ReadArtifact() error = %v", err)
	}
	if first.UploadRef == second.UploadRef {
		t.Errorf("UploadRef reused across reads: %q", first.UploadRef)
	}
}

func TestReadArtifact_SizeLimit(t *testing.T) {
	dir := t.TempDir()
	path := writeSpoolFile(t, dir, "big.jpg", bytes.Repeat([]byte{0x01}, 64))

	_, err := ReadArtifact(path, 16)
	if err == nil {
		t.Fatal("ReadArtifact() error = nil, want size limit rejection")
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("error = %v, want size limit message", err)
	}

	// Zero disables the limit.
	if _, err := ReadArtifact(path, 0); err != nil {
		t.Errorf("ReadArtifact() with no limit error = %v", err)
	}
}

func TestReadArtifact_Rejections(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadArtifact(filepath.Join(dir, "missing.jpg"), 0); err == nil {
		t.Error("ReadArtifact(missing) error = nil, want stat error")
	}

	if _, err := ReadArtifact(dir, 0); err == nil {
		t.Error("ReadArtifact(directory) error = nil, want rejection")
	}

	// Zero-byte files fail envelope validation.
	empty := writeSpoolFile(t, dir, "empty.jpg", nil)
	if _, err := ReadArtifact(empty, 0); err == nil {
		t.Error("ReadArtifact(empty) error = nil, want validation rejection")
	}
}

func TestSniffMIME(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", jpegHeader, "image/jpeg"},
		{"png", pngHeader, "image/png"},
		{"gif", []byte("GIF89a"), "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"unknown binary", []byte{0x00, 0x01, 0x02, 0x03}, "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffMIME(tt.data); got != tt.want {
				t.Errorf("sniffMIME() = %q, want %q", got, tt.want)
			}
		})
	}
}
