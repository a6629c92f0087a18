// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package ingest

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/skygate-forensics/skygate/internal/analysis"
	"github.com/skygate-forensics/skygate/internal/validation"
)

// sniffLen is how many leading bytes content-type detection looks at.
const sniffLen = 512

// intakeEnvelope is the validation surface for an artifact entering the
// pipeline. Spool files carry no client metadata, so every field here is
// derived from the file itself.
type intakeEnvelope struct {
	UploadRef string `validate:"required,uuid4"`
	Filename  string `validate:"required,max=512"`
	MIME      string `validate:"required"`
	Size      int64  `validate:"gt=0"`
}

// ReadArtifact loads a file into an immutable detection input. The upload
// reference is minted here: artifacts arriving through the spool (or the
// one-shot CLI) have no upstream identifier of their own. The declared MIME
// type is sniffed from content, never taken from the extension.
func ReadArtifact(path string, maxSize int64) (analysis.Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		return analysis.Input{}, fmt.Errorf("stat artifact: %w", err)
	}
	if info.IsDir() {
		return analysis.Input{}, fmt.Errorf("artifact %s is a directory", path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return analysis.Input{}, fmt.Errorf("artifact %s is %d bytes, exceeds the %d byte limit",
			filepath.Base(path), info.Size(), maxSize)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the operator-configured spool directory or CLI arguments
	if err != nil {
		return analysis.Input{}, fmt.Errorf("read artifact: %w", err)
	}

	in := analysis.Input{
		UploadRef: uuid.New().String(),
		Filename:  filepath.Base(path),
		MIME:      sniffMIME(data),
		Data:      data,
	}

	envelope := intakeEnvelope{
		UploadRef: in.UploadRef,
		Filename:  in.Filename,
		MIME:      in.MIME,
		Size:      int64(len(data)),
	}
	if verr := validation.ValidateStruct(envelope); verr != nil {
		return analysis.Input{}, fmt.Errorf("invalid artifact %s: %w", in.Filename, verr)
	}

	return in, nil
}

// sniffMIME detects the content type from the leading bytes of data.
func sniffMIME(data []byte) string {
	n := len(data)
	if n > sniffLen {
		n = sniffLen
	}
	return http.DetectContentType(data[:n])
}
