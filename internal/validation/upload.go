package validation

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	apierrors "trainpulse/internal/errors"
)

// File signature checked before the payload reaches the workbook parser.
// The accepted xlsx family is zip-based; legacy OLE workbooks are rejected
// at the extension allow-list and never get here.
var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// UploadValidator checks uploaded payloads against their claimed file type
// before parsing starts.
type UploadValidator struct {
	logger *slog.Logger
}

// NewUploadValidator creates a new upload validator
func NewUploadValidator(logger *slog.Logger) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadValidator{
		logger: logger.With(slog.String("component", "upload_validator")),
	}
}

// Validate checks the payload content against the filename's extension.
// Extension allow-listing happens earlier; by the time we get here the
// extension is one we accept, so a mismatch means the content is not what
// the name claims.
func (v *UploadValidator) Validate(filename string, data []byte) error {
	if len(data) == 0 {
		return apierrors.NewUploadError(fmt.Sprintf("uploaded file %s is empty", filename), nil)
	}

	base := filepath.Base(filename)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("rejecting temporary Excel file",
			slog.String("filename", filename))
		return apierrors.NewUploadError(fmt.Sprintf("file %s is a temporary Excel lock file", filename), nil)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xlsm":
		if !bytes.HasPrefix(data, zipMagic) {
			return apierrors.NewUploadError(fmt.Sprintf("file %s is not a valid workbook archive", filename), nil)
		}
	case ".csv":
		if err := validateDelimitedText(filename, data); err != nil {
			return err
		}
	}

	v.logger.Debug("upload payload validated",
		slog.String("filename", filename),
		slog.Int("size_bytes", len(data)))
	return nil
}

// validateDelimitedText rejects binary payloads renamed to .csv. Scanning a
// bounded prefix is enough; real delimited text never contains NUL bytes.
func validateDelimitedText(filename string, data []byte) error {
	prefix := data
	if len(prefix) > 512 {
		prefix = prefix[:512]
	}
	if bytes.IndexByte(prefix, 0x00) >= 0 {
		return apierrors.NewUploadError(fmt.Sprintf("file %s is not delimited text", filename), nil)
	}
	return nil
}
