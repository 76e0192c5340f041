package guidelines

import (
	"bytes"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/guidesync/pkg/formatting"
)

const pdfContentType = "application/pdf"

// checkFile rejects payloads that are not PDFs, are empty, or exceed maxSize bytes.
func checkFile(f *File, maxSize int64) error {
	mediaType, _, err := mime.ParseMediaType(f.ContentType)
	if err != nil || mediaType != pdfContentType {
		return fmt.Errorf("%w: only PDF files are allowed", ErrInvalidFile)
	}
	if len(f.Data) == 0 {
		return fmt.Errorf("%w: file is empty", ErrInvalidFile)
	}
	if int64(len(f.Data)) > maxSize {
		return fmt.Errorf("%w: limit is %s", ErrFileTooLarge, formatting.FormatBytes(maxSize, 0))
	}
	return nil
}

// buildStorageKey derives a unique object key for a guideline file upload.
func buildStorageKey(id uuid.UUID, at time.Time, filename string) string {
	return fmt.Sprintf("guidelines/%s/%d-%s", id, at.UnixMilli(), sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		name = "guideline.pdf"
	}
	return url.PathEscape(name)
}

// downloadFilename recovers the original filename from a storage key.
func downloadFilename(key string) string {
	base := path.Base(key)
	if _, name, found := strings.Cut(base, "-"); found {
		base = name
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		return unescaped
	}
	return base
}

func extractPageCount(logger *slog.Logger, data []byte) *int {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}
	return &count
}
