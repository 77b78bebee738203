// Package ingest handles getting raw article text into the library:
// reading supported files, detecting bibliographic metadata, and
// watching a directory for new material.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
)

// supportedExtensions lists file types medsearch can extract text
// from. PDFs require an external conversion step before ingestion.
var supportedExtensions = map[string]struct{}{
	".txt":      {},
	".md":       {},
	".markdown": {},
}

// Supported reports whether the file type can be ingested.
func Supported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// LoadText reads the full text of a supported file. Unsupported
// extensions return domain.ErrUnsupportedFile.
func LoadText(path string) (string, error) {
	if !Supported(path) {
		return "", fmt.Errorf("%s: %w", path, domain.ErrUnsupportedFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return string(data), nil
}
