package textextract

import (
	"errors"
	"strings"
)

// ErrUnsupportedType is returned for file extensions no extractor handles.
var ErrUnsupportedType = errors.New("unsupported file type")

// Extractor pulls plain text out of an uploaded document. PDF and DOCX
// extraction are external collaborators behind this same contract.
type Extractor interface {
	Extract(filename string, content []byte) (string, error)
}

type plainTextExtractor struct{}

// NewPlainText returns the built-in extractor, which handles .txt uploads.
func NewPlainText() Extractor {
	return plainTextExtractor{}
}

func (plainTextExtractor) Extract(filename string, content []byte) (string, error) {
	lower := strings.ToLower(filename)
	if !strings.HasSuffix(lower, ".txt") {
		return "", ErrUnsupportedType
	}
	return string(content), nil
}
