package doctext

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

// maxTextBytes bounds the text handed to the classifier; anything past it
// adds nothing to keyword matching.
const maxTextBytes = 64 * 1024

// Extractor pulls plain text out of uploaded files for content-based
// classification. PDFs go through the pdf parser, UTF-8 payloads are taken
// verbatim. Images and other binaries yield no text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, filename, mediaType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", nil
	}

	if isPDF(filename, mediaType, data) {
		return extractPDF(data)
	}
	if utf8.Valid(data) {
		return clip(strings.TrimSpace(string(data))), nil
	}
	return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract text",
		fmt.Errorf("no text extractor for %q (%s)", filename, mediaType))
}

func isPDF(filename, mediaType string, data []byte) bool {
	if strings.EqualFold(mediaType, "application/pdf") {
		return true
	}
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return clip(strings.TrimSpace(buf.String())), nil
}

func clip(text string) string {
	if len(text) <= maxTextBytes {
		return text
	}
	return text[:maxTextBytes]
}
