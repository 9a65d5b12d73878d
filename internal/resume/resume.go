// Package resume extracts plain text from uploaded resume PDFs so it can be
// folded into question generation prompts.
package resume

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxUploadSize caps accepted resume uploads.
const MaxUploadSize = 10 << 20

// maxTextLength caps the extracted text fed into prompts.
const maxTextLength = 8000

// ExtractText parses the PDF and returns its concatenated text content,
// whitespace-normalized and truncated to a prompt-safe length.
func ExtractText(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	raw, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}

	text := normalize(string(raw))
	if text == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}
	return text, nil
}

// normalize collapses runs of whitespace into single spaces and truncates at
// a word boundary.
func normalize(s string) string {
	text := strings.Join(strings.Fields(s), " ")
	if len(text) <= maxTextLength {
		return text
	}
	cut := text[:maxTextLength]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut
}
