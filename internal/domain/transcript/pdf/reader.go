// Package pdf pulls plain text out of uploaded transcript PDFs, page by
// page. Transcripts are third-party documents, so a page that cannot be
// decoded is skipped rather than failing the whole document.
package pdf

import (
	"errors"
	"fmt"
	"io"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
)

// ErrNoText indicates the document decoded but contained no extractable
// text on any page, which usually means a scanned image transcript.
var ErrNoText = errors.New("no extractable text in document")

// ExtractText reads every page of the PDF and returns the concatenated page
// texts joined with newlines. Empty and undecodable pages are skipped.
func ExtractText(r io.ReaderAt, size int64) (string, error) {
	reader, err := ledongthuc.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	return readPages(reader)
}

// ExtractFile is ExtractText for a file on disk.
func ExtractFile(path string) (string, error) {
	f, reader, err := ledongthuc.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	return readPages(reader)
}

func readPages(reader *ledongthuc.Reader) (string, error) {
	var b strings.Builder
	for num := 1; num <= reader.NumPage(); num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
	}

	if b.Len() == 0 {
		return "", ErrNoText
	}
	return b.String(), nil
}
