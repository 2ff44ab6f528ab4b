package ingest

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// PDFSource adapts a PDF file on disk to the DocumentSource interface.
type PDFSource struct {
	file   *os.File
	reader *pdf.Reader
}

// OpenPDF opens the report at path for page-text extraction. An unreadable
// or corrupt file is the one hard failure of an audit run, so the error is
// returned to the caller rather than recovered.
func OpenPDF(path string) (*PDFSource, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &PDFSource{file: file, reader: reader}, nil
}

// PageCount returns the number of pages in the document.
func (s *PDFSource) PageCount() int {
	return s.reader.NumPage()
}

// PageText returns the plain text of page i (zero-based). Pages the reader
// cannot resolve yield empty text rather than an error, matching how absent
// content is treated elsewhere in the selector.
func (s *PDFSource) PageText(i int) (string, error) {
	page := s.reader.Page(i + 1) // the reader numbers pages from 1
	if page.V.IsNull() {
		return "", nil
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract text from page %d: %w", i, err)
	}
	return text, nil
}

// Close releases the underlying file handle.
func (s *PDFSource) Close() error {
	return s.file.Close()
}
