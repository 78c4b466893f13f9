package reader

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ReadPDFPages extracts plain text per page from a PDF statement. Pages that
// yield no text are skipped; a document with no extractable text at all is
// unreadable.
func (r *StatementReader) ReadPDFPages(path string) ([]string, error) {
	f, doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening pdf: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			r.logger.Warn("skipping unreadable pdf page", "file", path, "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no extractable text in %s", ErrUnreadableFile, path)
	}

	return pages, nil
}
