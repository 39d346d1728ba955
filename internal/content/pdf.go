package content

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/datasheet-miner/internal/common"
)

// PDFText extracts plain text from the document's selected pages.
// Page indices outside the document are ignored; unreadable pages are
// skipped rather than failing the whole document.
func PDFText(doc *Document) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", common.ErrContentFetch, err)
	}

	wanted := make(map[int]bool, len(doc.Pages))
	for _, p := range doc.Pages {
		wanted[p] = true
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if len(wanted) > 0 && !wanted[i-1] {
			continue
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)
	}
	return strings.TrimSpace(text.String()), nil
}

// PageCount reports the number of pages, or 0 when the bytes are not a
// readable PDF.
func PageCount(data []byte) int {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return r.NumPage()
}
