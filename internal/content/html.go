package content

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joseph-ayodele/datasheet-miner/internal/common"
)

var reBlankLines = regexp.MustCompile(`\n{3,}`)

// HTMLText strips an HTML page down to its visible text. Script and
// style bodies are removed; table cells keep their separation so
// specification tables survive as readable rows.
func HTMLText(doc *Document) (string, error) {
	q, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Data))
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %v", common.ErrContentFetch, err)
	}

	q.Find("script, style, noscript").Remove()
	q.Find("td, th").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\t")
	})
	q.Find("tr, p, li, h1, h2, h3, h4, h5, h6, div").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	text := q.Text()
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")
	text = reBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text), nil
}
