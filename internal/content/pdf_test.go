package content

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTestPDF assembles a minimal uncompressed PDF with one text line
// per page, computing the xref offsets as it goes.
func buildTestPDF(pageTexts []string) []byte {
	var body bytes.Buffer
	body.WriteString("%PDF-1.4\n")

	var offsets []int
	addObj := func(s string) {
		offsets = append(offsets, body.Len())
		body.WriteString(s)
	}

	kids := make([]string, len(pageTexts))
	for i := range pageTexts {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	addObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	addObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), len(pageTexts)))
	addObj("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	for i, text := range pageTexts {
		pageObj := 4 + 2*i
		addObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>\nendobj\n",
			pageObj, pageObj+1))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		addObj(fmt.Sprintf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			pageObj+1, len(stream), stream))
	}

	xrefOffset := body.Len()
	fmt.Fprintf(&body, "xref\n0 %d\n", len(offsets)+1)
	body.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&body, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&body, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset)
	return body.Bytes()
}

func TestPDFTextSelectsRequestedPages(t *testing.T) {
	data := buildTestPDF([]string{"AlphaTorque", "BetaSpeed", "GammaMass"})

	doc := &Document{Kind: KindPDF, Data: data, Pages: []int{0, 2}}
	text, err := PDFText(doc)
	require.NoError(t, err)

	assert.Contains(t, text, "AlphaTorque")
	assert.NotContains(t, text, "BetaSpeed")
	assert.Contains(t, text, "GammaMass")
}

func TestPDFTextAllPagesWhenUnrestricted(t *testing.T) {
	data := buildTestPDF([]string{"AlphaTorque", "BetaSpeed"})

	text, err := PDFText(&Document{Kind: KindPDF, Data: data})
	require.NoError(t, err)

	assert.Contains(t, text, "AlphaTorque")
	assert.Contains(t, text, "BetaSpeed")
}

func TestPDFTextIgnoresOutOfRangePages(t *testing.T) {
	data := buildTestPDF([]string{"AlphaTorque"})

	text, err := PDFText(&Document{Kind: KindPDF, Data: data, Pages: []int{0, 9}})
	require.NoError(t, err)
	assert.Contains(t, text, "AlphaTorque")
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 3, PageCount(buildTestPDF([]string{"a", "b", "c"})))
	assert.Equal(t, 0, PageCount([]byte("%PDF-1.4 not really a pdf")))
}
