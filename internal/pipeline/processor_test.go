package processor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/datasheet-miner/internal/content"
	"github.com/joseph-ayodele/datasheet-miner/internal/identity"
	"github.com/joseph-ayodele/datasheet-miner/internal/llm"
	"github.com/joseph-ayodele/datasheet-miner/internal/schema"
	"github.com/joseph-ayodele/datasheet-miner/internal/store"
)

// stubExtractor returns a canned response and records whether it ran.
type stubExtractor struct {
	response string
	called   bool
}

func (s *stubExtractor) Extract(_ context.Context, _ llm.ExtractRequest) ([]byte, error) {
	s.called = true
	return []byte(s.response), nil
}

// captureExtractor keeps the request it was handed for inspection.
type captureExtractor struct {
	response string
	last     llm.ExtractRequest
}

func (c *captureExtractor) Extract(_ context.Context, req llm.ExtractRequest) ([]byte, error) {
	c.last = req
	return []byte(c.response), nil
}

// fakeDDB is an in-memory stand-in for the storage backend: GetItem
// answers from existing SKs, queries answer from naturalHits. Safe for
// concurrent use so queue tests can share one instance.
type fakeDDB struct {
	mu          sync.Mutex
	existingSKs map[string]bool
	naturalHits int
	written     int
}

func (f *fakeDDB) writtenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written
}

func (f *fakeDDB) PutItem(_ context.Context, _ *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDDB) GetItem(_ context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	sk := input.Key["SK"].(*types.AttributeValueMemberS).Value
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existingSKs[sk] {
		return &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
			"PK":           input.Key["PK"],
			"SK":           input.Key["SK"],
			"manufacturer": &types.AttributeValueMemberS{Value: "ACME"},
		}}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDDB) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.naturalHits > 0 {
		return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
			{"manufacturer": &types.AttributeValueMemberS{Value: "ACME"}},
		}}, nil
	}
	return &dynamodb.QueryOutput{}, nil
}

func (f *fakeDDB) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return &dynamodb.ScanOutput{}, nil
}

func (f *fakeDDB) BatchWriteItem(_ context.Context, input *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, reqs := range input.RequestItems {
		f.written += len(reqs)
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

// writeTestPDF assembles a minimal uncompressed PDF with one text line
// per page and writes it to a temp file.
func writeTestPDF(t *testing.T, pageTexts []string) string {
	t.Helper()

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

	path := filepath.Join(t.TempDir(), "datasheet.pdf")
	require.NoError(t, os.WriteFile(path, body.Bytes(), 0o644))
	return path
}

func writeTestHTML(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datasheet.html")
	page := `<html><body><h1>ACME Servo Range</h1>
		<table><tr><td>A1</td><td>2.39 Nm</td></tr></table></body></html>`
	require.NoError(t, os.WriteFile(path, []byte(page), 0o644))
	return path
}

func newTestProcessor(t *testing.T, ddb store.DDBAPI, extractor llm.Extractor) *Processor {
	t.Helper()
	registry, err := schema.NewRegistry()
	require.NoError(t, err)
	engine := store.NewEngine(ddb, "products", nil)
	acquirer := content.NewAcquirer(5*time.Second, nil)
	return NewProcessor(acquirer, extractor, registry, engine, nil)
}

func TestProcessDocumentPersistsFreshRecords(t *testing.T) {
	extractor := &stubExtractor{response: `[
		{"manufacturer":"ACME","part_number":"A1","rated_torque":"2.39;Nm"},
		{"manufacturer":"ACME","part_number":"A2","rated_torque":"4.77;Nm"}
	]`}
	ddb := &fakeDDB{}
	proc := newTestProcessor(t, ddb, extractor)

	summary, err := proc.ProcessDocument(context.Background(), Request{
		Source:     writeTestHTML(t),
		RecordType: "motor",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Found)
	assert.Equal(t, 2, summary.Validated)
	assert.Equal(t, 2, summary.Persisted)
	assert.Equal(t, 0, summary.Duplicates)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, ddb.written)
}

func TestProcessDocumentSkipsStoredDuplicates(t *testing.T) {
	extractor := &stubExtractor{response: `[
		{"manufacturer":"ACME","part_number":"A1"},
		{"manufacturer":"ACME","part_number":"A2"}
	]`}
	existingSK := "PRODUCT#" + identity.NewID("acme:a1").String()
	ddb := &fakeDDB{existingSKs: map[string]bool{existingSK: true}}
	proc := newTestProcessor(t, ddb, extractor)

	summary, err := proc.ProcessDocument(context.Background(), Request{
		Source:     writeTestHTML(t),
		RecordType: "motor",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Found)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 1, summary.Persisted)
	assert.Equal(t, 1, ddb.written)
}

func TestProcessDocumentRestrictsPDFToRequestedPages(t *testing.T) {
	extractor := &captureExtractor{response: `[{"manufacturer":"ACME","part_number":"A1"}]`}
	ddb := &fakeDDB{}
	proc := newTestProcessor(t, ddb, extractor)

	summary, err := proc.ProcessDocument(context.Background(), Request{
		Source:     writeTestPDF(t, []string{"AlphaTorque", "BetaSpeed"}),
		RecordType: "motor",
		Pages:      "1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Persisted)

	assert.Contains(t, extractor.last.Text, "AlphaTorque")
	assert.NotContains(t, extractor.last.Text, "BetaSpeed")
	assert.Empty(t, extractor.last.Data, "page-restricted pdf must not travel as raw bytes")
	assert.Empty(t, extractor.last.Pages)
}

func TestProcessDocumentSendsWholePDFWithoutPageSubset(t *testing.T) {
	extractor := &captureExtractor{response: `[{"manufacturer":"ACME","part_number":"A1"}]`}
	proc := newTestProcessor(t, &fakeDDB{}, extractor)

	_, err := proc.ProcessDocument(context.Background(), Request{
		Source:     writeTestPDF(t, []string{"AlphaTorque"}),
		RecordType: "motor",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, extractor.last.Data)
	assert.Equal(t, "application/pdf", extractor.last.MIMEType)
	assert.Empty(t, extractor.last.Text)
}

func TestProcessDocumentDropsRepeatedKeysInOneResponse(t *testing.T) {
	extractor := &stubExtractor{response: `[
		{"manufacturer":"ACME","part_number":"A-1"},
		{"manufacturer":"acme","part_number":"a1"}
	]`}
	ddb := &fakeDDB{}
	proc := newTestProcessor(t, ddb, extractor)

	summary, err := proc.ProcessDocument(context.Background(), Request{
		Source:     writeTestHTML(t),
		RecordType: "motor",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Found)
	assert.Equal(t, 1, summary.Persisted)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 1, ddb.writtenCount(), "the shared key must reach the batch once")
}

func TestProcessDocumentKnownProductShortCircuit(t *testing.T) {
	extractor := &stubExtractor{response: `[]`}
	ddb := &fakeDDB{naturalHits: 1}
	proc := newTestProcessor(t, ddb, extractor)

	summary, err := proc.ProcessDocument(context.Background(), Request{
		Source:       writeTestHTML(t),
		RecordType:   "motor",
		Manufacturer: "ACME",
		ProductName:  "Super Servo 9",
	})
	require.NoError(t, err)

	assert.True(t, summary.Skipped)
	assert.False(t, extractor.called, "known product must not reach the model")
}

func TestProcessDocumentCountsUnidentifiableRecords(t *testing.T) {
	extractor := &stubExtractor{response: `[
		{"manufacturer":"ACME","part_number":"A1"},
		{"manufacturer":"ACME"}
	]`}
	ddb := &fakeDDB{}
	proc := newTestProcessor(t, ddb, extractor)

	summary, err := proc.ProcessDocument(context.Background(), Request{
		Source:     writeTestHTML(t),
		RecordType: "motor",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Found)
	assert.Equal(t, 1, summary.Persisted)
	assert.Equal(t, 1, summary.Failed)
}

func TestProcessDocumentRejectsUnknownType(t *testing.T) {
	proc := newTestProcessor(t, &fakeDDB{}, &stubExtractor{})

	_, err := proc.ProcessDocument(context.Background(), Request{
		Source:     "whatever.pdf",
		RecordType: "toaster",
	})
	assert.Error(t, err)
}

func TestProcessDocumentCanonicalizesTypeSynonyms(t *testing.T) {
	extractor := &stubExtractor{response: `[{"manufacturer":"ACME","part_number":"G1","gear_ratio":10}]`}
	ddb := &fakeDDB{}
	proc := newTestProcessor(t, ddb, extractor)

	summary, err := proc.ProcessDocument(context.Background(), Request{
		Source:     writeTestHTML(t),
		RecordType: "gearbox",
	})
	require.NoError(t, err)
	assert.Equal(t, "gearhead", summary.RecordType)
	assert.Equal(t, 1, summary.Persisted)
}
