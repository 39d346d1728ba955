package llm

import (
	"context"

	"github.com/joseph-ayodele/datasheet-miner/constants"
)

// ExtractRequest carries one document plus everything the model needs
// to turn it into structured rows.
type ExtractRequest struct {
	RecordType constants.RecordType
	SchemaJSON []byte // JSON Schema the response must match

	// Exactly one of Data/Text is set. Data is the raw document bytes
	// (PDF), Text is pre-extracted plain text (HTML pages).
	Data     []byte
	MIMEType string
	Text     string

	SourceURL string
	Pages     []int // zero-based page indices, empty means all
}

// Extractor is the interface the pipeline depends on. Implementations
// return the model's raw textual response; parsing and validation
// happen downstream.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) ([]byte, error)
}
