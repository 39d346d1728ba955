package gemini

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/datasheet-miner/constants"
	"github.com/joseph-ayodele/datasheet-miner/internal/common"
	"github.com/joseph-ayodele/datasheet-miner/internal/llm"
)

// stubModels fails a set number of times before answering.
type stubModels struct {
	failures int
	failWith error
	response string
	calls    int
}

func (s *stubModels) GenerateContent(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, s.failWith
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: s.response}}},
		}},
	}, nil
}

func testCfg() common.LLMConfig {
	return common.LLMConfig{
		Model:      "gemini-2.5-flash",
		MaxRetries: 3,
		Backoff:    time.Millisecond,
	}
}

func testRequest() llm.ExtractRequest {
	return llm.ExtractRequest{
		RecordType: constants.Motor,
		SchemaJSON: []byte(`{"type":"object"}`),
		SourceURL:  "https://example.com/ds.pdf",
		Text:       "Rated torque 2.39 Nm",
	}
}

func TestExtractRetriesTransientErrors(t *testing.T) {
	models := &stubModels{
		failures: 2,
		failWith: genai.APIError{Code: 503, Message: "overloaded"},
		response: `[{"manufacturer":"ACME"}]`,
	}
	client := newClient(models, testCfg(), nil)

	raw, err := client.Extract(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, `[{"manufacturer":"ACME"}]`, string(raw))
	assert.Equal(t, 3, models.calls)
}

func TestExtractDoesNotRetryFatalErrors(t *testing.T) {
	models := &stubModels{
		failures: 10,
		failWith: genai.APIError{Code: 400, Message: "invalid request"},
	}
	client := newClient(models, testCfg(), nil)

	_, err := client.Extract(context.Background(), testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionFatal)
	assert.Equal(t, 1, models.calls)
}

func TestExtractGivesUpAfterMaxRetries(t *testing.T) {
	models := &stubModels{
		failures: 10,
		failWith: genai.APIError{Code: 429, Message: "rate limited"},
	}
	client := newClient(models, testCfg(), nil)

	_, err := client.Extract(context.Background(), testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionTransient)
	assert.Equal(t, 4, models.calls) // initial attempt + 3 retries
}

func TestExtractTreatsEmptyResponseAsTransient(t *testing.T) {
	models := &stubModels{response: "   "}
	client := newClient(models, testCfg(), nil)

	_, err := client.Extract(context.Background(), testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionTransient)
}
