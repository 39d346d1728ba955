package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/datasheet-miner/internal/common"
	"github.com/joseph-ayodele/datasheet-miner/internal/llm"
)

// Client implements llm.Extractor against the Gemini API.
type Client struct {
	models  generator
	cfg     common.LLMConfig
	prompts *llm.PromptBuilder
	limiter *rate.Limiter
	log     *slog.Logger
}

// generator is the slice of the genai surface the client needs, kept
// as an interface so tests can stub the model.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func NewClient(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  cfg.APIKey,
	})
	if err != nil {
		return nil, common.WrapError(err, "create genai client")
	}
	return newClient(genaiClient.Models, cfg, logger), nil
}

func newClient(models generator, cfg common.LLMConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if cfg.RatePerMin > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMin)), 1)
	}
	return &Client{
		models:  models,
		cfg:     cfg,
		prompts: llm.NewPromptBuilder(),
		limiter: limiter,
		log:     logger,
	}
}

// Extract sends one document to the model and returns its raw text
// response. Transient failures (rate limits, server errors, timeouts)
// are retried with exponential backoff before surfacing as
// ErrExtractionTransient.
func (c *Client) Extract(ctx context.Context, req llm.ExtractRequest) ([]byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"record_type", req.RecordType,
		"source", req.SourceURL,
		"binary_bytes", len(req.Data),
		"text_len", len(req.Text),
		"pages", len(req.Pages),
	)

	contents, config, err := c.buildRequest(req)
	if err != nil {
		return nil, err
	}

	var raw string
	attemptErr := c.retryable(ctx, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%w: rate limiter: %v", common.ErrExtractionFatal, err)
			}
		}
		callCtx := ctx
		var cancel context.CancelFunc
		if c.cfg.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()
		}
		resp, err := c.models.GenerateContent(callCtx, c.cfg.Model, contents, config)
		if err != nil {
			return classify(err)
		}
		raw = resp.Text()
		if strings.TrimSpace(raw) == "" {
			return fmt.Errorf("%w: empty model response", common.ErrExtractionTransient)
		}
		return nil
	})
	if attemptErr != nil {
		c.log.Error("llm.extract.failed",
			"req_id", rid, "error", attemptErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, attemptErr
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"response_bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return []byte(raw), nil
}

func (c *Client) buildRequest(req llm.ExtractRequest) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	system, err := c.prompts.System(string(req.RecordType))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrExtractionFatal, err)
	}
	user, err := c.prompts.User(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrExtractionFatal, err)
	}

	parts := []*genai.Part{genai.NewPartFromText(user)}
	if len(req.Data) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Data, req.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	temp := c.cfg.Temperature
	config := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		Temperature:       &temp,
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	return contents, config, nil
}

// retryable runs call with exponential backoff, retrying only errors
// classified as transient.
func (c *Client) retryable(ctx context.Context, call func() error) error {
	delay := c.cfg.Backoff
	for attempt := 0; ; attempt++ {
		err := call()
		if err == nil {
			if attempt > 0 {
				c.log.Debug("llm.retry.recovered", "attempt", attempt+1)
			}
			return nil
		}
		if !common.IsTransient(err) || attempt >= c.cfg.MaxRetries {
			return err
		}
		c.log.Warn("llm.retry.backoff", "attempt", attempt+1, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", common.ErrExtractionFatal, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// classify maps an API error onto the transient/fatal split. Server
// errors and throttling retry; client errors do not.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code >= 500 {
			return fmt.Errorf("%w: %v", common.ErrExtractionTransient, err)
		}
		return fmt.Errorf("%w: %v", common.ErrExtractionFatal, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", common.ErrExtractionTransient, err)
	}
	return fmt.Errorf("%w: %v", common.ErrExtractionTransient, err)
}
