package content

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/joseph-ayodele/datasheet-miner/internal/common"
)

// Kind classifies a fetched document by its sniffed content type.
type Kind int

const (
	KindUnknown Kind = iota
	KindPDF
	KindHTML
)

// Document is one acquired datasheet, ready for extraction.
type Document struct {
	SourceURL string
	Kind      Kind
	MIMEType  string
	Data      []byte
	Pages     []int // zero-based page subset, empty means all
}

// Acquirer fetches datasheet bytes from URLs or local paths.
type Acquirer struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func NewAcquirer(timeout time.Duration, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Fetch retrieves source (http(s) URL or local file path), sniffs the
// real content type from the bytes and returns the document with the
// parsed page subset attached.
func (a *Acquirer) Fetch(ctx context.Context, source string, pages []int) (*Document, error) {
	start := time.Now()
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = a.fetchURL(ctx, source)
	} else {
		data, err = os.ReadFile(source)
		if err != nil {
			err = fmt.Errorf("%w: read file %s: %v", common.ErrContentFetch, source, err)
		}
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document at %s", common.ErrContentFetch, source)
	}

	mtype := mimetype.Detect(data)
	doc := &Document{
		SourceURL: source,
		MIMEType:  mtype.String(),
		Data:      data,
		Pages:     pages,
	}
	switch {
	case mtype.Is("application/pdf"):
		doc.Kind = KindPDF
	case mtype.Is("text/html"):
		doc.Kind = KindHTML
	}

	if doc.Kind == KindPDF {
		if n := PageCount(data); n > 0 {
			for _, pg := range pages {
				if pg >= n {
					a.logger.Warn("content.fetch.page_out_of_range",
						"source", source, "page", pg+1, "pdf_pages", n)
				}
			}
		}
	}

	a.logger.Info("content.fetch.ok",
		"source", source,
		"bytes", len(data),
		"mime", doc.MIMEType,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

func (a *Acquirer) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", common.ErrContentFetch, err)
	}
	req.Header.Set("User-Agent", "datasheet-miner/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", common.ErrContentFetch, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: get %s: status %d", common.ErrContentFetch, url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body of %s: %v", common.ErrContentFetch, url, err)
	}
	return data, nil
}
