package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/datasheet-miner/constants"
	"github.com/joseph-ayodele/datasheet-miner/internal/common"
	"github.com/joseph-ayodele/datasheet-miner/internal/content"
	"github.com/joseph-ayodele/datasheet-miner/internal/entity"
	"github.com/joseph-ayodele/datasheet-miner/internal/identity"
	"github.com/joseph-ayodele/datasheet-miner/internal/llm"
	"github.com/joseph-ayodele/datasheet-miner/internal/reconcile"
	"github.com/joseph-ayodele/datasheet-miner/internal/schema"
	"github.com/joseph-ayodele/datasheet-miner/internal/store"
)

// Request describes one datasheet to mine.
type Request struct {
	Source     string               `json:"url"`
	RecordType constants.RecordType `json:"type"`
	Pages      string               `json:"pages,omitempty"` // one-based, e.g. "1,3:5"

	// Optional caller-known context, overlaid on model output.
	ProductName   string `json:"product_name,omitempty"`
	Manufacturer  string `json:"manufacturer,omitempty"`
	ProductFamily string `json:"product_family,omitempty"`
}

// Summary is the per-document outcome report.
type Summary struct {
	Source     string `json:"source"`
	RecordType string `json:"type"`
	Skipped    bool   `json:"skipped,omitempty"` // known product, no model call made
	Found      int    `json:"found"`             // objects recovered from model output
	Validated  int    `json:"validated"`         // objects that passed schema + identity
	Duplicates int    `json:"duplicates"`        // already persisted, not rewritten
	Persisted  int    `json:"persisted"`
	Failed     int    `json:"failed"`
	Error      string `json:"error,omitempty"`

	// Populated only when the processor is configured to keep records.
	Records []*entity.Record `json:"records,omitempty"`
}

// Processor coordinates fetch, extraction, reconciliation, identity and
// persistence for one datasheet at a time.
type Processor struct {
	Acquirer   *content.Acquirer
	Extractor  llm.Extractor
	Registry   *schema.Registry
	Reconciler *reconcile.Reconciler
	Resolver   *identity.Resolver
	Store      *store.Engine
	Logger     *slog.Logger

	// KeepRecords attaches the validated records to each Summary so
	// callers can write them out alongside the counts.
	KeepRecords bool
}

func NewProcessor(acquirer *content.Acquirer, extractor llm.Extractor, registry *schema.Registry, engine *store.Engine, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Acquirer:   acquirer,
		Extractor:  extractor,
		Registry:   registry,
		Reconciler: reconcile.NewReconciler(registry, logger),
		Resolver:   identity.NewResolver(engine, logger),
		Store:      engine,
		Logger:     logger,
	}
}

// ProcessDocument runs the full path for one request. Per-object
// failures are tallied, not fatal; the returned error covers only
// failures that sink the whole document (fetch, extraction, zero
// parseable objects).
func (p *Processor) ProcessDocument(ctx context.Context, req Request) (Summary, error) {
	start := time.Now()
	summary := Summary{Source: req.Source, RecordType: string(req.RecordType)}

	rt, ok := constants.Canonicalize(string(req.RecordType))
	if !ok {
		err := fmt.Errorf("%w: unknown record type %q", common.ErrValidation, req.RecordType)
		summary.Error = err.Error()
		return summary, err
	}
	req.RecordType = rt
	summary.RecordType = string(rt)

	// Known-product short circuit: when the caller already names the
	// product and it is stored, skip the model call entirely.
	if req.ProductName != "" && req.Manufacturer != "" {
		exists, err := p.Resolver.ExistsByNaturalKey(ctx, req.RecordType, req.Manufacturer, req.ProductName)
		if err != nil {
			summary.Error = err.Error()
			return summary, err
		}
		if exists {
			p.Logger.Info("pipeline.skip.known_product",
				"source", req.Source,
				"manufacturer", req.Manufacturer,
				"product_name", req.ProductName,
			)
			summary.Skipped = true
			return summary, nil
		}
	}

	pages, err := content.ParsePageRanges(req.Pages)
	if err != nil {
		summary.Error = err.Error()
		return summary, err
	}

	doc, err := p.Acquirer.Fetch(ctx, req.Source, pages)
	if err != nil {
		summary.Error = err.Error()
		return summary, err
	}

	extractReq, err := p.buildExtractRequest(req, doc)
	if err != nil {
		summary.Error = err.Error()
		return summary, err
	}

	raw, err := p.Extractor.Extract(ctx, extractReq)
	if err != nil {
		summary.Error = err.Error()
		return summary, err
	}

	objs, err := p.Reconciler.Parse(string(raw))
	if err != nil {
		summary.Error = err.Error()
		return summary, err
	}
	summary.Found = len(objs)

	mctx := reconcile.Context{
		ProductName:   req.ProductName,
		Manufacturer:  req.Manufacturer,
		ProductFamily: req.ProductFamily,
		DatasheetURL:  req.Source,
		Pages:         pages,
	}
	records, dropped := p.Reconciler.ReconcileAll(objs, mctx, req.RecordType)
	summary.Failed += len(dropped)

	fresh := p.resolveAndFilter(ctx, records, &summary)
	summary.Validated = len(fresh) + summary.Duplicates
	if p.KeepRecords {
		summary.Records = fresh
	}

	if len(fresh) > 0 {
		persisted, failed := p.Store.BatchWrite(ctx, fresh)
		summary.Persisted = persisted
		summary.Failed += failed
	}

	p.Logger.Info("pipeline.document.done",
		"source", req.Source,
		"type", req.RecordType,
		"found", summary.Found,
		"validated", summary.Validated,
		"persisted", summary.Persisted,
		"duplicates", summary.Duplicates,
		"failed", summary.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return summary, nil
}

// resolveAndFilter assigns identities and drops records that are
// already stored, repeated within the response, or cannot be
// identified. Two objects resolving to the same id in one document
// would collide inside a single batch write, so only the first one
// survives.
func (p *Processor) resolveAndFilter(ctx context.Context, records []*entity.Record, summary *Summary) []*entity.Record {
	fresh := make([]*entity.Record, 0, len(records))
	seen := make(map[uuid.UUID]bool, len(records))
	for _, rec := range records {
		if err := p.Resolver.Resolve(rec); err != nil {
			p.Logger.Warn("pipeline.record.unidentifiable", "source", summary.Source, "error", err)
			summary.Failed++
			continue
		}
		if seen[rec.ID] {
			p.Logger.Info("pipeline.record.duplicate", "id", rec.ID, "part_number", rec.PartNumber)
			summary.Duplicates++
			continue
		}
		exists, err := p.Resolver.Exists(ctx, rec.ID, rec.RecordType)
		if err != nil {
			if errors.Is(err, common.ErrStorage) {
				p.Logger.Warn("pipeline.record.exists_check_failed", "id", rec.ID, "error", err)
			}
			summary.Failed++
			continue
		}
		if exists {
			p.Logger.Info("pipeline.record.duplicate", "id", rec.ID, "part_number", rec.PartNumber)
			summary.Duplicates++
			continue
		}
		seen[rec.ID] = true
		fresh = append(fresh, rec)
	}
	return fresh
}

// buildExtractRequest shapes the document for the model: HTML is
// reduced to text, a PDF with a page subset is reduced to the text of
// those pages, and whole PDFs travel as raw bytes.
func (p *Processor) buildExtractRequest(req Request, doc *content.Document) (llm.ExtractRequest, error) {
	schemaJSON, err := p.Registry.SchemaJSON(req.RecordType)
	if err != nil {
		return llm.ExtractRequest{}, err
	}
	out := llm.ExtractRequest{
		RecordType: req.RecordType,
		SchemaJSON: []byte(schemaJSON),
		SourceURL:  doc.SourceURL,
		Pages:      doc.Pages,
	}
	switch doc.Kind {
	case content.KindHTML:
		text, err := content.HTMLText(doc)
		if err != nil {
			return llm.ExtractRequest{}, err
		}
		out.Text = text
	case content.KindPDF:
		if len(doc.Pages) > 0 {
			text, err := content.PDFText(doc)
			if err == nil && text != "" {
				// The text already covers only the selected pages,
				// so no page note is needed in the prompt.
				out.Text = text
				out.Pages = nil
				return out, nil
			}
			p.Logger.Warn("pipeline.pdf.page_text_unavailable",
				"source", doc.SourceURL, "pages", doc.Pages, "error", err)
		}
		out.Data = doc.Data
		out.MIMEType = doc.MIMEType
	default:
		out.Data = doc.Data
		out.MIMEType = doc.MIMEType
	}
	return out, nil
}
