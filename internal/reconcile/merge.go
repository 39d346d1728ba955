package reconcile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/datasheet-miner/constants"
	"github.com/joseph-ayodele/datasheet-miner/internal/entity"
	"github.com/joseph-ayodele/datasheet-miner/internal/schema"
)

// Context carries what the caller already knows about the document being
// mined; it is overlaid onto whatever the model returned.
type Context struct {
	ProductName   string
	Manufacturer  string
	ProductFamily string
	DatasheetURL  string
	Pages         []int
}

// Reconciler turns raw model output into schema-validated records.
type Reconciler struct {
	registry *schema.Registry
	logger   *slog.Logger
}

func NewReconciler(registry *schema.Registry, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{registry: registry, logger: logger}
}

// Parse recovers raw objects from model output text.
func (r *Reconciler) Parse(raw string) ([]map[string]any, error) {
	return Parse(raw, r.logger)
}

// identityFields the model must never supply; identity is derived, not
// extracted.
var identityFields = []string{"id", "_id", "product_id", "item_id"}

// MergeAndValidate overlays known context onto a raw object, forces the
// record type from the caller, strips model-supplied identity, and
// validates the result against the registered schema for rt.
func (r *Reconciler) MergeAndValidate(obj map[string]any, mctx Context, rt constants.RecordType) (*entity.Record, error) {
	for _, f := range identityFields {
		delete(obj, f)
	}
	// The type tag comes from the caller, never from the object.
	delete(obj, "type")
	delete(obj, "product_type")

	overlayString(obj, "manufacturer", mctx.Manufacturer)
	overlayString(obj, "product_name", mctx.ProductName)
	overlayString(obj, "product_family", mctx.ProductFamily)

	// Provenance is always the caller's: the model has no say in where
	// its input came from.
	datasheet := map[string]any{"url": mctx.DatasheetURL}
	if len(mctx.Pages) > 0 {
		pages := make([]any, len(mctx.Pages))
		for i, p := range mctx.Pages {
			pages[i] = p
		}
		datasheet["pages"] = pages
	}
	obj["datasheet"] = datasheet

	obj = normalizeQuantities(obj)

	encoded, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode merged object: %w", err)
	}
	if err := r.registry.Validate(rt, encoded); err != nil {
		return nil, err
	}

	rec := &entity.Record{
		RecordType:    rt,
		Manufacturer:  popString(obj, "manufacturer"),
		PartNumber:    popString(obj, "part_number"),
		ProductName:   popString(obj, "product_name"),
		ProductFamily: popString(obj, "product_family"),
		Series:        popString(obj, "series"),
		Provenance: entity.Provenance{
			URL:   mctx.DatasheetURL,
			Pages: mctx.Pages,
		},
	}
	delete(obj, "datasheet")
	rec.Fields = obj
	return rec, nil
}

// ReconcileAll merges and validates every raw object, collecting records
// and per-item errors; one bad object never aborts the batch.
func (r *Reconciler) ReconcileAll(objs []map[string]any, mctx Context, rt constants.RecordType) ([]*entity.Record, []error) {
	records := make([]*entity.Record, 0, len(objs))
	var errs []error
	for i, obj := range objs {
		rec, err := r.MergeAndValidate(obj, mctx, rt)
		if err != nil {
			r.logger.Warn("reconcile.item_dropped", "index", i, "error", err)
			errs = append(errs, fmt.Errorf("object %d: %w", i, err))
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}

func overlayString(obj map[string]any, key, val string) {
	if val == "" {
		return
	}
	if cur, ok := obj[key].(string); ok && strings.TrimSpace(cur) != "" {
		return
	}
	obj[key] = val
}

func popString(obj map[string]any, key string) string {
	v, ok := obj[key].(string)
	if ok {
		delete(obj, key)
		return strings.TrimSpace(v)
	}
	return ""
}
