package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/datasheet-miner/constants"
	"github.com/joseph-ayodele/datasheet-miner/internal/common"
	"github.com/joseph-ayodele/datasheet-miner/internal/entity"
)

// Namespace is the fixed UUIDv5 namespace for product ids. It is pinned:
// changing it (or the hash) would re-identify every product already
// persisted, so identical (namespace, key) inputs must produce the
// identical id across processes and over time.
var Namespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// Lookup is the subset of the storage engine the resolver needs for
// duplicate detection.
type Lookup interface {
	Read(ctx context.Context, id uuid.UUID, rt constants.RecordType) (*entity.Record, error)
	ExistsByNaturalKey(ctx context.Context, rt constants.RecordType, manufacturer, productName string) (bool, error)
}

// Resolver derives deterministic record ids and detects duplicates.
type Resolver struct {
	store  Lookup
	logger *slog.Logger
}

func NewResolver(store Lookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// Normalize lowercases, trims, and strips every rune that is not an
// ASCII letter or digit, so "Nidec Corp." and "NIDEC-CORP" collapse to
// the same token.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DeriveKey builds the natural key for a record. Manufacturer+part
// number is the preferred identity; manufacturer+product name is the
// lower-confidence fallback. Without either pair there is no way to
// guarantee non-duplication, so the record is rejected.
func DeriveKey(rec *entity.Record) (key string, lowConfidence bool, err error) {
	manufacturer := Normalize(rec.Manufacturer)
	partNumber := Normalize(rec.PartNumber)
	name := Normalize(rec.ProductName)

	switch {
	case manufacturer != "" && partNumber != "":
		return manufacturer + ":" + partNumber, false, nil
	case manufacturer != "" && name != "":
		return manufacturer + ":" + name, true, nil
	default:
		return "", false, fmt.Errorf("%w: manufacturer=%q part_number=%q product_name=%q",
			common.ErrIdentity, rec.Manufacturer, rec.PartNumber, rec.ProductName)
	}
}

// NewID computes the deterministic UUIDv5 for a natural key.
func NewID(key string) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(key))
}

// Resolve assigns rec its deterministic id, marking the record when the
// fallback key was used. The id is never model-supplied.
func (r *Resolver) Resolve(rec *entity.Record) error {
	key, lowConfidence, err := DeriveKey(rec)
	if err != nil {
		return err
	}
	rec.ID = NewID(key)
	rec.LowConfidenceKey = lowConfidence
	if lowConfidence {
		r.logger.Warn("identity.fallback_key",
			"manufacturer", rec.Manufacturer,
			"product_name", rec.ProductName,
			"key", key,
		)
	}
	r.logger.Debug("identity.resolved", "id", rec.ID, "key", key)
	return nil
}

// Exists reports whether an item with this id is already persisted.
func (r *Resolver) Exists(ctx context.Context, id uuid.UUID, rt constants.RecordType) (bool, error) {
	existing, err := r.store.Read(ctx, id, rt)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// ExistsByNaturalKey short-circuits ingestion before any model call when
// the product is already known under its human-readable identity.
func (r *Resolver) ExistsByNaturalKey(ctx context.Context, rt constants.RecordType, manufacturer, productName string) (bool, error) {
	return r.store.ExistsByNaturalKey(ctx, rt, manufacturer, productName)
}
