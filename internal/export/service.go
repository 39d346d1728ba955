package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/datasheet-miner/constants"
	"github.com/joseph-ayodele/datasheet-miner/internal/common"
	"github.com/joseph-ayodele/datasheet-miner/internal/entity"
	"github.com/joseph-ayodele/datasheet-miner/internal/store"
)

// Service produces XLSX workbooks from stored records.
type Service struct {
	engine *store.Engine
	logger *slog.Logger
}

func NewService(engine *store.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{engine: engine, logger: logger}
}

// fixedHeaders lead every sheet; attribute columns follow, one per
// distinct field key seen across the type, alphabetical.
var fixedHeaders = []string{
	"Product ID",
	"Manufacturer",
	"Part Number",
	"Product Name",
	"Product Family",
	"Series",
	"Datasheet URL",
}

// ExportTypeXLSX returns a workbook with one sheet holding every record
// of the given type.
func (s *Service) ExportTypeXLSX(ctx context.Context, rt constants.RecordType) ([]byte, error) {
	start := time.Now()

	records, err := s.engine.ListByType(ctx, rt)
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", rt, err)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Manufacturer != records[j].Manufacturer {
			return records[i].Manufacturer < records[j].Manufacturer
		}
		return records[i].PartNumber < records[j].PartNumber
	})

	f := excelize.NewFile()
	sheet := sheetName(rt)
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defaultIndex, _ := f.GetSheetIndex("Sheet1"); defaultIndex != -1 && sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	fieldKeys := collectFieldKeys(records)
	headers := append(append([]string{}, fixedHeaders...), fieldKeys...)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, rec := range records {
		row := rowIdx + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, rec.ID.String())
		write(2, rec.Manufacturer)
		write(3, rec.PartNumber)
		write(4, rec.ProductName)
		write(5, rec.ProductFamily)
		write(6, rec.Series)
		write(7, rec.Provenance.URL)
		for i, key := range fieldKeys {
			if v, ok := rec.Fields[key]; ok {
				write(len(fixedHeaders)+1+i, renderCell(v))
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, common.WrapError(err, "write workbook")
	}

	s.logger.Info("export.xlsx.ok",
		"type", rt,
		"rows", len(records),
		"columns", len(headers),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func sheetName(rt constants.RecordType) string {
	parts := strings.Split(string(rt), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

func collectFieldKeys(records []*entity.Record) []string {
	seen := make(map[string]bool)
	for _, rec := range records {
		for key := range rec.Fields {
			seen[key] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// renderCell flattens a stored value into spreadsheet text. Quantity
// objects use the compact "value;unit" and "min-max;unit" forms.
func renderCell(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if s, ok := renderQuantity(t); ok {
			return s
		}
		pairs := make([]string, 0, len(t))
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, renderCell(t[k])))
		}
		return strings.Join(pairs, "; ")
	case []any:
		items := make([]string, len(t))
		for i, item := range t {
			items[i] = fmt.Sprintf("%v", renderCell(item))
		}
		return strings.Join(items, ", ")
	case float64:
		return t
	default:
		return v
	}
}

func renderQuantity(m map[string]any) (string, bool) {
	if q, ok := entity.QuantityFromMap(m); ok {
		return q.Compact(), true
	}
	if r, ok := entity.RangeFromMap(m); ok {
		return r.Compact(), true
	}
	if d, ok := entity.DimensionsFromMap(m); ok {
		return d.Compact(), true
	}
	return "", false
}
