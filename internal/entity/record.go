package entity

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/datasheet-miner/constants"
)

// Record represents one structured product recovered from document
// analysis, for data transfer between layers. Natural-key fields are
// lifted out of the attribute map; everything else the schema validated
// stays in Fields.
type Record struct {
	RecordType    constants.RecordType `json:"product_type"`
	ID            uuid.UUID            `json:"product_id"`
	Manufacturer  string               `json:"manufacturer"`
	PartNumber    string               `json:"part_number,omitempty"`
	ProductName   string               `json:"product_name,omitempty"`
	ProductFamily string               `json:"product_family,omitempty"`
	Series        string               `json:"series,omitempty"`
	Provenance    Provenance           `json:"datasheet"`
	Fields        map[string]any       `json:"fields,omitempty"`

	// LowConfidenceKey marks records whose identity was derived from the
	// manufacturer+name fallback rather than a part number.
	LowConfidenceKey bool `json:"-"`
}

// Provenance records where a record was extracted from.
type Provenance struct {
	URL   string `json:"url"`
	Pages []int  `json:"pages,omitempty"`
}

// ValueUnit represents a numeric value with a corresponding unit.
type ValueUnit struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Compact renders the quantity in the "value;unit" text form.
func (q ValueUnit) Compact() string {
	return formatNum(q.Value) + ";" + q.Unit
}

// MinMaxUnit represents a min/max numeric range with a corresponding unit.
type MinMaxUnit struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit"`
}

// Compact renders the range in the "min-max;unit" text form.
func (r MinMaxUnit) Compact() string {
	return formatNum(r.Min) + "-" + formatNum(r.Max) + ";" + r.Unit
}

// Dimensions represents physical dimensions of an object.
type Dimensions struct {
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

// Compact renders the dimensions as "WxDxH;unit".
func (d Dimensions) Compact() string {
	return formatNum(d.Width) + "x" + formatNum(d.Depth) + "x" + formatNum(d.Height) + ";" + d.Unit
}

// QuantityFromMap decodes a stored {value, unit} attribute map.
func QuantityFromMap(m map[string]any) (ValueUnit, bool) {
	unit, ok := m["unit"].(string)
	if !ok || len(m) != 2 {
		return ValueUnit{}, false
	}
	v, ok := toFloat(m["value"])
	if !ok {
		return ValueUnit{}, false
	}
	return ValueUnit{Value: v, Unit: unit}, true
}

// RangeFromMap decodes a stored {min, max, unit} attribute map.
func RangeFromMap(m map[string]any) (MinMaxUnit, bool) {
	unit, ok := m["unit"].(string)
	if !ok || len(m) != 3 {
		return MinMaxUnit{}, false
	}
	lo, okLo := toFloat(m["min"])
	hi, okHi := toFloat(m["max"])
	if !okLo || !okHi {
		return MinMaxUnit{}, false
	}
	return MinMaxUnit{Min: lo, Max: hi, Unit: unit}, true
}

// DimensionsFromMap decodes a stored {width, depth, height, unit}
// attribute map.
func DimensionsFromMap(m map[string]any) (Dimensions, bool) {
	unit, ok := m["unit"].(string)
	if !ok || len(m) != 4 {
		return Dimensions{}, false
	}
	w, okW := toFloat(m["width"])
	d, okD := toFloat(m["depth"])
	h, okH := toFloat(m["height"])
	if !okW || !okD || !okH {
		return Dimensions{}, false
	}
	return Dimensions{Width: w, Depth: d, Height: h, Unit: unit}, true
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
