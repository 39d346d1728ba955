package reconcile

import (
	"regexp"
	"strconv"
	"strings"
)

// Datasheets and model output encode quantities two ways: the decomposed
// {value, unit} / {min, max, unit} objects the schemas expect, and a
// compact "value;unit" / "min-max;unit" text form. normalizeQuantities
// decomposes the compact form and drops quantities whose numeric part
// does not parse or whose unit is empty. An invalid quantity becomes
// absent, never stays malformed.

var (
	reValueUnit  = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*;\s*(\S.*?)\s*$`)
	reMinMaxUnit = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*[-–]\s*(-?\d+(?:\.\d+)?)\s*;\s*(\S.*?)\s*$`)
)

func normalizeQuantities(m map[string]any) map[string]any {
	for k, v := range m {
		nv, keep := normalizeValue(v)
		if !keep {
			delete(m, k)
			continue
		}
		m[k] = nv
	}
	return m
}

func normalizeValue(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		if mm := reMinMaxUnit.FindStringSubmatch(t); mm != nil {
			minV, err1 := strconv.ParseFloat(mm[1], 64)
			maxV, err2 := strconv.ParseFloat(mm[2], 64)
			if err1 != nil || err2 != nil {
				return nil, false
			}
			return map[string]any{"min": minV, "max": maxV, "unit": mm[3]}, true
		}
		if vu := reValueUnit.FindStringSubmatch(t); vu != nil {
			val, err := strconv.ParseFloat(vu[1], 64)
			if err != nil {
				return nil, false
			}
			return map[string]any{"value": val, "unit": vu[2]}, true
		}
		return t, true
	case map[string]any:
		if isQuantity(t) {
			return normalizeQuantityMap(t)
		}
		return normalizeQuantities(t), true
	case []any:
		out := make([]any, 0, len(t))
		for _, el := range t {
			if nv, keep := normalizeValue(el); keep {
				out = append(out, nv)
			}
		}
		return out, true
	default:
		return v, true
	}
}

func isQuantity(m map[string]any) bool {
	if _, ok := m["unit"]; !ok {
		return false
	}
	if _, ok := m["value"]; ok {
		return true
	}
	_, hasMin := m["min"]
	_, hasMax := m["max"]
	return hasMin && hasMax
}

// normalizeQuantityMap validates a decomposed quantity: every numeric
// portion must parse as a number and the unit string must be non-empty.
func normalizeQuantityMap(m map[string]any) (any, bool) {
	unit, ok := m["unit"].(string)
	unit = strings.TrimSpace(unit)
	if !ok || unit == "" {
		return nil, false
	}

	if raw, has := m["value"]; has {
		val, ok := asNumber(raw)
		if !ok {
			return nil, false
		}
		return map[string]any{"value": val, "unit": unit}, true
	}

	minV, okMin := asNumber(m["min"])
	maxV, okMax := asNumber(m["max"])
	if !okMin || !okMax {
		return nil, false
	}
	return map[string]any{"min": minV, "max": maxV, "unit": unit}, true
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
