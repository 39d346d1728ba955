package schema

// Shared schema fragments for the product families. Quantities are
// {value, unit} or {min, max, unit} objects; the reconciler decomposes
// the compact "value;unit" text form before validation, so the schemas
// only ever see the object shape.

func valueUnitProp() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"value": map[string]any{"type": "number"},
			"unit":  map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"value", "unit"},
	}
}

func minMaxUnitProp() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"min":  map[string]any{"type": "number"},
			"max":  map[string]any{"type": "number"},
			"unit": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"min", "max", "unit"},
	}
}

func dimensionsProp() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"width":  map[string]any{"type": "number"},
			"depth":  map[string]any{"type": "number"},
			"height": map[string]any{"type": "number"},
			"unit":   map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"width", "depth", "height", "unit"},
	}
}

func stringListProp() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}

func provenanceProp() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url":   map[string]any{"type": "string"},
			"pages": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
		},
		"required": []string{"url"},
	}
}

// productProps returns the attribute set every product family shares.
func productProps() map[string]any {
	return map[string]any{
		"part_number":    map[string]any{"type": "string"},
		"manufacturer":   map[string]any{"type": "string", "minLength": 1},
		"product_name":   map[string]any{"type": "string"},
		"product_family": map[string]any{"type": "string"},
		"series":         map[string]any{"type": "string"},
		"release_year":   map[string]any{"type": "integer"},
		"datasheet":      provenanceProp(),
		"dimensions":     dimensionsProp(),
		"weight":         valueUnitProp(),
		"ip_rating":      map[string]any{"type": "string"},
		"warranty":       valueUnitProp(),
		"msrp":           valueUnitProp(),
	}
}

func productSchema(props map[string]any, required []string) map[string]any {
	merged := productProps()
	for k, v := range props {
		merged[k] = v
	}
	return map[string]any{
		"type":       "object",
		"properties": merged,
		"required":   required,
	}
}
