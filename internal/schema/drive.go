package schema

// BuildDriveSchema returns the servo/variable-frequency drive attribute
// schema as a generic map.
func BuildDriveSchema() map[string]any {
	return productSchema(map[string]any{
		"input_voltage":       minMaxUnitProp(),
		"rated_current":       valueUnitProp(),
		"peak_current":        valueUnitProp(),
		"output_power":        valueUnitProp(),
		"switching_frequency": valueUnitProp(),
		"max_ambient_temp":    valueUnitProp(),
		"min_ambient_temp":    valueUnitProp(),
		"phases": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "integer"},
		},
		"fieldbus":                 stringListProp(),
		"control_modes":            stringListProp(),
		"encoder_feedback_support": stringListProp(),
		"safety_features":          stringListProp(),
		"safety_rating":            stringListProp(),
		"approvals":                stringListProp(),
		"ethernet_ports":           map[string]any{"type": "integer"},
		"digital_inputs":           map[string]any{"type": "integer"},
		"digital_outputs":          map[string]any{"type": "integer"},
		"analog_inputs":            map[string]any{"type": "integer"},
		"analog_outputs":           map[string]any{"type": "integer"},
		"humidity":                 map[string]any{"type": "number"},
	}, []string{"manufacturer"})
}
