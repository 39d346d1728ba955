package schema

// BuildGearheadSchema returns the gearhead attribute schema as a generic
// map.
func BuildGearheadSchema() map[string]any {
	return productSchema(map[string]any{
		"gear_ratio":            map[string]any{"type": "number"},
		"gear_type":             map[string]any{"type": "string"},
		"stages":                map[string]any{"type": "integer"},
		"frame_size":            map[string]any{"type": "string"},
		"lubrication_type":      map[string]any{"type": "string"},
		"nominal_input_speed":   valueUnitProp(),
		"max_input_speed":       valueUnitProp(),
		"max_continuous_torque": valueUnitProp(),
		"max_peak_torque":       valueUnitProp(),
		"backlash":              valueUnitProp(),
		"torsional_rigidity":    valueUnitProp(),
		"rotor_inertia":         valueUnitProp(),
		"noise_level":           valueUnitProp(),
		"input_shaft_diameter":  valueUnitProp(),
		"output_shaft_diameter": valueUnitProp(),
		"max_radial_load":       valueUnitProp(),
		"max_axial_load":        valueUnitProp(),
		"service_life":          valueUnitProp(),
		"operating_temp":        minMaxUnitProp(),
		"efficiency": map[string]any{
			"type":    "number",
			"minimum": 0.0,
			"maximum": 1.0,
		},
	}, []string{"manufacturer"})
}
