package schema

// BuildMotorSchema returns the motor attribute schema as a generic map.
// We embed this in the extraction prompt and use it locally to validate.
func BuildMotorSchema() map[string]any {
	return productSchema(map[string]any{
		"input_voltage":            minMaxUnitProp(),
		"rated_speed":              valueUnitProp(),
		"max_speed":                valueUnitProp(),
		"rated_torque":             valueUnitProp(),
		"peak_torque":              valueUnitProp(),
		"rated_power":              valueUnitProp(),
		"rated_current":            valueUnitProp(),
		"peak_current":             valueUnitProp(),
		"voltage_constant":         valueUnitProp(),
		"torque_constant":          valueUnitProp(),
		"resistance":               valueUnitProp(),
		"inductance":               valueUnitProp(),
		"rotor_inertia":            valueUnitProp(),
		"poles":                    map[string]any{"type": "integer"},
		"encoder_feedback_support": map[string]any{"type": "string"},
	}, []string{"manufacturer"})
}
