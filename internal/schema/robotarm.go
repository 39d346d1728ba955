package schema

// BuildRobotArmSchema returns the collaborative-robot-arm attribute
// schema as a generic map. Joint and I/O blocks are nested objects, the
// way the datasheets present them.
func BuildRobotArmSchema() map[string]any {
	jointSpec := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"joint_name":    map[string]any{"type": "string", "minLength": 1},
			"working_range": valueUnitProp(),
			"max_speed":     valueUnitProp(),
		},
		"required": []string{"joint_name"},
	}
	toolIO := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"digital_in":              map[string]any{"type": "integer"},
			"digital_out":             map[string]any{"type": "integer"},
			"analog_in":               map[string]any{"type": "integer"},
			"power_supply_voltage":    valueUnitProp(),
			"power_supply_current":    valueUnitProp(),
			"connector_type":          map[string]any{"type": "string"},
			"communication_protocols": stringListProp(),
		},
	}
	controller := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ip_rating":       map[string]any{"type": "string"},
			"cleanroom_class": map[string]any{"type": "string"},
			"operating_temp":  minMaxUnitProp(),
			"digital_in":      map[string]any{"type": "integer"},
			"digital_out":     map[string]any{"type": "integer"},
			"analog_in":       map[string]any{"type": "integer"},
			"analog_out":      map[string]any{"type": "integer"},
		},
	}
	forceTorque := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"force_range":      valueUnitProp(),
			"force_precision":  valueUnitProp(),
			"torque_range":     valueUnitProp(),
			"torque_precision": valueUnitProp(),
		},
	}

	return productSchema(map[string]any{
		"payload":             valueUnitProp(),
		"reach":               valueUnitProp(),
		"repeatability":       valueUnitProp(),
		"degrees_of_freedom":  map[string]any{"type": "integer"},
		"max_tcp_speed":       valueUnitProp(),
		"operating_temp":      minMaxUnitProp(),
		"power_consumption":   valueUnitProp(),
		"joints":              map[string]any{"type": "array", "items": jointSpec},
		"tool_io":             toolIO,
		"controller":          controller,
		"force_torque_sensor": forceTorque,
	}, []string{"manufacturer"})
}
