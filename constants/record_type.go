package constants

import "strings"

// RecordType tags which product schema a record conforms to.
type RecordType string

// Stable values (these exact strings are stored in the table).
const (
	Motor    RecordType = "motor"
	Drive    RecordType = "drive"
	Gearhead RecordType = "gearhead"
	RobotArm RecordType = "robot_arm"
)

var allRecordTypes = []RecordType{
	Motor,
	Drive,
	Gearhead,
	RobotArm,
}

// TypeNamespace prefixes both halves of the composite storage key.
const TypeNamespace = "PRODUCT"

func AllRecordTypes() []RecordType {
	out := make([]RecordType, len(allRecordTypes))
	copy(out, allRecordTypes)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allRecordTypes))
	for i, rt := range allRecordTypes {
		result[i] = string(rt)
	}
	return result
}

// Canonicalize maps free-form type labels onto a known RecordType.
func Canonicalize(input string) (RecordType, bool) {
	if input == "" {
		return "", false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")

	synonyms := map[string]RecordType{
		"servo_motor":   Motor,
		"servomotor":    Motor,
		"servo_drive":   Drive,
		"vfd":           Drive,
		"inverter":      Drive,
		"gearbox":       Gearhead,
		"gear_head":     Gearhead,
		"reducer":       Gearhead,
		"robot":         RobotArm,
		"cobot":         RobotArm,
		"robotic_arm":   RobotArm,
		"robotarm":      RobotArm,
		"collaborative": RobotArm,
	}
	if rt, ok := synonyms[normalized]; ok {
		return rt, true
	}

	for _, rt := range allRecordTypes {
		if normalized == string(rt) {
			return rt, true
		}
	}
	return "", false
}

// PartitionKey returns the shared partition key for a record type,
// e.g. "PRODUCT#MOTOR".
func (rt RecordType) PartitionKey() string {
	return TypeNamespace + "#" + strings.ToUpper(string(rt))
}
