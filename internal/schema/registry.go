package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/datasheet-miner/constants"
	"github.com/joseph-ayodele/datasheet-miner/internal/common"
)

// Variant is one registered record type: a name plus its compiled
// attribute schema.
type Variant struct {
	Type     constants.RecordType
	Schema   map[string]any
	compiled *jsonschema.Schema
}

// Registry maps record-type names to their attribute schemas. It is
// constructed once at process start and passed by reference; there is no
// package-level lookup table.
type Registry struct {
	variants map[constants.RecordType]*Variant
}

// NewRegistry compiles and registers every known record type.
func NewRegistry() (*Registry, error) {
	r := &Registry{variants: make(map[constants.RecordType]*Variant)}

	builders := map[constants.RecordType]func() map[string]any{
		constants.Motor:    BuildMotorSchema,
		constants.Drive:    BuildDriveSchema,
		constants.Gearhead: BuildGearheadSchema,
		constants.RobotArm: BuildRobotArmSchema,
	}
	for rt, build := range builders {
		if err := r.register(rt, build()); err != nil {
			return nil, fmt.Errorf("register %s: %w", rt, err)
		}
	}
	return r, nil
}

func (r *Registry) register(rt constants.RecordType, schemaMap map[string]any) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	r.variants[rt] = &Variant{Type: rt, Schema: schemaMap, compiled: compiled}
	return nil
}

// Lookup returns the variant registered under rt.
func (r *Registry) Lookup(rt constants.RecordType) (*Variant, bool) {
	v, ok := r.variants[rt]
	return v, ok
}

// Validate checks data against the schema registered for rt.
func (r *Registry) Validate(rt constants.RecordType, data []byte) error {
	v, ok := r.variants[rt]
	if !ok {
		return common.NewAppError("SCHEMA_UNKNOWN", fmt.Sprintf("no schema registered for %q", rt), common.ErrValidation)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := v.compiled.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

// SchemaJSON renders the schema for rt as indented JSON, suitable for
// embedding in an extraction prompt.
func (r *Registry) SchemaJSON(rt constants.RecordType) (string, error) {
	v, ok := r.variants[rt]
	if !ok {
		return "", fmt.Errorf("no schema registered for %q", rt)
	}
	b, err := json.MarshalIndent(v.Schema, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
