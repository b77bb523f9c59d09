package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldKind enumerates the supported config field types. Keeping this a
// closed enum turns "unknown type" into a single checked error site
// instead of a scattered stringly dispatch.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInteger
	KindBoolean
	KindEnum
	KindPassword
	KindPath
)

// ParseFieldKind maps the schema's type string onto a FieldKind.
func ParseFieldKind(s string) (FieldKind, error) {
	switch s {
	case "string":
		return KindString, nil
	case "integer":
		return KindInteger, nil
	case "boolean":
		return KindBoolean, nil
	case "enum":
		return KindEnum, nil
	case "password":
		return KindPassword, nil
	case "path":
		return KindPath, nil
	default:
		return 0, fmt.Errorf("Unknown field type: %s", s)
	}
}

// Option is one enum choice. Schemas may declare options either as bare
// strings or as {value, label} mappings.
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// UnmarshalYAML accepts both option forms.
func (o *Option) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		o.Value = node.Value
		o.Label = node.Value
		return nil
	}

	type plain Option
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*o = Option(p)
	return nil
}

// Field is one config field declaration.
type Field struct {
	ID       string   `yaml:"id"`
	Label    string   `yaml:"label"`
	Type     string   `yaml:"type"`
	Required bool     `yaml:"required"`
	Min      *int     `yaml:"min"`
	Max      *int     `yaml:"max"`
	Options  []Option `yaml:"options"`
	Default  string   `yaml:"default"`
}

// Group is an ordered set of fields shown together.
type Group struct {
	ID     string  `yaml:"id"`
	Label  string  `yaml:"label"`
	Fields []Field `yaml:"fields"`
}

// Schema is a package's full configuration schema.
type Schema struct {
	Version string  `yaml:"version"`
	Groups  []Group `yaml:"groups"`
}

// FieldMap indexes every field by ID across all groups.
func (s *Schema) FieldMap() map[string]*Field {
	fields := make(map[string]*Field)
	for g := range s.Groups {
		for f := range s.Groups[g].Fields {
			field := &s.Groups[g].Fields[f]
			if field.ID != "" {
				fields[field.ID] = field
			}
		}
	}
	return fields
}

// trueFalseWords are the accepted boolean spellings, case-insensitive.
var trueFalseWords = map[string]bool{
	"true": true, "false": true, "1": true, "0": true, "yes": true, "no": true,
}

// Validate checks a value (always string-typed on the wire) against the
// field's declaration. The error return is reserved for schema problems
// (unknown field type); validation failure is the false result.
func (f *Field) Validate(value string) (bool, error) {
	kind, err := ParseFieldKind(f.Type)
	if err != nil {
		return false, err
	}

	if f.Required && value == "" {
		return false, nil
	}

	switch kind {
	case KindString:
		// Empty optional strings are valid.
		return true, nil

	case KindInteger:
		// Empty integers are invalid even when optional.
		if value == "" {
			return false, nil
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return false, nil
		}
		if f.Min != nil && n < *f.Min {
			return false, nil
		}
		if f.Max != nil && n > *f.Max {
			return false, nil
		}
		return true, nil

	case KindBoolean:
		if value == "" {
			return false, nil
		}
		return trueFalseWords[strings.ToLower(value)], nil

	case KindEnum:
		if value == "" {
			return false, nil
		}
		for _, opt := range f.Options {
			if value == opt.Value {
				return true, nil
			}
		}
		return false, nil

	case KindPassword:
		// Empty allowed unless required (handled above); any non-empty
		// value is fine.
		return true, nil

	case KindPath:
		// Paths must be non-empty even when optional. Asymmetric with
		// the other kinds; preserved as observed behavior.
		return value != "", nil
	}

	return false, fmt.Errorf("Unknown field type: %s", f.Type)
}

// failureMessage builds the user-facing description of why a value failed.
func (f *Field) failureMessage(value string) string {
	label := f.Label
	if label == "" {
		label = f.ID
	}

	switch f.Type {
	case "integer":
		if f.Min != nil && f.Max != nil {
			return fmt.Sprintf("%s: must be an integer between %d and %d", label, *f.Min, *f.Max)
		}
		return fmt.Sprintf("%s: must be a valid integer", label)
	case "enum":
		values := make([]string, 0, len(f.Options))
		for _, opt := range f.Options {
			values = append(values, opt.Value)
		}
		return fmt.Sprintf("%s: must be one of: %s", label, strings.Join(values, ", "))
	}

	if f.Required && value == "" {
		return fmt.Sprintf("%s: is required", label)
	}
	return fmt.Sprintf("%s: invalid value", label)
}

// UnknownKeys returns the submitted keys no schema field declares, sorted.
func (s *Schema) UnknownKeys(values map[string]string) []string {
	fields := s.FieldMap()

	var unknown []string
	for key := range values {
		if _, ok := fields[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// MissingRequired returns the schema-required keys absent from the
// submission, sorted.
func (s *Schema) MissingRequired(values map[string]string) []string {
	var missing []string
	for id, field := range s.FieldMap() {
		if !field.Required {
			continue
		}
		if _, ok := values[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return missing
}

// FieldProblems validates every submitted value against its field and
// returns the per-field failure messages. Keys must already be known.
func (s *Schema) FieldProblems(values map[string]string) []string {
	fields := s.FieldMap()

	var problems []string
	for _, key := range sortedKeys(values) {
		field := fields[key]
		if field == nil {
			continue
		}
		ok, err := field.Validate(values[key])
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		if !ok {
			problems = append(problems, field.failureMessage(values[key]))
		}
	}
	return problems
}

// ValidateValues checks a whole submission against the schema: unknown
// keys are rejected, schema-required keys must be present, and every
// value must pass its field's validation. Returns the list of problems,
// empty when the submission is valid.
func (s *Schema) ValidateValues(values map[string]string) []string {
	if unknown := s.UnknownKeys(values); len(unknown) > 0 {
		return []string{fmt.Sprintf("Unknown configuration field(s): %s", strings.Join(unknown, ", "))}
	}
	if missing := s.MissingRequired(values); len(missing) > 0 {
		return []string{fmt.Sprintf("Missing required field(s): %s", strings.Join(missing, ", "))}
	}
	return s.FieldProblems(values)
}

// LoadSchema reads and decodes a package's typed schema file.
func LoadSchema(path string) (*Schema, error) {
	data, err := readSchemaFile(path)
	if err != nil {
		return nil, err
	}

	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("Failed to parse YAML schema: %v", err)
	}
	return &schema, nil
}

// LoadRawSchema reads a schema file as generic YAML, validating only the
// envelope (mapping root with version and groups). The raw form is what
// get-config-schema returns: the frontend renders fields it understands
// and the bridge does not normalize them.
func LoadRawSchema(path string) (map[string]interface{}, error) {
	data, err := readSchemaFile(path)
	if err != nil {
		return nil, err
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("Failed to parse YAML schema: %v", err)
	}

	mapping, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("Invalid schema: root must be a mapping")
	}
	if _, ok := mapping["version"]; !ok {
		return nil, fmt.Errorf("Invalid schema: missing 'version' field")
	}
	if _, ok := mapping["groups"]; !ok {
		return nil, fmt.Errorf("Invalid schema: missing 'groups' field")
	}
	return mapping, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func readSchemaFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Failed to read schema file: %v", err)
	}
	return data, nil
}
