// ABOUTME: Renders schemas as JSON-Schema documents and applies field defaults
// ABOUTME: Used for tools/list output and for normalizing outgoing arguments

package schema

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ApplyDefaults returns the argument object with every absent defaulted field
// filled in. Call only after Validate has accepted the arguments.
func (s *Schema) ApplyDefaults(args []byte) ([]byte, error) {
	out := args
	if len(out) == 0 {
		out = []byte("{}")
	}

	var err error
	for _, f := range s.Fields {
		if f.Default == nil || gjson.GetBytes(out, f.Name).Exists() {
			continue
		}
		out, err = sjson.SetRawBytes(out, f.Name, f.Default)
		if err != nil {
			return nil, fmt.Errorf("applying default for %s: %w", f.Name, err)
		}
	}
	return out, nil
}

// JSONSchema renders the schema as a JSON-Schema-shaped object for tools/list.
// Properties appear in declaration order.
func (s *Schema) JSONSchema() json.RawMessage {
	out := []byte(`{"type":"object"}`)
	props := []byte(`{}`)
	var required []string

	for _, f := range s.Fields {
		props = setRaw(props, f.Name, f.propertySchema())
		if f.Required {
			required = append(required, f.Name)
		}
	}

	out = setRaw(out, "properties", props)
	if len(required) > 0 {
		out = set(out, "required", required)
	}
	out = set(out, "additionalProperties", false)
	return json.RawMessage(out)
}

// propertySchema renders the JSON-Schema fragment for one field.
func (f *Field) propertySchema() []byte {
	prop := []byte(fmt.Sprintf(`{"type":%q}`, f.Type))

	if f.Description != "" {
		prop = set(prop, "description", f.Description)
	}
	if len(f.Enum) > 0 {
		prop = set(prop, "enum", f.Enum)
	}
	switch f.Format {
	case FormatUUID:
		prop = set(prop, "format", "uuid")
	case FormatURL:
		prop = set(prop, "format", "uri")
	case FormatLanguage:
		prop = set(prop, "pattern", languageRe.String())
	}
	if f.Min != nil {
		prop = set(prop, "minimum", *f.Min)
	}
	if f.Max != nil {
		prop = set(prop, "maximum", *f.Max)
	}
	if f.Type == Array && f.Items != "" {
		prop = setRaw(prop, "items", []byte(fmt.Sprintf(`{"type":%q}`, f.Items)))
	}
	if f.MinItems > 0 {
		prop = set(prop, "minItems", f.MinItems)
	}
	if f.MaxItems > 0 {
		prop = set(prop, "maxItems", f.MaxItems)
	}
	if f.Default != nil {
		prop = setRaw(prop, "default", f.Default)
	}
	return prop
}

// set and setRaw wrap sjson for static paths. Field names are plain
// identifiers, so path errors cannot occur at runtime.
func set(b []byte, path string, value any) []byte {
	out, err := sjson.SetBytes(b, path, value)
	if err != nil {
		return b
	}
	return out
}

func setRaw(b []byte, path string, raw []byte) []byte {
	out, err := sjson.SetRawBytes(b, path, raw)
	if err != nil {
		return b
	}
	return out
}
