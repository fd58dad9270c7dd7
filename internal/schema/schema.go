// ABOUTME: Declarative argument schemas for gateway tools
// ABOUTME: Field definitions with type/range/format/enum constraints and validation

package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Type is the JSON type a field accepts.
type Type string

const (
	String  Type = "string"
	Integer Type = "integer"
	Number  Type = "number"
	Boolean Type = "boolean"
	Array   Type = "array"
)

// Format narrows a string field beyond its JSON type.
type Format string

const (
	FormatNone     Format = ""
	FormatUUID     Format = "uuid"
	FormatLanguage Format = "language" // two-letter ISO 639-1 code
	FormatURL      Format = "url"
)

var languageRe = regexp.MustCompile(`^[a-z]{2}$`)

// Field describes one named argument.
type Field struct {
	Name        string
	Type        Type
	Required    bool
	Description string

	// String constraints
	Enum   []string
	Format Format

	// Integer/number bounds, inclusive. Nil means unbounded.
	Min *int
	Max *int

	// Array constraints. Items is the element type; zero MaxItems means unbounded.
	Items    Type
	MinItems int
	MaxItems int

	// Default is a JSON literal applied when the field is absent.
	Default json.RawMessage
}

// Check is a cross-field rule evaluated against the full argument object.
// It returns an empty string when satisfied, otherwise one message for the
// flattened error list. Checks should tolerate fields that already failed
// their own validation.
type Check func(args gjson.Result) string

// Schema is the full argument contract for one tool.
type Schema struct {
	Fields []Field
	Checks []Check
}

// Int is a convenience for bound literals in field definitions.
func Int(v int) *int { return &v }

// Validate checks an argument object against the schema and returns the
// flattened list of per-field messages. An empty list means the arguments
// are acceptable. Unknown fields are rejected so typos never silently reach
// the backend.
func (s *Schema) Validate(args []byte) []string {
	if len(args) == 0 {
		args = []byte("{}")
	}
	if !gjson.ValidBytes(args) {
		return []string{"arguments: must be a JSON object"}
	}
	parsed := gjson.ParseBytes(args)
	if !parsed.IsObject() {
		return []string{"arguments: must be a JSON object"}
	}

	var msgs []string

	declared := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		declared[f.Name] = struct{}{}

		v := parsed.Get(f.Name)
		if !v.Exists() {
			if f.Required {
				msgs = append(msgs, f.Name+": required")
			}
			continue
		}
		msgs = append(msgs, f.check(v)...)
	}

	parsed.ForEach(func(key, _ gjson.Result) bool {
		if _, ok := declared[key.String()]; !ok {
			msgs = append(msgs, key.String()+": unknown parameter")
		}
		return true
	})

	for _, check := range s.Checks {
		if msg := check(parsed); msg != "" {
			msgs = append(msgs, msg)
		}
	}

	return msgs
}

// check validates one present value against the field's constraints.
func (f *Field) check(v gjson.Result) []string {
	switch f.Type {
	case String:
		return f.checkString(v)
	case Integer:
		return f.checkInteger(v)
	case Number:
		if v.Type != gjson.Number {
			return []string{f.Name + ": must be a number"}
		}
		return f.checkRange(v.Num)
	case Boolean:
		if !v.IsBool() {
			return []string{f.Name + ": must be a boolean"}
		}
		return nil
	case Array:
		return f.checkArray(v)
	}
	return nil
}

func (f *Field) checkString(v gjson.Result) []string {
	if v.Type != gjson.String {
		return []string{f.Name + ": must be a string"}
	}
	val := v.String()

	if f.Required && strings.TrimSpace(val) == "" {
		return []string{f.Name + ": must not be blank"}
	}

	if len(f.Enum) > 0 {
		for _, allowed := range f.Enum {
			if val == allowed {
				return nil
			}
		}
		return []string{fmt.Sprintf("%s: must be one of %s", f.Name, strings.Join(f.Enum, ", "))}
	}

	switch f.Format {
	case FormatUUID:
		if _, err := uuid.Parse(val); err != nil {
			return []string{f.Name + ": must be a UUID"}
		}
	case FormatLanguage:
		if !languageRe.MatchString(val) {
			return []string{f.Name + ": must be a two-letter ISO 639-1 code"}
		}
	case FormatURL:
		u, err := url.Parse(val)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return []string{f.Name + ": must be an http(s) URL"}
		}
	}
	return nil
}

func (f *Field) checkInteger(v gjson.Result) []string {
	if v.Type != gjson.Number || v.Num != math.Trunc(v.Num) {
		return []string{f.Name + ": must be an integer"}
	}
	return f.checkRange(v.Num)
}

func (f *Field) checkRange(n float64) []string {
	switch {
	case f.Min != nil && f.Max != nil:
		if n < float64(*f.Min) || n > float64(*f.Max) {
			return []string{fmt.Sprintf("%s: must be between %d and %d", f.Name, *f.Min, *f.Max)}
		}
	case f.Min != nil:
		if n < float64(*f.Min) {
			return []string{fmt.Sprintf("%s: must be at least %d", f.Name, *f.Min)}
		}
	case f.Max != nil:
		if n > float64(*f.Max) {
			return []string{fmt.Sprintf("%s: must be at most %d", f.Name, *f.Max)}
		}
	}
	return nil
}

func (f *Field) checkArray(v gjson.Result) []string {
	if !v.IsArray() {
		return []string{f.Name + ": must be an array"}
	}

	items := v.Array()
	switch {
	case f.MinItems > 0 && f.MaxItems > 0:
		if len(items) < f.MinItems || len(items) > f.MaxItems {
			return []string{fmt.Sprintf("%s: must have between %d and %d items", f.Name, f.MinItems, f.MaxItems)}
		}
	case f.MinItems > 0:
		if len(items) < f.MinItems {
			return []string{fmt.Sprintf("%s: must have at least %d items", f.Name, f.MinItems)}
		}
	case f.MaxItems > 0:
		if len(items) > f.MaxItems {
			return []string{fmt.Sprintf("%s: must have at most %d items", f.Name, f.MaxItems)}
		}
	}

	var msgs []string
	for i, item := range items {
		switch f.Items {
		case String:
			if item.Type != gjson.String {
				msgs = append(msgs, fmt.Sprintf("%s[%d]: must be a string", f.Name, i))
			} else if strings.TrimSpace(item.String()) == "" {
				msgs = append(msgs, fmt.Sprintf("%s[%d]: must not be blank", f.Name, i))
			}
		case Integer:
			if item.Type != gjson.Number || item.Num != math.Trunc(item.Num) {
				msgs = append(msgs, fmt.Sprintf("%s[%d]: must be an integer", f.Name, i))
			}
		}
	}
	return msgs
}
