package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Label is a user-chosen identifier for a node or an edge.
//
// Documents may write labels as strings or as numbers; numbers are kept in
// their shortest decimal form, so 1 and "1" name the same node.
type Label string

// String returns the label text.
func (l Label) String() string { return string(l) }

// UnmarshalJSON accepts a JSON string or number.
func (l *Label) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Label(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*l = ""
		return nil
	}
	s, err := numberLabel(string(b))
	if err != nil {
		return fmt.Errorf("label: %w", err)
	}
	*l = Label(s)
	return nil
}

// UnmarshalYAML accepts a YAML scalar.
func (l *Label) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("label: line %d: want a scalar", n.Line)
	}
	switch n.Tag {
	case "!!int", "!!float":
		s, err := numberLabel(n.Value)
		if err != nil {
			return fmt.Errorf("label: line %d: %w", n.Line, err)
		}
		*l = Label(s)
	case "!!null":
		*l = ""
	default:
		*l = Label(n.Value)
	}
	return nil
}

// UnmarshalTOML accepts a TOML string, integer or float.
func (l *Label) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		*l = Label(v)
	case int64:
		*l = Label(strconv.FormatInt(v, 10))
	case float64:
		*l = Label(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return fmt.Errorf("label: unsupported TOML value %T", v)
	}
	return nil
}

// numberLabel renders a numeric literal the way a script runtime would
// stringify it: 1 -> "1", 1.50 -> "1.5", 1e3 -> "1000".
func numberLabel(lit string) (string, error) {
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	// YAML integers may be written as 0x1f or 0o17.
	if i, err := strconv.ParseInt(lit, 0, 64); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return "", fmt.Errorf("invalid number %q", lit)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}
