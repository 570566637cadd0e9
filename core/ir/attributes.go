package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Attribute is one directive attribute. Value is a bool, float64, string,
// nil, []any or map[string]any.
type Attribute struct {
	Key   string
	Value any
}

// Attributes holds annotation attributes in authored order.
type Attributes []Attribute

// Get returns the value stored for key.
func (a Attributes) Get(key string) (any, bool) {
	for _, e := range a {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value for key in place, appending it when missing.
func (a Attributes) Set(key string, value any) Attributes {
	for i, e := range a {
		if e.Key == key {
			a[i].Value = value
			return a
		}
	}
	return append(a, Attribute{Key: key, Value: value})
}

// Delete returns a copy of the attributes without key.
func (a Attributes) Delete(key string) Attributes {
	var out Attributes
	for _, e := range a {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a copy of the attribute entries.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	copy(out, a)
	return out
}

// MarshalJSON encodes the attributes as a JSON object in authored order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the key order. A repeated
// key keeps its first position and its last value.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("attributes must be a JSON object")
	}

	var out Attributes
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("attribute key must be a string")
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("attribute %q: %w", key, err)
		}
		out = out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*a = out
	return nil
}
