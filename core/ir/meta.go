package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MetaEntry is one key of a block meta line. Value is a bool or a string.
type MetaEntry struct {
	Key   string
	Value any
}

// Meta is the ordered key/value content of a block meta line
// (e.g., `title="demo.ts" showLineNumbers`).
type Meta []MetaEntry

// Get returns the value stored for key.
func (m Meta) Get(key string) (any, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value for key, appending it when missing.
func (m Meta) Set(key string, value any) Meta {
	for i, e := range m {
		if e.Key == key {
			m[i].Value = value
			return m
		}
	}
	return append(m, MetaEntry{Key: key, Value: value})
}

// Clone returns a copy of the meta entries.
func (m Meta) Clone() Meta {
	if m == nil {
		return nil
	}
	out := make(Meta, len(m))
	copy(out, m)
	return out
}

// MarshalJSON encodes the meta as a JSON object in entry order.
func (m Meta) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
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

// UnmarshalJSON decodes a JSON object keeping the key order. Only boolean
// and string values are accepted.
func (m *Meta) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("meta must be a JSON object")
	}

	out := Meta{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("meta key must be a string")
		}
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case bool, string:
			out = append(out, MetaEntry{Key: key, Value: v})
		default:
			return fmt.Errorf("meta value for %q must be a boolean or a string", key)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = out
	return nil
}
