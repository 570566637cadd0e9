package directive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z_][\w-]*$`)

// ValidKey returns true if key can be written as a directive attribute key.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// ParseValue converts one attribute value token. Single-quoted tokens are
// strings; anything that reads as a JSON literal becomes that literal; any
// other token is kept as a raw string.
func ParseValue(token string) any {
	if len(token) >= 2 && token[0] == '\'' && token[len(token)-1] == '\'' {
		return unquoteSingle(token[1 : len(token)-1])
	}
	var v any
	if err := json.Unmarshal([]byte(token), &v); err == nil {
		return v
	}
	return token
}

func unquoteSingle(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\'' || s[i+1] == '\\') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// FormatValue renders v as literal text that ParseValue reads back to an
// equal value. Strings are always quoted.
func FormatValue(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("format value %v: %w", v, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// quote renders s as a double-quoted literal.
func quote(s string) string {
	out, err := FormatValue(s)
	if err != nil {
		return `"` + s + `"`
	}
	return out
}

// unquote strips the quotes of a String token. Bare tokens are returned
// unchanged.
func unquote(token string) string {
	if len(token) < 2 || token[len(token)-1] != token[0] {
		return token
	}
	switch token[0] {
	case '\'':
		return unquoteSingle(token[1 : len(token)-1])
	case '"':
	default:
		return token
	}
	var s string
	if err := json.Unmarshal([]byte(token), &s); err == nil {
		return s
	}
	return token[1 : len(token)-1]
}
