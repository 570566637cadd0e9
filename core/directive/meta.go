package directive

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/codemark/core/ir"
)

// ParseMeta parses a block meta line. A bare key is true; key="v", key='v'
// and key=v are strings. A line that does not parse yields no entries.
func ParseMeta(s string) ir.Meta {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	g, err := metaParser.ParseString("", s)
	if err != nil {
		return nil
	}
	var m ir.Meta
	for _, e := range g.Entries {
		if e.Value == nil {
			m = m.Set(e.Key, true)
			continue
		}
		m = m.Set(e.Key, unquote(*e.Value))
	}
	return m
}

// FormatMeta renders meta entries as a meta line. False entries are omitted.
func FormatMeta(m ir.Meta) string {
	parts := make([]string, 0, len(m))
	for _, e := range m {
		switch v := e.Value.(type) {
		case bool:
			if v {
				parts = append(parts, e.Key)
			}
		case string:
			parts = append(parts, e.Key+"="+quote(v))
		default:
			parts = append(parts, e.Key+"="+quote(fmt.Sprint(v)))
		}
	}
	return strings.Join(parts, " ")
}
