package directive

import (
	"fmt"
	"strconv"
	"strings"
)

// Body renders the directive without comment delimiters. Attributes are
// written in order: true as a bare key, false not at all, anything
// else as key=<literal>. Keys that cannot be lexed are skipped.
func (d *Directive) Body() string {
	var b strings.Builder
	b.WriteString("@")
	b.WriteString(string(d.Scope))
	b.WriteString(" ")
	b.WriteString(d.Name)

	if d.Selector != nil {
		b.WriteString(" {")
		if d.Selector.Range != nil {
			b.WriteString(strconv.Itoa(d.Selector.Range.Start))
			b.WriteString("-")
			b.WriteString(strconv.Itoa(d.Selector.Range.End - 1))
		} else {
			b.WriteString("re:/")
			b.WriteString(d.Selector.Pattern)
			b.WriteString("/")
			b.WriteString(d.Selector.Flags)
		}
		b.WriteString("}")
	}

	for _, attr := range d.Attributes {
		k, v := attr.Key, attr.Value
		if !ValidKey(k) {
			continue
		}
		if flag, ok := v.(bool); ok {
			switch {
			case !flag:
			case k == "end":
				b.WriteString(" end=true")
			default:
				b.WriteString(" " + k)
			}
			continue
		}
		lit, err := FormatValue(v)
		if err != nil {
			lit = quote(fmt.Sprint(v))
		}
		b.WriteString(" " + k + "=" + lit)
	}

	if d.End {
		b.WriteString(" end")
	}
	return b.String()
}

// Format renders the directive as a comment line prefixed with indent.
func Format(d *Directive, style CommentStyle, indent string) string {
	return style.Wrap(indent, d.Body())
}
