package xml

import (
	"bytes"
	"encoding/xml"
	"regexp"
	"unicode/utf8"
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][\w.-]*$`)

// ValidName returns true if name can be used as an element or attribute
// name without a namespace prefix.
func ValidName(name string) bool {
	return namePattern.MatchString(name) && !(len(name) >= 3 && (name[:3] == "xml" || name[:3] == "XML"))
}

// ValidText returns true if every character of s can appear in an XML 1.0
// document. EscapeText replaces the others with U+FFFD.
func ValidText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		switch {
		case r == '\t', r == '\n', r == '\r':
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= utf8.MaxRune:
		default:
			return false
		}
	}
	return true
}

// EscapeText escapes s for element content or a quoted attribute value.
// Tabs and line breaks become character references so parsing does not
// normalize them away.
func EscapeText(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Writer builds an XML document without indentation so text content is
// kept byte for byte.
type Writer struct {
	buf bytes.Buffer
}

// Declaration writes the XML declaration.
func (w *Writer) Declaration() {
	w.buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
}

// Start writes an opening tag.
func (w *Writer) Start(name string, attrs []Attr) {
	w.open(name, attrs)
	w.buf.WriteString(">")
}

// Empty writes a self-closing tag.
func (w *Writer) Empty(name string, attrs []Attr) {
	w.open(name, attrs)
	w.buf.WriteString("/>")
}

// End writes a closing tag.
func (w *Writer) End(name string) {
	w.buf.WriteString("</")
	w.buf.WriteString(name)
	w.buf.WriteString(">")
}

// Text writes escaped character data.
func (w *Writer) Text(s string) {
	w.buf.WriteString(EscapeText(s))
}

// Bytes returns the document written so far.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) open(name string, attrs []Attr) {
	w.buf.WriteString("<")
	w.buf.WriteString(name)
	for _, a := range attrs {
		w.buf.WriteString(" ")
		w.buf.WriteString(a.Name)
		w.buf.WriteString(`="`)
		w.buf.WriteString(EscapeText(a.Value))
		w.buf.WriteString(`"`)
	}
}
