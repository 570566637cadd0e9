// Package directive parses and formats annotation directives: single
// comment lines such as
//
//	// @char Tooltip {6-11} content="tip"
//	// @line Collapsible
//	// @line Collapsible end
//	// @document fold {re:/foo/g}
//
// Malformed directives are never errors. Parse reports false and the caller
// treats the line as ordinary code.
package directive

import (
	"regexp"
	"strings"

	"github.com/FocuswithJustin/codemark/core/ir"
)

var namePattern = regexp.MustCompile(`^[A-Za-z_]\w*$`)

// Selector picks the text a directive applies to. Exactly one of Range and
// Regex is set.
type Selector struct {
	// Range is half-open. Author input {a-b} is inclusive and stored as
	// [a, b+1).
	Range *ir.Range

	// Regex is the compiled pattern, flags applied.
	Regex *regexp.Regexp

	// Pattern and Flags are the regex source as written.
	Pattern string
	Flags   string
}

// Directive is one parsed directive line.
type Directive struct {
	Scope      ir.Scope
	Name       string
	Selector   *Selector
	Attributes ir.Attributes

	// End is set by a bare trailing "end" and closes a marker pair.
	End bool
}

// Parse parses one physical line. It reports false for anything that is
// not a well-formed directive in the given comment style.
func Parse(line string, style CommentStyle) (*Directive, bool) {
	_, body, ok := style.Strip(line)
	if !ok || !strings.HasPrefix(body, "@") {
		return nil, false
	}
	return ParseBody(body)
}

// ParseBody parses a directive with its comment delimiters removed.
func ParseBody(body string) (*Directive, bool) {
	g, err := directiveParser.ParseString("", body)
	if err != nil {
		return nil, false
	}

	d := &Directive{Scope: ir.Scope(g.Scope), Name: g.Name}
	if !d.Scope.IsValid() || !namePattern.MatchString(d.Name) {
		return nil, false
	}

	if g.Selector != nil {
		sel, ok := buildSelector(g.Selector)
		if !ok {
			return nil, false
		}
		d.Selector = sel
	}

	attrs := g.Attrs
	if n := len(attrs); n > 0 && attrs[n-1].Key == "end" && attrs[n-1].Value == nil {
		d.End = true
		attrs = attrs[:n-1]
	}
	for _, a := range attrs {
		if a.Value == nil {
			d.Attributes = d.Attributes.Set(a.Key, true)
			continue
		}
		d.Attributes = d.Attributes.Set(a.Key, ParseValue(*a.Value))
	}
	return d, true
}

func buildSelector(g *selectorGrammar) (*Selector, bool) {
	if g.Range != nil {
		r := ir.Range{Start: g.Range.Start, End: g.Range.End + 1}
		if !r.Valid() {
			return nil, false
		}
		return &Selector{Range: &r}, true
	}

	body := strings.TrimPrefix(g.Regex, "re:/")
	cut := strings.LastIndexByte(body, '/')
	if cut < 0 {
		return nil, false
	}
	pattern, flags := body[:cut], body[cut+1:]
	re, ok := CompileRegex(pattern, flags)
	if !ok {
		return nil, false
	}
	return &Selector{Regex: re, Pattern: pattern, Flags: flags}, true
}

// CompileRegex compiles a /pattern/flags selector. g and u are accepted and
// have no effect since every match is applied; i, m and s map to the inline
// flags of the same name. Any other flag, an empty pattern or a pattern that
// does not compile reports false.
func CompileRegex(pattern, flags string) (*regexp.Regexp, bool) {
	if pattern == "" {
		return nil, false
	}
	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 'g', 'u':
		case 'i', 'm', 's':
			if !strings.ContainsRune(inline.String(), f) {
				inline.WriteRune(f)
			}
		default:
			return nil, false
		}
	}
	if inline.Len() > 0 {
		pattern = "(?" + inline.String() + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, false
	}
	return re, true
}

// ValidName returns true if name can be used as an annotation name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}
