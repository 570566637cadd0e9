package directive

import "strings"

// CommentStyle holds the comment delimiters of a language. Close is empty
// for line comments.
type CommentStyle struct {
	Open  string `json:"open" koanf:"open"`
	Close string `json:"close,omitempty" koanf:"close"`
}

// IsZero returns true if no delimiters are set.
func (s CommentStyle) IsZero() bool {
	return s.Open == "" && s.Close == ""
}

var (
	slashStyle = CommentStyle{Open: "//"}
	hashStyle  = CommentStyle{Open: "#"}
	dashStyle  = CommentStyle{Open: "--"}
	htmlStyle  = CommentStyle{Open: "<!--", Close: "-->"}
	blockStyle = CommentStyle{Open: "/*", Close: "*/"}
	semiStyle  = CommentStyle{Open: ";"}
	pctStyle   = CommentStyle{Open: "%"}
)

var langStyles = map[string]CommentStyle{
	"sh": hashStyle, "bash": hashStyle, "zsh": hashStyle, "shell": hashStyle, "fish": hashStyle,
	"py": hashStyle, "python": hashStyle, "rb": hashStyle, "ruby": hashStyle,
	"yaml": hashStyle, "yml": hashStyle, "toml": hashStyle, "ini": hashStyle,
	"r": hashStyle, "perl": hashStyle, "pl": hashStyle, "elixir": hashStyle, "ex": hashStyle,
	"dockerfile": hashStyle, "docker": hashStyle, "make": hashStyle, "makefile": hashStyle,
	"nix": hashStyle, "tf": hashStyle, "hcl": hashStyle, "graphql": hashStyle, "gql": hashStyle,
	"powershell": hashStyle, "ps1": hashStyle, "cmake": hashStyle, "conf": hashStyle,

	"sql": dashStyle, "lua": dashStyle, "haskell": dashStyle, "hs": dashStyle,
	"elm": dashStyle, "ada": dashStyle, "plsql": dashStyle,

	"html": htmlStyle, "xml": htmlStyle, "svg": htmlStyle, "md": htmlStyle,
	"markdown": htmlStyle, "mdx": htmlStyle, "vue": htmlStyle, "svelte": htmlStyle, "astro": htmlStyle,

	"css": blockStyle, "scss": blockStyle, "less": blockStyle, "sass": blockStyle,

	"lisp": semiStyle, "clojure": semiStyle, "clj": semiStyle, "scheme": semiStyle,
	"asm": semiStyle, "nasm": semiStyle, "ini-semi": semiStyle,

	"tex": pctStyle, "latex": pctStyle, "erlang": pctStyle, "erl": pctStyle, "matlab": pctStyle,
}

// StyleFor returns the comment delimiters used for lang. Unknown languages
// use "//".
func StyleFor(lang string) CommentStyle {
	if s, ok := langStyles[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return s
	}
	return slashStyle
}

// Indent returns the leading spaces and tabs of line.
func Indent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// Strip removes indentation and comment delimiters from line. It reports
// false when line is not a comment in this style.
func (s CommentStyle) Strip(line string) (indent, body string, ok bool) {
	if s.Open == "" {
		return "", "", false
	}
	indent = Indent(line)
	rest := strings.TrimRight(line[len(indent):], " \t\r")
	if !strings.HasPrefix(rest, s.Open) {
		return "", "", false
	}
	rest = rest[len(s.Open):]
	if s.Close != "" {
		if !strings.HasSuffix(rest, s.Close) {
			return "", "", false
		}
		rest = rest[:len(rest)-len(s.Close)]
	}
	return indent, strings.TrimSpace(rest), true
}

// Wrap puts body inside the comment delimiters, prefixed by indent.
func (s CommentStyle) Wrap(indent, body string) string {
	if s.Close == "" {
		return indent + s.Open + " " + body
	}
	return indent + s.Open + " " + body + " " + s.Close
}
