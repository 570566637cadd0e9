package directive

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// directiveLexer switches state after "{" and "=" so selectors and values
// are lexed by their own rules.
var directiveLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "At", Pattern: `@`},
		{Name: "LBrace", Pattern: `\{`, Action: lexer.Push("Selector")},
		{Name: "Assign", Pattern: `=`, Action: lexer.Push("Value")},
		{Name: "Ident", Pattern: `[A-Za-z_][\w-]*`},
	},
	"Selector": {
		{Name: "Regex", Pattern: `re:/(?:\\.|[^/\\])*/[A-Za-z]*`},
		{Name: "Int", Pattern: `[0-9]+`},
		{Name: "Dash", Pattern: `-`},
		{Name: "RBrace", Pattern: `\}`, Action: lexer.Pop()},
	},
	"Value": {
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`, Action: lexer.Pop()},
		{Name: "Bare", Pattern: `(?:"(?:\\.|[^"\\])*"|[^\s"])+`, Action: lexer.Pop()},
	},
})

//nolint:govet // participle grammar tags are not standard struct tags
type directiveGrammar struct {
	Scope    string           `"@" @Ident`
	Name     string           `@Ident`
	Selector *selectorGrammar `@@?`
	Attrs    []*attrGrammar   `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type selectorGrammar struct {
	Regex string        `"{" ( @Regex`
	Range *rangeGrammar `    | @@ ) "}"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type rangeGrammar struct {
	Start int `@Int "-"`
	End   int `@Int`
}

//nolint:govet // participle grammar tags are not standard struct tags
type attrGrammar struct {
	Key   string  `@Ident`
	Value *string `( "=" @( String | Bare ) )?`
}

var directiveParser = participle.MustBuild[directiveGrammar](
	participle.Lexer(directiveLexer),
	participle.Elide("Whitespace"),
)

// metaLexer tokenizes a block meta line: `title="demo.ts" showLineNumbers`.
var metaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
	{Name: "Word", Pattern: `[^\s="']+`},
	{Name: "Assign", Pattern: `=`},
	{Name: "Whitespace", Pattern: `\s+`},
})

//nolint:govet // participle grammar tags are not standard struct tags
type metaGrammar struct {
	Entries []*metaEntryGrammar `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type metaEntryGrammar struct {
	Key   string  `@Word`
	Value *string `( "=" @( String | Word ) )?`
}

var metaParser = participle.MustBuild[metaGrammar](
	participle.Lexer(metaLexer),
	participle.Elide("Whitespace"),
)
