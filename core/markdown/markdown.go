// Package markdown finds fenced code blocks in Markdown pages and builds
// each one into a document.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/FocuswithJustin/codemark/core/directive"
	"github.com/FocuswithJustin/codemark/core/ir"
	"github.com/FocuswithJustin/codemark/core/source"
)

// Block is one fenced code block.
type Block struct {
	// Index is the position of the block among the page's fenced blocks.
	Index int `json:"index"`

	// Line is the 1-based line of the opening fence, or 0 if unknown.
	Line int `json:"line"`

	Lang string `json:"lang"`

	// Info is the rest of the info string after the language.
	Info string `json:"info,omitempty"`

	// Text is the block content without the final newline.
	Text string `json:"text"`
}

// Result is a block built into a document.
type Result struct {
	Block    Block          `json:"block"`
	Document *ir.Document   `json:"document"`
	Report   *ir.LossReport `json:"report"`
}

// Extract returns the fenced code blocks of src in page order. Indented
// code blocks are not included.
func Extract(src []byte) []Block {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var blocks []Block
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		blocks = append(blocks, newBlock(fcb, src, len(blocks)))
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

func newBlock(fcb *ast.FencedCodeBlock, src []byte, index int) Block {
	b := Block{Index: index, Lang: string(fcb.Language(src))}
	if fcb.Info != nil {
		info := strings.TrimSpace(string(fcb.Info.Segment.Value(src)))
		b.Info = strings.TrimSpace(strings.TrimPrefix(info, b.Lang))
		b.Line = lineAt(src, fcb.Info.Segment.Start)
	}

	var buf bytes.Buffer
	lines := fcb.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.WriteString(strings.Repeat(" ", seg.Padding))
		buf.Write(seg.Value(src))
	}
	if b.Line == 0 && lines.Len() > 0 {
		b.Line = lineAt(src, lines.At(0).Start) - 1
	}
	b.Text = strings.TrimSuffix(buf.String(), "\n")
	return b
}

func lineAt(src []byte, offset int) int {
	return bytes.Count(src[:min(offset, len(src))], []byte("\n")) + 1
}

// Build extracts every fenced block and builds it with opts. The block's
// language and info string replace opts.Lang and opts.Meta; a block
// without a language keeps opts.Lang.
func Build(src []byte, opts source.Options) []Result {
	blocks := Extract(src)
	results := make([]Result, len(blocks))
	for i, b := range blocks {
		o := opts
		if b.Lang != "" {
			o.Lang = b.Lang
		}
		o.Meta = directive.ParseMeta(b.Info)
		doc, report := source.BuildWithReport(b.Text, o)
		results[i] = Result{Block: b, Document: doc, Report: report}
	}
	return results
}
