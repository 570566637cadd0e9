// Package source converts between commented source text and documents.
//
// Build reads a code sample whose directive comments describe annotations
// and returns the plain code lines plus those annotations. Serialize writes
// a document back as commented text. Directives that do not parse, name an
// unknown annotation or use a scope the annotation does not support are
// kept as ordinary code lines.
package source

import (
	"github.com/FocuswithJustin/codemark/core/directive"
	"github.com/FocuswithJustin/codemark/core/ir"
	"github.com/FocuswithJustin/codemark/core/registry"
)

// Options configures Build and Serialize.
type Options struct {
	// Registry resolves annotation names. Nil uses registry.Default().
	Registry *registry.Registry

	// Comment overrides the comment delimiters. The zero value picks the
	// delimiters of the language.
	Comment directive.CommentStyle

	// Lang is the block language. Serialize falls back to the document's.
	Lang string

	// Meta is stored on built documents.
	Meta ir.Meta
}

func (o Options) registry() *registry.Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return registry.Default()
}

func (o Options) style(lang string) directive.CommentStyle {
	if !o.Comment.IsZero() {
		return o.Comment
	}
	return directive.StyleFor(lang)
}
