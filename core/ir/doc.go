// Package ir provides the structured document model for annotated code samples.
//
// A code sample is held as plain lines of code plus typed, ranged annotations.
// The same Document is produced by parsing commented source text and by
// decoding a markup tree, and it is consumed by the inverse of each.
//
// # Core Types
//
//   - Document: one fenced code block (language, meta, lines, line annotations)
//   - Line: one line of code text without directive markup, plus the char-level
//     annotations that fall on it
//   - Annotation: a named, ranged mark with attributes and an authoring order
//   - Range: a half-open [Start, End) interval
//
// # Scopes and Units
//
// Line-scope annotations live on Document.Annotations and their ranges count
// lines. Char- and document-scope annotations live on Line.Annotations and
// their ranges are absolute offsets over the whole block text (line values
// joined by a single "\n"), counted in Unicode code points. A char-level
// annotation never crosses a line boundary; a document-scope match that spans
// lines is stored as one piece per line.
//
// # Ordering
//
// Annotation.Order is the authoring sequence. When two annotations start at
// the same position the lower order is the outer one. Canonical renumbers the
// orders into tree visitation order without changing the nesting they imply.
//
// # Loss Classification
//
// Conversions report the information they could not carry:
//
//   - L0: Lossless
//   - L1: Semantically lossless (e.g. false boolean attributes dropped)
//   - L2: Minor loss (e.g. unrecognized markup nodes reduced to text)
//   - L3: Significant loss (annotations dropped)
//   - L4: Plain text only
//
// # Example
//
//	doc := &ir.Document{
//	    Lang: "ts",
//	    Lines: []ir.Line{{
//	        Value: "const x = 1;",
//	        Annotations: []ir.Annotation{{
//	            Name:  "Tooltip",
//	            Scope: ir.ScopeChar,
//	            Range: ir.Range{Start: 6, End: 7},
//	            Attributes: ir.Attributes{{Key: "content", Value: "tip"}},
//	        }},
//	    }},
//	}
package ir
