package registry

import "github.com/FocuswithJustin/codemark/core/ir"

// DefaultConfig returns the built-in annotation definitions.
func DefaultConfig() []ConfigItem {
	return []ConfigItem{
		{
			Name:   "Tooltip",
			Kind:   ir.KindRender,
			Render: &Render{Component: "Tooltip"},
			Source: ir.SourceNative,
			Scopes: []ir.Scope{ir.ScopeChar, ir.ScopeDocument},
		},
		{
			Name:   "Collapsible",
			Kind:   ir.KindRender,
			Render: &Render{Component: "Collapsible"},
			Source: ir.SourceNative,
			Scopes: []ir.Scope{ir.ScopeLine},
		},
		{
			Name:   "Highlight",
			Kind:   ir.KindClass,
			Class:  "highlight",
			Source: ir.SourceNative,
			Scopes: []ir.Scope{ir.ScopeChar, ir.ScopeLine, ir.ScopeDocument},
		},
		{
			Name:   "fold",
			Kind:   ir.KindClass,
			Class:  "fold",
			Source: ir.SourceNative,
			Scopes: []ir.Scope{ir.ScopeDocument, ir.ScopeChar},
		},
		{
			Name:   "Mark",
			Kind:   ir.KindClass,
			Class:  "mark",
			Source: ir.SourceNative,
			Scopes: []ir.Scope{ir.ScopeLine, ir.ScopeChar},
		},
		{
			Name:   "Diff",
			Kind:   ir.KindClass,
			Class:  "diff",
			Source: ir.SourceNative,
			Scopes: []ir.Scope{ir.ScopeLine},
		},
		{
			Name:   "Focus",
			Kind:   ir.KindClass,
			Class:  "focus",
			Source: ir.SourceNative,
			Scopes: []ir.Scope{ir.ScopeLine},
		},
	}
}

// Default returns a registry built from DefaultConfig.
func Default() *Registry {
	return MustBuild(DefaultConfig())
}
