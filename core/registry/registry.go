// Package registry builds the name-to-definition lookup for annotations.
//
// A Registry is built once from a configuration list and is read-only
// afterwards; it is safe to share between goroutines. There is no global
// registry: callers thread the value through every conversion.
package registry

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"

	cerrors "github.com/FocuswithJustin/codemark/core/errors"
	"github.com/FocuswithJustin/codemark/core/ir"
)

var namePattern = regexp.MustCompile(`^[A-Za-z_]\w*$`)

// Render describes the wrapper a render-kind annotation produces.
type Render struct {
	// Component is the wrapper identifier handed to the renderer.
	Component string `json:"component" koanf:"component"`

	// Props are static properties merged under the directive attributes.
	// Values are normalized to JSON values, so numbers are float64.
	Props map[string]any `json:"props,omitempty" koanf:"props"`
}

// ConfigItem is one annotation definition as written in configuration.
type ConfigItem struct {
	Name   string     `json:"name" koanf:"name"`
	Kind   ir.Kind    `json:"kind" koanf:"kind"`
	Class  string     `json:"class,omitempty" koanf:"class"`
	Render *Render    `json:"render,omitempty" koanf:"render"`
	Source ir.Source  `json:"source,omitempty" koanf:"source"`
	Scopes []ir.Scope `json:"scopes,omitempty" koanf:"scopes"`
}

// Item is a validated definition plus its declaration index.
type Item struct {
	ConfigItem

	// Priority is the declaration index. It only breaks ties that order
	// cannot decide.
	Priority int `json:"priority"`
}

// Target returns the class token for class kinds and the component for
// render kinds.
func (it Item) Target() string {
	if it.Kind == ir.KindRender && it.Render != nil {
		return it.Render.Component
	}
	return it.Class
}

// Props returns the render props sorted by key.
func (it Item) Props() ir.Attributes {
	if it.Render == nil || len(it.Render.Props) == 0 {
		return nil
	}
	keys := make([]string, 0, len(it.Render.Props))
	for k := range it.Render.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(ir.Attributes, 0, len(keys))
	for _, k := range keys {
		out = append(out, ir.Attribute{Key: k, Value: it.Render.Props[k]})
	}
	return out
}

// WithProps returns attrs followed by every render prop attrs does not
// set. Attribute values win over props.
func (it Item) WithProps(attrs ir.Attributes) ir.Attributes {
	out := attrs.Clone()
	for _, p := range it.Props() {
		if _, ok := out.Get(p.Key); !ok {
			out = append(out, p)
		}
	}
	return out
}

// IsDefault returns true if value equals the render prop stored for key.
func (it Item) IsDefault(key string, value any) bool {
	if it.Render == nil {
		return false
	}
	prop, ok := it.Render.Props[key]
	return ok && reflect.DeepEqual(prop, value)
}

// WithoutProps returns attrs without the entries that equal a render prop.
// It undoes WithProps.
func (it Item) WithoutProps(attrs ir.Attributes) ir.Attributes {
	var out ir.Attributes
	for _, a := range attrs {
		if !it.IsDefault(a.Key, a.Value) {
			out = append(out, a)
		}
	}
	return out
}

// Registry is an immutable annotation lookup.
type Registry struct {
	items  []Item
	byName map[string]int
	hash   string
}

// Build validates the configuration and returns a Registry. An invalid or
// duplicate name is a configuration mistake and is reported as a
// *errors.ConfigError; callers treat it as fatal.
func Build(config []ConfigItem) (*Registry, error) {
	r := &Registry{
		items:  make([]Item, 0, len(config)),
		byName: make(map[string]int, len(config)),
	}

	for i, c := range config {
		if !namePattern.MatchString(c.Name) {
			return nil, cerrors.NewConfig(i, c.Name, "name must match "+namePattern.String())
		}
		if _, dup := r.byName[c.Name]; dup {
			return nil, cerrors.NewConfig(i, c.Name, "duplicate annotation name")
		}

		switch c.Kind {
		case ir.KindClass:
			if c.Class == "" {
				return nil, cerrors.NewConfig(i, c.Name, "class kind requires a class")
			}
		case ir.KindRender:
			if c.Render == nil || c.Render.Component == "" {
				return nil, cerrors.NewConfig(i, c.Name, "render kind requires render.component")
			}
		default:
			return nil, cerrors.NewConfig(i, c.Name, fmt.Sprintf("unknown kind %q", c.Kind))
		}

		if c.Source == "" {
			c.Source = ir.SourceCustom
		}
		if !c.Source.IsValid() {
			return nil, cerrors.NewConfig(i, c.Name, fmt.Sprintf("unknown source %q", c.Source))
		}

		if len(c.Scopes) == 0 {
			c.Scopes = []ir.Scope{ir.ScopeChar}
		} else {
			c.Scopes = append([]ir.Scope(nil), c.Scopes...)
		}
		for _, s := range c.Scopes {
			if !s.IsValid() {
				return nil, cerrors.NewConfig(i, c.Name, fmt.Sprintf("unknown scope %q", s))
			}
		}

		if c.Render != nil {
			props, err := normalizeProps(c.Render.Props)
			if err != nil {
				return nil, cerrors.NewConfig(i, c.Name, "render.props: "+err.Error())
			}
			c.Render = &Render{Component: c.Render.Component, Props: props}
		}

		r.byName[c.Name] = len(r.items)
		r.items = append(r.items, Item{ConfigItem: c, Priority: i})
	}

	data, err := json.Marshal(r.items)
	if err != nil {
		return nil, cerrors.Wrap(err, "fingerprint registry")
	}
	r.hash = ir.Blake3Bytes(data)
	return r, nil
}

// MustBuild is like Build but panics on an invalid configuration.
func MustBuild(config []ConfigItem) *Registry {
	r, err := Build(config)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Item, bool) {
	if r == nil {
		return Item{}, false
	}
	i, ok := r.byName[name]
	if !ok {
		return Item{}, false
	}
	return r.items[i], true
}

// Supports returns true if the item may be used with scope.
func Supports(item Item, scope ir.Scope) bool {
	for _, s := range item.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Resolve looks up name and checks that it supports scope.
func (r *Registry) Resolve(name string, scope ir.Scope) (Item, bool) {
	item, ok := r.Lookup(name)
	if !ok || !Supports(item, scope) {
		return Item{}, false
	}
	return item, true
}

// Items returns the definitions in declaration order.
func (r *Registry) Items() []Item {
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

// Names returns the registered names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.items))
	for _, it := range r.items {
		names = append(names, it.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	return len(r.items)
}

// Fingerprint returns the BLAKE3 hash of the normalized configuration.
// Equal configurations produce equal fingerprints.
func (r *Registry) Fingerprint() string {
	return r.hash
}

// normalizeProps copies props through JSON so values compare equal to
// decoded attribute values.
func normalizeProps(in map[string]any) (map[string]any, error) {
	if len(in) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
