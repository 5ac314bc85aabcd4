package moinparser

import (
	"path"
	"strings"

	"github.com/jcorbin/moin2hugo/internal/pagetree"
)

// Extension turns the payload of a preformatted block into a subtree, e.g. a
// Codeblock or a Table.
type Extension interface {
	// Name is the primary parser name, as written after "#!".
	Name() string

	// Aliases are further parser names handled by the extension.
	Aliases() []string

	// Suffixes are the file extensions, including the dot, of attachments
	// handled by the extension.
	Suffixes() []string

	// Parse builds a detached subtree from text within t, returning its root.
	// Name is the parser name used to select the extension, args its
	// argument string.
	Parse(t *pagetree.Tree, text, name, args string) (pagetree.ID, error)
}

// Registry maps parser names and file suffixes to extensions.
type Registry struct {
	byName   map[string]Extension
	bySuffix map[string]Extension
	fallback Extension
}

// NewRegistry returns a registry of the given extensions; later extensions
// override earlier ones on name collision. The first extension is the
// fallback for unknown parser names.
func NewRegistry(exts ...Extension) *Registry {
	r := &Registry{
		byName:   make(map[string]Extension),
		bySuffix: make(map[string]Extension),
	}
	for _, ext := range exts {
		r.Register(ext)
	}
	return r
}

// DefaultRegistry returns a registry of the text, highlight, and csv
// extensions.
func DefaultRegistry() *Registry {
	return NewRegistry(TextExtension{}, HighlightExtension{}, CSVExtension{})
}

// Register adds an extension under its name, aliases, and suffixes.
func (r *Registry) Register(ext Extension) {
	if r.fallback == nil {
		r.fallback = ext
	}
	r.byName[ext.Name()] = ext
	for _, alias := range ext.Aliases() {
		r.byName[alias] = ext
	}
	for _, suffix := range ext.Suffixes() {
		r.bySuffix[strings.ToLower(suffix)] = ext
	}
}

// Lookup returns the extension registered for a parser name.
func (r *Registry) Lookup(name string) (Extension, bool) {
	ext, ok := r.byName[name]
	return ext, ok
}

// ForName is like Lookup, but returns the fallback extension for unknown
// names.
func (r *Registry) ForName(name string) Extension {
	if ext, ok := r.byName[name]; ok {
		return ext
	}
	return r.fallback
}

// ForFile returns the extension for a file name, by suffix, along with the
// parser name to pass to its Parse method.
func (r *Registry) ForFile(filename string) (ext Extension, name string, ok bool) {
	suffix := strings.ToLower(path.Ext(filename))
	if ext, ok = r.bySuffix[suffix]; !ok {
		return nil, "", false
	}
	if sn, isSN := ext.(suffixNamer); isSN {
		return ext, sn.nameForSuffix(suffix), true
	}
	return ext, ext.Name(), true
}

// suffixNamer is implemented by extensions that derive a parser name from a
// file suffix.
type suffixNamer interface {
	nameForSuffix(suffix string) string
}

// TextExtension renders its payload as a plain preformatted Codeblock.
type TextExtension struct{}

// Name returns "text".
func (TextExtension) Name() string { return "text" }

// Aliases returns "plain".
func (TextExtension) Aliases() []string { return []string{"plain"} }

// Suffixes returns the plain text suffixes.
func (TextExtension) Suffixes() []string { return []string{".txt", ".text", ".log"} }

// Parse returns a Codeblock of text with no syntax.
func (TextExtension) Parse(t *pagetree.Tree, text, _, _ string) (pagetree.ID, error) {
	return t.Add(pagetree.Fields{Kind: pagetree.Codeblock, Content: text}, ""), nil
}
