// Package document wraps a raw, order-preserving API description and
// resolves local pointer references within it.
//
// The document is held as a yaml.Node tree rather than a decoded map:
// the order in which paths and methods appear is load bearing for the
// compiler (name disambiguation numbers follow traversal order), and
// Go maps would erase it.
package document

import (
	"strings"

	"go.yaml.in/yaml/v4"
)

// Resolver resolves a reference string to the node it points at.
// Document implements it for local pointer references; non-local
// forms are left to future implementations so callers never need to
// change.
type Resolver interface {
	Resolve(ref string) (*yaml.Node, error)
}

// Document is a read-only API description. It is never mutated.
type Document struct {
	root *yaml.Node
}

// Parse decodes raw JSON (or YAML) bytes into a Document.
func Parse(data []byte) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &MalformedError{Message: err.Error()}
	}
	return New(&node)
}

// New wraps an already parsed root node.
func New(root *yaml.Node) (*Document, error) {
	r := unwrap(root)
	if r == nil || r.Kind != yaml.MappingNode {
		return nil, &MalformedError{Message: "document root must be an object"}
	}
	return &Document{root: r}, nil
}

// Root returns the root mapping node.
func (d *Document) Root() *yaml.Node {
	return d.root
}

// Resolve walks the document by successive key lookups for a local
// pointer reference of the form "#/segment/segment/...". Any other
// form fails with a ReferenceError. Pointer tokens are matched as raw
// keys, exactly as the keys appear in the document.
func (d *Document) Resolve(ref string) (*yaml.Node, error) {
	if !strings.HasPrefix(ref, "#/") {
		return nil, &ReferenceError{Ref: ref, Message: "only local pointer references are supported"}
	}

	cur := d.root
	for part := range strings.SplitSeq(ref[2:], "/") {
		next := Lookup(cur, part)
		if next == nil {
			return nil, &ReferenceError{Ref: ref, Message: "key " + part + " not found"}
		}
		cur = next
	}
	return cur, nil
}
