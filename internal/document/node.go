package document

import (
	"iter"

	"go.yaml.in/yaml/v4"
)

// unwrap follows document wrappers and aliases down to the effective
// node. JSON input never produces aliases, but YAML input may.
func unwrap(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch {
		case n.Kind == yaml.DocumentNode && len(n.Content) > 0:
			n = n.Content[0]
		case n.Kind == yaml.AliasNode && n.Alias != nil:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

// Lookup returns the value node for key in a mapping node, or nil when
// the node is not a mapping or the key is absent. A nil receiver node
// is treated as an absent mapping.
func Lookup(n *yaml.Node, key string) *yaml.Node {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return unwrap(n.Content[i+1])
		}
	}
	return nil
}

// Has reports whether key is present in the mapping node, regardless
// of its value. Unlike Lookup it distinguishes an explicit null value
// from an absent key.
func Has(n *yaml.Node, key string) bool {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Pairs iterates the entries of a mapping node in document order.
func Pairs(n *yaml.Node) iter.Seq2[string, *yaml.Node] {
	n = unwrap(n)
	return func(yield func(string, *yaml.Node) bool) {
		if n == nil || n.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			if !yield(n.Content[i].Value, unwrap(n.Content[i+1])) {
				return
			}
		}
	}
}

// Items returns the element nodes of a sequence node, or nil when the
// node is not a sequence.
func Items(n *yaml.Node) []*yaml.Node {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]*yaml.Node, len(n.Content))
	for i, c := range n.Content {
		out[i] = unwrap(c)
	}
	return out
}

// IsNull reports whether the node is an explicit null scalar.
func IsNull(n *yaml.Node) bool {
	n = unwrap(n)
	return n != nil && n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// Truthy mirrors the source generator's loose emptiness checks: nil,
// null, empty string scalars and empty collections all count as
// absent.
func Truthy(n *yaml.Node) bool {
	n = unwrap(n)
	if n == nil {
		return false
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Tag != "!!null" && n.Value != ""
	case yaml.MappingNode, yaml.SequenceNode:
		return len(n.Content) > 0
	}
	return true
}

// StringValue returns the scalar string value of a mapping entry, or
// "" when the key is absent or not a string scalar.
func StringValue(n *yaml.Node, key string) string {
	v := Lookup(n, key)
	if v == nil || v.Kind != yaml.ScalarNode || v.Tag == "!!null" {
		return ""
	}
	return v.Value
}

// BoolValue returns the boolean value of a mapping entry, defaulting
// to false when absent or not a boolean.
func BoolValue(n *yaml.Node, key string) bool {
	v := Lookup(n, key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return false
	}
	var b bool
	if err := v.Decode(&b); err != nil {
		return false
	}
	return b
}

// OptString returns the string value of a mapping entry, or nil when
// the key is absent or explicitly null.
func OptString(n *yaml.Node, key string) *string {
	v := Lookup(n, key)
	if v == nil || v.Kind != yaml.ScalarNode || v.Tag == "!!null" {
		return nil
	}
	s := v.Value
	return &s
}

// OptBool returns the boolean value of a mapping entry, or nil when
// the key is absent or explicitly null.
func OptBool(n *yaml.Node, key string) *bool {
	v := Lookup(n, key)
	if v == nil || v.Kind != yaml.ScalarNode || v.Tag == "!!null" {
		return nil
	}
	var b bool
	if err := v.Decode(&b); err != nil {
		return nil
	}
	return &b
}
