package compile

import (
	"go.yaml.in/yaml/v4"

	"github.com/karolt/opcli/internal/document"
)

// deref follows a single $ref hop when the node carries one.
// Reference targets that are themselves references are not chased;
// one-hop semantics are part of the output contract.
func (c *compiler) deref(n *yaml.Node) (*yaml.Node, error) {
	ref := document.StringValue(n, "$ref")
	if ref == "" {
		return n, nil
	}
	return c.resolver.Resolve(ref)
}

// schemaType derives the (type, itemType) descriptor for a schema
// node, following at most one reference hop at each level. A schema
// without a declared type is a string; so is an array item without
// one. Array-of-array structures report an "array" item type and are
// not distinguished any further.
func (c *compiler) schemaType(schema *yaml.Node) (string, *string, error) {
	schema, err := c.deref(schema)
	if err != nil {
		return "", nil, err
	}

	typ := document.StringValue(schema, "type")
	if typ == "" {
		typ = "string"
	}
	if typ != "array" {
		return typ, nil, nil
	}

	items, err := c.deref(document.Lookup(schema, "items"))
	if err != nil {
		return "", nil, err
	}
	itemType := document.StringValue(items, "type")
	if itemType == "" {
		itemType = "string"
	}
	return "array", &itemType, nil
}
