package compile

import (
	"sort"

	"go.yaml.in/yaml/v4"

	"github.com/karolt/opcli/internal/document"
	"github.com/karolt/opcli/internal/tree"
)

// parameters merges path-level and operation-level parameter lists
// (path level first), resolving one reference hop per entry, and
// applies the stable ordering: path-location parameters first, then
// by location, then by name.
//
// No deduplication happens across the two levels; a parameter
// declared at both produces two entries, which the stable sort leaves
// adjacent. That mirrors the trees this format was defined by.
func (c *compiler) parameters(pathItem, op *yaml.Node, where string) ([]tree.Param, error) {
	params := []tree.Param{}

	lists := append(
		document.Items(document.Lookup(pathItem, "parameters")),
		document.Items(document.Lookup(op, "parameters"))...,
	)
	for _, node := range lists {
		node, err := c.deref(node)
		if err != nil {
			return nil, err
		}
		p, err := c.parameter(node, where)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}

	sort.SliceStable(params, func(i, j int) bool {
		a, b := params[i], params[j]
		aPath, bPath := a.In == "path", b.In == "path"
		if aPath != bPath {
			return aPath
		}
		if a.In != b.In {
			return a.In < b.In
		}
		return a.Name < b.Name
	})

	return params, nil
}

func (c *compiler) parameter(node *yaml.Node, where string) (tree.Param, error) {
	name := document.StringValue(node, "name")
	if name == "" {
		return tree.Param{}, &document.MalformedError{Path: where, Message: "parameter missing name"}
	}
	in := document.StringValue(node, "in")
	if in == "" {
		return tree.Param{}, &document.MalformedError{Path: where, Message: "parameter " + name + " missing location"}
	}

	schemaType, itemsType, err := c.schemaType(document.Lookup(node, "schema"))
	if err != nil {
		return tree.Param{}, err
	}

	return tree.Param{
		Name:       name,
		Flag:       flagName(name),
		In:         in,
		Required:   document.BoolValue(node, "required"),
		Style:      document.OptString(node, "style"),
		Explode:    document.OptBool(node, "explode"),
		SchemaType: schemaType,
		ItemsType:  itemsType,
	}, nil
}
