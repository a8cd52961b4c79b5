package compile

import (
	"sort"

	"go.yaml.in/yaml/v4"

	"github.com/karolt/opcli/internal/document"
	"github.com/karolt/opcli/internal/tree"
)

// requestBody builds the body descriptor for an operation, or nil
// when the operation declares none. An empty body object counts as
// none. One reference hop is resolved.
func (c *compiler) requestBody(node *yaml.Node) (*tree.RequestBody, error) {
	if !document.Truthy(node) {
		return nil, nil
	}
	node, err := c.deref(node)
	if err != nil {
		return nil, err
	}

	contentTypes := []string{}
	for mediaType := range document.Pairs(document.Lookup(node, "content")) {
		contentTypes = append(contentTypes, mediaType)
	}
	sort.Strings(contentTypes)

	return &tree.RequestBody{
		Required:     document.BoolValue(node, "required"),
		ContentTypes: contentTypes,
	}, nil
}
