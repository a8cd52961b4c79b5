// Package compile turns an API description document into a
// normalized command tree.
//
// Compilation is a deterministic single pass: paths and methods are
// visited in the order they appear in the document, every operation
// with an identifier becomes one record, records group by resource
// name, and the assembler finalizes collision suffixes and sorting.
// Identical input bytes always produce identical output bytes.
package compile

import (
	"fmt"
	"sort"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/karolt/opcli/internal/document"
	"github.com/karolt/opcli/internal/tree"
)

// Options carries the injectable parts of compilation.
type Options struct {
	// DefaultBaseURL is used when the document declares no servers
	// (or the first server has an empty URL).
	DefaultBaseURL string
}

// methods are the HTTP method keys recognized on a path item. All
// other keys, including vendor extensions, are ignored.
var methods = map[string]bool{
	"get":    true,
	"post":   true,
	"put":    true,
	"patch":  true,
	"delete": true,
}

type compiler struct {
	doc      *document.Document
	resolver document.Resolver
	opts     Options
}

// Compile builds the command tree for a document.
func Compile(doc *document.Document, opts Options) (*tree.Tree, error) {
	c := &compiler{doc: doc, resolver: doc, opts: opts}
	return c.run()
}

func (c *compiler) run() (*tree.Tree, error) {
	root := c.doc.Root()

	globalSecurity, err := decodeSecurity(document.Lookup(root, "security"))
	if err != nil {
		return nil, err
	}

	// Group operations by resource, preserving traversal order
	// within each group.
	var order []string
	groups := map[string][]tree.Operation{}

	for path, pathItem := range document.Pairs(document.Lookup(root, "paths")) {
		for method, op := range document.Pairs(pathItem) {
			if strings.HasPrefix(method, "x-") || !methods[method] {
				continue
			}
			opID := document.StringValue(op, "operationId")
			if opID == "" {
				// Intentional skip, not an error.
				continue
			}

			record, resName, err := c.operation(path, method, pathItem, op, opID, globalSecurity)
			if err != nil {
				return nil, err
			}
			if _, ok := groups[resName]; !ok {
				order = append(order, resName)
			}
			groups[resName] = append(groups[resName], record)
		}
	}

	resources := make([]tree.Resource, 0, len(order))
	for _, name := range order {
		resources = append(resources, tree.Resource{
			Name: name,
			Ops:  finalizeOps(groups[name]),
		})
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].Name < resources[j].Name })

	return &tree.Tree{
		Version:    tree.FormatVersion,
		APIVersion: document.StringValue(document.Lookup(root, "info"), "version"),
		BaseURL:    c.baseURL(root),
		Resources:  resources,
	}, nil
}

// operation assembles one record for a (path, method) pair and
// returns it with its resource name.
func (c *compiler) operation(path, method string, pathItem, op *yaml.Node, opID string, globalSecurity []tree.SecurityRequirement) (tree.Operation, string, error) {
	where := fmt.Sprintf("paths.%s.%s", path, method)

	tags := decodeTags(document.Lookup(op, "tags"))
	resName, opName := SplitOperationID(opID, tags)

	params, err := c.parameters(pathItem, op, where)
	if err != nil {
		return tree.Operation{}, "", err
	}
	body, err := c.requestBody(document.Lookup(op, "requestBody"))
	if err != nil {
		return tree.Operation{}, "", err
	}
	paginated, err := c.isPaginated(c.responseSchema(op), map[string]bool{})
	if err != nil {
		return tree.Operation{}, "", err
	}

	// An explicitly declared security list overrides the global
	// one, including an explicit empty list meaning "no auth". Only
	// a missing (or null) key falls back to the document default.
	security := globalSecurity
	if sec := document.Lookup(op, "security"); sec != nil && !document.IsNull(sec) {
		if security, err = decodeSecurity(sec); err != nil {
			return tree.Operation{}, "", err
		}
	}

	return tree.Operation{
		Name:        opName,
		Method:      strings.ToUpper(method),
		Path:        path,
		Summary:     document.OptString(op, "summary"),
		Tags:        tags,
		Paginated:   paginated,
		Security:    security,
		Params:      params,
		RequestBody: body,
	}, resName, nil
}

// finalizeOps disambiguates colliding names in encounter order, then
// sorts alphabetically. The suffix numbering deliberately reflects
// encounter order, not the sorted order.
func finalizeOps(ops []tree.Operation) []tree.Operation {
	seen := map[string]int{}
	for i := range ops {
		base := ops[i].Name
		if n, ok := seen[base]; ok {
			seen[base] = n + 1
			ops[i].Name = fmt.Sprintf("%s-%d", base, n+1)
		} else {
			seen[base] = 1
		}
	}
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}

func (c *compiler) baseURL(root *yaml.Node) string {
	servers := document.Items(document.Lookup(root, "servers"))
	if len(servers) > 0 {
		if url := document.StringValue(servers[0], "url"); url != "" {
			return url
		}
	}
	return c.opts.DefaultBaseURL
}

func decodeTags(node *yaml.Node) []string {
	tags := []string{}
	if node == nil {
		return tags
	}
	if err := node.Decode(&tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

// decodeSecurity copies a security requirement list out of the
// document. Scope lists are normalized to empty slices so the tree
// never emits null where the input had [].
func decodeSecurity(node *yaml.Node) ([]tree.SecurityRequirement, error) {
	out := []tree.SecurityRequirement{}
	if node == nil || document.IsNull(node) {
		return out, nil
	}
	if err := node.Decode(&out); err != nil {
		return nil, &document.MalformedError{Path: "security", Message: err.Error()}
	}
	if out == nil {
		out = []tree.SecurityRequirement{}
	}
	for _, req := range out {
		for name, scopes := range req {
			if scopes == nil {
				req[name] = []string{}
			}
		}
	}
	return out, nil
}
