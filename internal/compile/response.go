package compile

import (
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/karolt/opcli/internal/document"
)

// successCodes is the strict priority order for selecting the success
// response schema. Other 2xx codes and media types are never
// consulted.
var successCodes = []string{"200", "201", "202"}

// responseSchema picks the application/json schema of the first
// success status code present on the operation, or nil when none of
// the candidate codes declares one.
func (c *compiler) responseSchema(op *yaml.Node) *yaml.Node {
	responses := document.Lookup(op, "responses")
	for _, code := range successCodes {
		resp := document.Lookup(responses, code)
		if !document.Truthy(resp) {
			continue
		}
		content := document.Lookup(document.Lookup(resp, "content"), "application/json")
		if schema := document.Lookup(content, "schema"); document.Truthy(schema) {
			return schema
		}
	}
	return nil
}

// isPaginated reports whether a response schema follows the paging
// convention: it is (or resolves to, or composes via allOf) a
// reference whose path ends in "/Paginated". Branches of an allOf are
// evaluated in declared order and short-circuit on the first
// positive.
//
// resolving tracks the chain of references currently being followed;
// revisiting one is a reference cycle and fails hard rather than
// recursing forever.
func (c *compiler) isPaginated(schema *yaml.Node, resolving map[string]bool) (bool, error) {
	if !document.Truthy(schema) {
		return false, nil
	}

	if ref := document.StringValue(schema, "$ref"); ref != "" {
		if strings.HasSuffix(ref, "/Paginated") {
			return true, nil
		}
		if resolving[ref] {
			return false, &document.ReferenceError{Ref: ref, IsCircular: true}
		}
		resolving[ref] = true
		defer delete(resolving, ref)

		target, err := c.resolver.Resolve(ref)
		if err != nil {
			return false, err
		}
		return c.isPaginated(target, resolving)
	}

	if document.Has(schema, "allOf") {
		for _, branch := range document.Items(document.Lookup(schema, "allOf")) {
			ok, err := c.isPaginated(branch, resolving)
			if err != nil || ok {
				return ok, err
			}
		}
	}
	return false, nil
}
