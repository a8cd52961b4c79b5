// Package tree defines the command tree emitted by the compiler and
// consumed by the runtime CLI.
//
// Resources are sorted alphabetically, and operations within each
// resource are sorted alphabetically after collision suffixes have
// been assigned. The suffixes themselves (-2, -3, ...) follow the
// document traversal order that existed before the sort, so a
// suffixed name can appear out of numeric sequence in the final
// listing. Consumers must not assume otherwise.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// FormatVersion is the command tree format version tag.
const FormatVersion = 1

type Tree struct {
	Version    int        `json:"version"`
	APIVersion string     `json:"api_version"`
	BaseURL    string     `json:"base_url"`
	Resources  []Resource `json:"resources"`
}

type Resource struct {
	Name string      `json:"name"`
	Ops  []Operation `json:"ops"`
}

type Operation struct {
	Name        string                `json:"name"`
	Method      string                `json:"method"`
	Path        string                `json:"path"`
	Summary     *string               `json:"summary"`
	Tags        []string              `json:"tags"`
	Paginated   bool                  `json:"paginated"`
	Security    []SecurityRequirement `json:"security"`
	Params      []Param               `json:"params"`
	RequestBody *RequestBody          `json:"request_body"`
}

// SecurityRequirement maps a security scheme name to its scopes.
type SecurityRequirement map[string][]string

type Param struct {
	Name       string  `json:"name"`
	Flag       string  `json:"flag"`
	In         string  `json:"in"`
	Required   bool    `json:"required"`
	Style      *string `json:"style"`
	Explode    *bool   `json:"explode"`
	SchemaType string  `json:"schema_type"`
	ItemsType  *string `json:"items_type"`
}

type RequestBody struct {
	Required     bool     `json:"required"`
	ContentTypes []string `json:"content_types"`
}

// Find returns the operation named op under the resource named res,
// or nil if either is absent.
func (t *Tree) Find(res, op string) *Operation {
	for i := range t.Resources {
		if t.Resources[i].Name != res {
			continue
		}
		for j := range t.Resources[i].Ops {
			if t.Resources[i].Ops[j].Name == op {
				return &t.Resources[i].Ops[j]
			}
		}
	}
	return nil
}

// Resource returns the resource with the given name, or nil.
func (t *Tree) Resource(name string) *Resource {
	for i := range t.Resources {
		if t.Resources[i].Name == name {
			return &t.Resources[i]
		}
	}
	return nil
}

// Encode writes the tree as 2-space indented JSON with a trailing
// newline. Identical trees encode to identical bytes.
func (t *Tree) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// Marshal returns the canonical byte form of the tree.
func (t *Tree) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the tree to path. Nothing is written on encoding
// failure.
func (t *Tree) WriteFile(path string) error {
	data, err := t.Marshal()
	if err != nil {
		return fmt.Errorf("encoding command tree: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing command tree: %w", err)
	}
	return nil
}

// Load reads a command tree from path.
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading command tree: %w", err)
	}
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding command tree: %w", err)
	}
	return &t, nil
}
