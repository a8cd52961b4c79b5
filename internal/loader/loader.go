// Package loader reads an OpenAPI description from disk and hands the
// compiler its raw, order-preserving document.
package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/pb33f/libopenapi"

	"github.com/karolt/opcli/internal/document"
)

type Result struct {
	Document *document.Document
	Version  string
	Warnings []string
	RawData  []byte
}

// LoadFile reads and parses an OpenAPI 3.x document. The compiler
// consumes the raw root node rather than the resolved model: it needs
// the original $ref strings and the document's own key order, both of
// which reference resolution erases.
func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}
	return Load(data)
}

// Load parses in-memory OpenAPI document bytes.
func Load(data []byte) (*Result, error) {
	oasDoc, err := libopenapi.NewDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	version := oasDoc.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return nil, fmt.Errorf("unsupported OpenAPI version: %s (only 3.x supported)", version)
	}

	info := oasDoc.GetSpecInfo()
	if info == nil || info.RootNode == nil {
		return nil, fmt.Errorf("parsing OpenAPI document: no root node")
	}
	doc, err := document.New(info.RootNode)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	result := &Result{
		Document: doc,
		Version:  version,
		RawData:  data,
	}
	if strings.HasPrefix(version, "3.0") {
		result.Warnings = append(result.Warnings, "OpenAPI 3.0.x detected; 3.1/3.2 schema forms unavailable")
	}
	return result, nil
}
