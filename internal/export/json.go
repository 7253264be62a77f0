// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export serializes citation trees to JSON documents and relational
// stores. Exporters are pure sinks: a failed export never mutates the tree.
package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdiddy/citetree/internal/tree"
	"github.com/pdiddy/citetree/pkg/types"
)

// PaperDocument is the document form of one paper, keyed by identifier in a
// Document. Field names follow the Semantic Scholar casing so exports stay
// greppable against raw API responses.
type PaperDocument struct {
	PaperID       string         `json:"paperId"`
	Title         string         `json:"title"`
	Year          *int           `json:"year"`
	CitationCount *int           `json:"citationCount"`
	Abstract      string         `json:"abstract"`
	Authors       []types.Author `json:"authors"`
	Depth         int            `json:"depth"`
	References    []string       `json:"references"`
}

// Document is the nested key-value form of a tree: paper identifier to
// paper fields. Loading an export reconstructs this mapping shape, not the
// tree object it came from.
type Document map[string]PaperDocument

// DocumentFromTree projects a tree into its document form.
func DocumentFromTree(t *tree.Tree) Document {
	doc := make(Document, t.Size())
	for _, p := range t.All() {
		refs := p.References
		if refs == nil {
			refs = []string{}
		}
		doc[p.PaperID] = PaperDocument{
			PaperID:       p.PaperID,
			Title:         p.Title,
			Year:          p.Year,
			CitationCount: p.CitationCount,
			Abstract:      p.Abstract,
			Authors:       p.Authors,
			Depth:         p.Depth,
			References:    refs,
		}
	}
	return doc
}

// WriteJSON writes the tree's document form to path as indented JSON.
func WriteJSON(t *tree.Tree, path string) error {
	data, err := json.MarshalIndent(DocumentFromTree(t), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling tree: %v", ErrExportFailed, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrExportFailed, path, err)
	}
	return nil
}

// LoadDocument reads a JSON export back into its mapping shape for external
// inspection and analysis.
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrExportFailed, path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrExportFailed, path, err)
	}
	return doc, nil
}
