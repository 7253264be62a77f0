// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Author identifies one paper author. Immutable value.
type Author struct {
	// AuthorID is the Semantic Scholar author identifier.
	AuthorID string `json:"authorId" yaml:"author_id"`

	// Name is the author display name.
	Name string `json:"name" yaml:"name"`
}

// PaperRecord is the wire shape of a single entry in a batch response.
// Scalar fields the API may omit are pointers so that absence survives
// decoding; the record is normalized into a Paper before use.
type PaperRecord struct {
	PaperID       string            `json:"paperId"`
	Title         string            `json:"title"`
	Year          *int              `json:"year"`
	CitationCount *int              `json:"citationCount"`
	Abstract      *string           `json:"abstract"`
	Authors       []Author          `json:"authors"`
	References    []ReferenceRecord `json:"references"`
}

// ReferenceRecord is one entry of a record's reference list; only the
// identifier is requested.
type ReferenceRecord struct {
	PaperID string `json:"paperId"`
}

// Paper holds the metadata and citation relationships of one paper in a
// citation tree. A Paper is created once, when its identifier is first
// fetched, and never mutated afterward; in particular Depth is fixed at
// first-discovery time.
type Paper struct {
	// PaperID is the unique Semantic Scholar paper identifier.
	PaperID string `json:"paperId" yaml:"paper_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Depth is the traversal distance from the root paper (0 for the root).
	Depth int `json:"depth" yaml:"depth"`

	// Year is the publication year, nil when unknown.
	Year *int `json:"year" yaml:"year"`

	// CitationCount is the number of citing papers, nil when unknown.
	CitationCount *int `json:"citationCount" yaml:"citation_count"`

	// Abstract is the abstract text, empty when unavailable.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists the paper authors in source order.
	Authors []Author `json:"authors" yaml:"authors"`

	// References lists the identifiers of papers this paper cites. Entries
	// may point outside the containing tree (beyond max depth, or fetch
	// failures).
	References []string `json:"references" yaml:"references"`
}

// PaperFromRecord normalizes a raw batch record into a Paper tagged with the
// given traversal depth. Missing optional fields default rather than fail;
// references without an identifier are dropped. Callers are responsible for
// dropping records whose PaperID is empty.
func PaperFromRecord(rec PaperRecord, depth int) Paper {
	refs := make([]string, 0, len(rec.References))
	for _, r := range rec.References {
		if r.PaperID != "" {
			refs = append(refs, r.PaperID)
		}
	}

	abstract := ""
	if rec.Abstract != nil {
		abstract = *rec.Abstract
	}

	authors := rec.Authors
	if authors == nil {
		authors = []Author{}
	}

	return Paper{
		PaperID:       rec.PaperID,
		Title:         rec.Title,
		Depth:         depth,
		Year:          rec.Year,
		CitationCount: rec.CitationCount,
		Abstract:      abstract,
		Authors:       authors,
		References:    refs,
	}
}
