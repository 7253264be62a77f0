// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citetree/internal/export"
	"github.com/pdiddy/citetree/pkg/types"
)

func intp(v int) *int { return &v }

func testDocument() export.Document {
	return export.Document{
		"root": {
			PaperID:       "root",
			Title:         "Root Paper",
			Depth:         0,
			Year:          intp(2017),
			CitationCount: intp(1000),
			Authors:       []types.Author{{AuthorID: "a1", Name: "Grace Hopper"}},
			References:    []string{"c1", "c2"},
		},
		"c1": {
			PaperID:       "c1",
			Title:         "First Cited",
			Depth:         1,
			Year:          intp(2015),
			CitationCount: intp(5000),
			Authors: []types.Author{
				{AuthorID: "a1", Name: "Grace Hopper"},
				{AuthorID: "a2", Name: "Alan Turing"},
			},
			References: []string{"d1", "d2", "d3"},
		},
		"c2": {
			PaperID:    "c2",
			Title:      "Second Cited",
			Depth:      1,
			Year:       intp(2015),
			Authors:    []types.Author{},
			References: []string{},
		},
	}
}

func TestFromDocument(t *testing.T) {
	r := FromDocument(testDocument())

	if r.TotalPapers != 3 {
		t.Errorf("TotalPapers = %d, want 3", r.TotalPapers)
	}
	if r.RootTitle != "Root Paper" {
		t.Errorf("RootTitle = %q", r.RootTitle)
	}
	if r.MaxDepth != 1 {
		t.Errorf("MaxDepth = %d, want 1", r.MaxDepth)
	}
	if r.PapersByDepth[0] != 1 || r.PapersByDepth[1] != 2 {
		t.Errorf("PapersByDepth = %v", r.PapersByDepth)
	}

	// Citation ranking descends; papers without a count are excluded.
	if len(r.TopCited) != 2 {
		t.Fatalf("TopCited = %d entries, want 2", len(r.TopCited))
	}
	if r.TopCited[0].PaperID != "c1" || r.TopCited[1].PaperID != "root" {
		t.Errorf("TopCited order = [%s %s]", r.TopCited[0].PaperID, r.TopCited[1].PaperID)
	}

	if r.YearMin != 2015 || r.YearMax != 2017 {
		t.Errorf("year range = %d-%d, want 2015-2017", r.YearMin, r.YearMax)
	}
	if r.DatedCount != 3 {
		t.Errorf("DatedCount = %d, want 3", r.DatedCount)
	}
	if len(r.TopYears) == 0 || r.TopYears[0].Year != 2015 || r.TopYears[0].Count != 2 {
		t.Errorf("TopYears = %v", r.TopYears)
	}

	if len(r.TopAuthors) != 2 || r.TopAuthors[0].Name != "Grace Hopper" || r.TopAuthors[0].Papers != 2 {
		t.Errorf("TopAuthors = %v", r.TopAuthors)
	}

	if r.TotalReferences != 5 {
		t.Errorf("TotalReferences = %d, want 5", r.TotalReferences)
	}
	if r.MaxReferences != 3 {
		t.Errorf("MaxReferences = %d, want 3", r.MaxReferences)
	}
	if r.PapersWithoutRefs != 1 {
		t.Errorf("PapersWithoutRefs = %d, want 1", r.PapersWithoutRefs)
	}
	if got := r.AvgReferences(); got < 1.66 || got > 1.67 {
		t.Errorf("AvgReferences = %f, want 5/3", got)
	}
}

func TestFromDocumentEmpty(t *testing.T) {
	r := FromDocument(export.Document{})

	if r.TotalPapers != 0 {
		t.Errorf("TotalPapers = %d, want 0", r.TotalPapers)
	}
	if r.RootTitle != "Unknown" {
		t.Errorf("RootTitle = %q, want Unknown", r.RootTitle)
	}
	if r.AvgReferences() != 0 {
		t.Errorf("AvgReferences = %f, want 0", r.AvgReferences())
	}
}

func TestFormatOutput(t *testing.T) {
	var b strings.Builder
	FromDocument(testDocument()).Format(&b)
	out := b.String()

	for _, want := range []string{
		"Total papers: 3",
		"Root paper:   Root Paper",
		"Most Cited Papers",
		"First Cited",
		"Year range: 2015-2017",
		"Grace Hopper: 2 papers",
		"Total references:   5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestFormatYAML(t *testing.T) {
	var b strings.Builder
	if err := FromDocument(testDocument()).FormatYAML(&b); err != nil {
		t.Fatalf("FormatYAML: %v", err)
	}

	var got Report
	if err := yaml.Unmarshal([]byte(b.String()), &got); err != nil {
		t.Fatalf("unmarshaling report: %v", err)
	}
	if got.TotalPapers != 3 {
		t.Errorf("total_papers = %d, want 3", got.TotalPapers)
	}
	if got.RootTitle != "Root Paper" {
		t.Errorf("root_title = %q, want Root Paper", got.RootTitle)
	}
	if len(got.TopCited) == 0 || got.TopCited[0].Title != "First Cited" {
		t.Errorf("top_cited = %+v, want First Cited ranked first", got.TopCited)
	}
}
