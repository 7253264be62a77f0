// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze computes read-only statistics over an exported citation
// tree document: depth and year distributions, heavily cited papers,
// prolific authors, and reference counts.
package analyze

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citetree/internal/export"
)

const topN = 10

// CitedPaper is one entry of the most-cited ranking.
type CitedPaper struct {
	PaperID       string `yaml:"paper_id"`
	Title         string `yaml:"title"`
	Depth         int    `yaml:"depth"`
	CitationCount int    `yaml:"citation_count"`
}

// AuthorCount is one entry of the prolific-author ranking.
type AuthorCount struct {
	Name   string `yaml:"name"`
	Papers int    `yaml:"papers"`
}

// YearCount is one entry of the publication-year distribution.
type YearCount struct {
	Year  int `yaml:"year"`
	Count int `yaml:"count"`
}

// Report summarizes a citation tree document.
type Report struct {
	TotalPapers   int         `yaml:"total_papers"`
	RootTitle     string      `yaml:"root_title"`
	MaxDepth      int         `yaml:"max_depth"`
	PapersByDepth map[int]int `yaml:"papers_by_depth"`

	TopCited []CitedPaper `yaml:"top_cited"`

	YearMin    int         `yaml:"year_min"`
	YearMax    int         `yaml:"year_max"`
	TopYears   []YearCount `yaml:"top_years"`
	DatedCount int         `yaml:"dated_count"` // papers with a known year

	TopAuthors []AuthorCount `yaml:"top_authors"`

	TotalReferences   int `yaml:"total_references"`
	MaxReferences     int `yaml:"max_references"`
	PapersWithoutRefs int `yaml:"papers_without_refs"`
}

// FromDocument computes the report over a loaded document.
func FromDocument(doc export.Document) Report {
	r := Report{
		TotalPapers:   len(doc),
		RootTitle:     "Unknown",
		PapersByDepth: make(map[int]int),
	}

	yearCounts := make(map[int]int)
	authorCounts := make(map[string]int)
	var cited []CitedPaper

	for _, p := range doc {
		r.PapersByDepth[p.Depth]++
		if p.Depth > r.MaxDepth {
			r.MaxDepth = p.Depth
		}
		if p.Depth == 0 {
			r.RootTitle = p.Title
		}

		if p.Year != nil {
			y := *p.Year
			yearCounts[y]++
			r.DatedCount++
			if r.YearMin == 0 || y < r.YearMin {
				r.YearMin = y
			}
			if y > r.YearMax {
				r.YearMax = y
			}
		}

		for _, a := range p.Authors {
			if a.Name != "" {
				authorCounts[a.Name]++
			}
		}

		r.TotalReferences += len(p.References)
		if len(p.References) > r.MaxReferences {
			r.MaxReferences = len(p.References)
		}
		if len(p.References) == 0 {
			r.PapersWithoutRefs++
		}

		if p.CitationCount != nil {
			cited = append(cited, CitedPaper{
				PaperID:       p.PaperID,
				Title:         p.Title,
				Depth:         p.Depth,
				CitationCount: *p.CitationCount,
			})
		}
	}

	sort.Slice(cited, func(i, j int) bool {
		if cited[i].CitationCount != cited[j].CitationCount {
			return cited[i].CitationCount > cited[j].CitationCount
		}
		return cited[i].PaperID < cited[j].PaperID
	})
	if len(cited) > topN {
		cited = cited[:topN]
	}
	r.TopCited = cited

	r.TopYears = rankYears(yearCounts)
	r.TopAuthors = rankAuthors(authorCounts)

	return r
}

func rankYears(counts map[int]int) []YearCount {
	ranked := make([]YearCount, 0, len(counts))
	for y, n := range counts {
		ranked = append(ranked, YearCount{Year: y, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Year > ranked[j].Year
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func rankAuthors(counts map[string]int) []AuthorCount {
	ranked := make([]AuthorCount, 0, len(counts))
	for name, n := range counts {
		ranked = append(ranked, AuthorCount{Name: name, Papers: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Papers != ranked[j].Papers {
			return ranked[i].Papers > ranked[j].Papers
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// AvgReferences returns the mean outgoing reference count.
func (r Report) AvgReferences() float64 {
	if r.TotalPapers == 0 {
		return 0
	}
	return float64(r.TotalReferences) / float64(r.TotalPapers)
}

// Format writes the report as a human-readable summary.
func (r Report) Format(w io.Writer) {
	section(w, "Basic Statistics")
	fmt.Fprintf(w, "Total papers: %d\n", r.TotalPapers)
	fmt.Fprintf(w, "Root paper:   %s\n", r.RootTitle)
	fmt.Fprintf(w, "Max depth:    %d\n", r.MaxDepth)

	if r.TotalPapers > 0 {
		fmt.Fprintln(w, "\nDepth distribution:")
		depths := make([]int, 0, len(r.PapersByDepth))
		for d := range r.PapersByDepth {
			depths = append(depths, d)
		}
		sort.Ints(depths)
		for _, d := range depths {
			count := r.PapersByDepth[d]
			pct := float64(count) / float64(r.TotalPapers) * 100
			fmt.Fprintf(w, "  depth %d: %4d papers (%5.1f%%) %s\n", d, count, pct, bar(pct))
		}
	}

	if len(r.TopCited) > 0 {
		section(w, "Most Cited Papers")
		for i, p := range r.TopCited {
			fmt.Fprintf(w, "%2d. [%8d citations] [depth %d] %s\n", i+1, p.CitationCount, p.Depth, p.Title)
		}
	}

	if r.DatedCount > 0 {
		section(w, "Publication Years")
		fmt.Fprintf(w, "Year range: %d-%d (%d dated papers)\n", r.YearMin, r.YearMax, r.DatedCount)
		for _, yc := range r.TopYears {
			fmt.Fprintf(w, "  %d: %4d papers\n", yc.Year, yc.Count)
		}
	}

	if len(r.TopAuthors) > 0 {
		section(w, "Most Prolific Authors")
		for i, a := range r.TopAuthors {
			fmt.Fprintf(w, "%2d. %s: %d papers\n", i+1, a.Name, a.Papers)
		}
	}

	section(w, "References")
	fmt.Fprintf(w, "Total references:   %d\n", r.TotalReferences)
	fmt.Fprintf(w, "Average per paper:  %.2f\n", r.AvgReferences())
	fmt.Fprintf(w, "Max references:     %d\n", r.MaxReferences)
	fmt.Fprintf(w, "Papers without any: %d\n", r.PapersWithoutRefs)
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("=", 60))
}

// bar renders a proportional histogram bar, one mark per two percent.
func bar(pct float64) string {
	return strings.Repeat("#", int(pct/2))
}

// FormatYAML writes the report to w as a YAML document.
func (r Report) FormatYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}
