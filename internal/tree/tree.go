// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tree holds the citation tree container and the breadth-first
// builder that populates it from a remote fetcher.
package tree

import (
	"github.com/pdiddy/citetree/pkg/types"
)

// Tree holds the papers of one citation tree keyed by identifier. A Tree is
// populated incrementally during a build and read-only afterward. Every key
// maps to a Paper whose PaperID equals the key, and at most one Paper has
// depth 0 (the root). References of stored papers may point to identifiers
// outside the tree: the frontier beyond max depth, or fetch failures.
type Tree struct {
	rootID    string
	rootTitle string
	papers    map[string]types.Paper
	order     []string         // insertion order across the whole tree
	byDepth   map[int][]string // insertion order within each depth
	maxDepth  int
}

// NewTree creates an empty tree rooted at rootID.
func NewTree(rootID string) *Tree {
	return &Tree{
		rootID:  rootID,
		papers:  make(map[string]types.Paper),
		byDepth: make(map[int][]string),
	}
}

// Add inserts p unless its identifier is already present (first-write-wins).
// It reports whether the paper was inserted.
func (t *Tree) Add(p types.Paper) bool {
	if _, ok := t.papers[p.PaperID]; ok {
		return false
	}
	t.papers[p.PaperID] = p
	t.order = append(t.order, p.PaperID)
	t.byDepth[p.Depth] = append(t.byDepth[p.Depth], p.PaperID)
	if p.Depth > t.maxDepth {
		t.maxDepth = p.Depth
	}
	if p.Depth == 0 {
		t.rootTitle = p.Title
	}
	return true
}

// Get returns the paper stored under id.
func (t *Tree) Get(id string) (types.Paper, bool) {
	p, ok := t.papers[id]
	return p, ok
}

// Contains reports whether id is in the tree.
func (t *Tree) Contains(id string) bool {
	_, ok := t.papers[id]
	return ok
}

// RootID returns the identifier the tree was built from.
func (t *Tree) RootID() string {
	return t.rootID
}

// Root returns the unique depth-0 paper, if the root fetch succeeded.
func (t *Tree) Root() (types.Paper, bool) {
	ids := t.byDepth[0]
	if len(ids) == 0 {
		return types.Paper{}, false
	}
	return t.papers[ids[0]], true
}

// RootTitle returns the title of the root paper, or "Unknown" when the root
// was never fetched.
func (t *Tree) RootTitle() string {
	if t.rootTitle != "" {
		return t.rootTitle
	}
	return "Unknown"
}

// Size returns the number of papers in the tree.
func (t *Tree) Size() int {
	return len(t.papers)
}

// MaxDepth returns the deepest depth observed, 0 for an empty tree.
func (t *Tree) MaxDepth() int {
	return t.maxDepth
}

// PapersAtDepth returns the papers at the given depth in insertion order.
func (t *Tree) PapersAtDepth(depth int) []types.Paper {
	ids := t.byDepth[depth]
	papers := make([]types.Paper, 0, len(ids))
	for _, id := range ids {
		papers = append(papers, t.papers[id])
	}
	return papers
}

// All returns every paper in insertion order.
func (t *Tree) All() []types.Paper {
	papers := make([]types.Paper, 0, len(t.order))
	for _, id := range t.order {
		papers = append(papers, t.papers[id])
	}
	return papers
}

// Stats summarizes a tree: totals, root title, and a depth histogram.
type Stats struct {
	TotalPapers   int         `json:"total_papers" yaml:"total_papers"`
	RootTitle     string      `json:"root_title" yaml:"root_title"`
	MaxDepth      int         `json:"max_depth" yaml:"max_depth"`
	PapersByDepth map[int]int `json:"papers_by_depth" yaml:"papers_by_depth"`
}

// Stats computes the summary projection over the stored papers.
func (t *Tree) Stats() Stats {
	byDepth := make(map[int]int, len(t.byDepth))
	for depth, ids := range t.byDepth {
		byDepth[depth] = len(ids)
	}
	return Stats{
		TotalPapers:   t.Size(),
		RootTitle:     t.RootTitle(),
		MaxDepth:      t.MaxDepth(),
		PapersByDepth: byDepth,
	}
}
