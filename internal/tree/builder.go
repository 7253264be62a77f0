// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tree

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/citetree/pkg/types"
)

// Fetcher returns the records for a set of paper identifiers. Not-found and
// malformed entries are dropped, so the result may be smaller than ids.
// internal/s2.Client is the production implementation.
type Fetcher interface {
	FetchBatch(ctx context.Context, ids []string) ([]types.PaperRecord, error)
}

// Builder runs level-synchronous breadth-first expansions over the citation
// graph. One Builder can serve any number of sequential builds.
type Builder struct {
	fetcher  Fetcher
	maxDepth int
	progress io.Writer
}

// NewBuilder creates a Builder that traverses to cfg.MaxDepth. Progress
// messages are written to progress; pass nil for a silent builder.
func NewBuilder(fetcher Fetcher, cfg types.BuildConfig, progress io.Writer) *Builder {
	maxDepth := cfg.MaxDepth
	if maxDepth < 0 {
		maxDepth = 0
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Builder{
		fetcher:  fetcher,
		maxDepth: maxDepth,
		progress: progress,
	}
}

// Build constructs the citation tree rooted at rootID. The traversal fetches
// one depth level per round: every record fetched at the current depth is
// inserted as a Paper tagged with that depth, and its references that have
// not been seen before are scheduled for the next level. The visited-set is
// global to the build, so each identifier is fetched at most once, and a
// paper's recorded depth is its first-discovery distance in traversal order.
// An identifier visited once is never re-layered, even when a later path
// would reach it at a different depth.
//
// The traversal stops when depth exceeds the maximum or the next frontier
// comes up empty. A terminal fetch failure fails the whole build; there is
// no partial-tree recovery.
func (b *Builder) Build(ctx context.Context, rootID string) (*Tree, error) {
	t := NewTree(rootID)
	visited := map[string]struct{}{rootID: {}}
	frontier := []string{rootID}

	fmt.Fprintf(b.progress, "building citation tree from %s (max depth %d)\n", rootID, b.maxDepth)

	for depth := 0; depth <= b.maxDepth && len(frontier) > 0; depth++ {
		fmt.Fprintf(b.progress, "depth %d: fetching %d papers\n", depth, len(frontier))

		records, err := b.fetcher.FetchBatch(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("fetching depth %d: %w", depth, err)
		}

		var next []string
		for _, rec := range records {
			if rec.PaperID == "" {
				continue
			}
			paper := types.PaperFromRecord(rec, depth)
			if !t.Add(paper) {
				continue
			}
			if depth >= b.maxDepth {
				continue
			}
			for _, ref := range paper.References {
				if _, seen := visited[ref]; seen {
					continue
				}
				visited[ref] = struct{}{}
				next = append(next, ref)
			}
		}

		fmt.Fprintf(b.progress, "depth %d: stored %d papers, %d new references\n",
			depth, len(records), len(next))

		frontier = next
	}

	fmt.Fprintf(b.progress, "done: %d papers, %d identifiers visited\n", t.Size(), len(visited))
	return t, nil
}

// BuildAll runs one independent build per root identifier. Each build keeps
// its own visited-set; there is no cross-tree deduplication. The first
// terminal failure aborts the remaining builds.
func (b *Builder) BuildAll(ctx context.Context, rootIDs []string) ([]*Tree, error) {
	trees := make([]*Tree, 0, len(rootIDs))
	for i, rootID := range rootIDs {
		fmt.Fprintf(b.progress, "tree %d/%d\n", i+1, len(rootIDs))
		t, err := b.Build(ctx, rootID)
		if err != nil {
			return nil, fmt.Errorf("building tree for %s: %w", rootID, err)
		}
		trees = append(trees, t)
	}
	return trees, nil
}
