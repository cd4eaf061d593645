package compare

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/musicsort/pkg/models"
)

// DuplicateGroup is a set of files with identical content
type DuplicateGroup struct {
	Hash  string
	Size  int64
	Paths []string
}

// Wasted returns the bytes taken by all copies but one
func (g DuplicateGroup) Wasted() int64 {
	return g.Size * int64(len(g.Paths)-1)
}

// DuplicateFinder groups files by content. Files are first bucketed by
// size; large files are then split by a partial hash before the full
// SHA-256 decides.
type DuplicateFinder struct {
	hasher  *Hasher
	workers int
}

// NewDuplicateFinder creates a finder. workers <= 0 means GOMAXPROCS.
func NewDuplicateFinder(hasher *Hasher, workers int) *DuplicateFinder {
	if hasher == nil {
		hasher = NewHasher(0, nil)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &DuplicateFinder{hasher: hasher, workers: workers}
}

type candidate struct {
	path string
	size int64
	key  string
	err  error
}

// Find returns the duplicate groups among files, largest waste first.
// Files that cannot be read are left out of every group.
func (d *DuplicateFinder) Find(ctx context.Context, files []models.MediaFile) ([]DuplicateGroup, error) {
	bySize := make(map[int64][]*candidate)
	for _, f := range files {
		bySize[f.Size] = append(bySize[f.Size], &candidate{path: f.Path, size: f.Size})
	}

	var pending []*candidate
	for _, group := range bySize {
		if len(group) > 1 {
			pending = append(pending, group...)
		}
	}

	// Partial hashes only pay off for large files
	var large []*candidate
	for _, c := range pending {
		if c.size >= partialHashThreshold {
			large = append(large, c)
		}
	}
	if err := d.digest(ctx, large, d.hasher.PartialHash); err != nil {
		return nil, err
	}
	pending = regroup(pending)

	if err := d.digest(ctx, pending, d.hasher.Hash); err != nil {
		return nil, err
	}

	buckets := make(map[string][]*candidate)
	for _, c := range pending {
		if c.err == nil {
			buckets[c.key] = append(buckets[c.key], c)
		}
	}

	var groups []DuplicateGroup
	for key, members := range buckets {
		if len(members) < 2 {
			continue
		}
		g := DuplicateGroup{Hash: key, Size: members[0].size}
		for _, m := range members {
			g.Paths = append(g.Paths, m.path)
		}
		sort.Strings(g.Paths)
		groups = append(groups, g)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Wasted() != groups[j].Wasted() {
			return groups[i].Wasted() > groups[j].Wasted()
		}
		return groups[i].Paths[0] < groups[j].Paths[0]
	})
	return groups, nil
}

// digest hashes candidates concurrently, storing the digest in key
func (d *DuplicateFinder) digest(ctx context.Context, cands []*candidate, hash func(context.Context, string) (string, error)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for _, c := range cands {
		c := c
		g.Go(func() error {
			sum, err := hash(gctx, c.path)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				c.err = err
				return nil
			}
			c.key = sum
			return nil
		})
	}
	return g.Wait()
}

// regroup keeps candidates that still share size and partial digest with
// at least one other candidate. Keys are reset for the full hash pass.
func regroup(cands []*candidate) []*candidate {
	type groupKey struct {
		size int64
		key  string
	}
	groups := make(map[groupKey][]*candidate)
	for _, c := range cands {
		if c.err != nil {
			continue
		}
		k := groupKey{c.size, c.key}
		groups[k] = append(groups[k], c)
	}

	var kept []*candidate
	for _, g := range groups {
		if len(g) > 1 {
			for _, c := range g {
				c.key = ""
				kept = append(kept, c)
			}
		}
	}
	return kept
}
