// Package similarity groups cover pages whose text is alike: a dense
// cosine matrix over every embedded cover's text embedding, clustered with
// union-find at a fixed threshold.
package similarity

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/KimHands/clasp/pkg/store"
)

// Threshold is the minimum cosine similarity at which two covers are
// placed in the same group (§4.7).
const Threshold = 0.80

// InferTagFunc lets the grouper derive an auto-tag for a formed group
// without importing the embedding package directly (it would otherwise
// need both pkg/embed and pkg/classify's category bookkeeping).
type InferTagFunc func(ctx context.Context, text, category string) (tag string, ok bool)

// Recompute rebuilds every CoverSimilarityGroup row from scratch: it
// parses every cover's embedding, computes the full pairwise cosine
// matrix in row blocks (parallelized via errgroup, since the pack has no
// BLAS/vector-math dependency to call into), unions components at
// Threshold, and replaces the stored groups.
func Recompute(ctx context.Context, s *store.Store, categoryOf map[int64]string, inferTag InferTagFunc) error {
	covers, err := s.AllCoversWithEmbedding(ctx)
	if err != nil {
		return err
	}
	if len(covers) < 2 {
		return s.ReplaceSimilarityGroups(ctx, nil)
	}

	vectors := make([][]float32, len(covers))
	valid := make([]bool, len(covers))
	for i, c := range covers {
		var v []float32
		if json.Unmarshal([]byte(c.Embedding), &v) == nil && len(v) > 0 {
			vectors[i] = v
			valid[i] = true
		}
	}

	n := len(covers)
	sim := make([][]float32, n)
	for i := range sim {
		sim[i] = make([]float32, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	const blockSize = 64
	for start := 0; start < n; start += blockSize {
		start := start
		end := start + blockSize
		if end > n {
			end = n
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if !valid[i] {
					continue
				}
				for j := i + 1; j < n; j++ {
					if !valid[j] {
						continue
					}
					sim[i][j] = cosine(vectors[i], vectors[j])
					sim[j][i] = sim[i][j]
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	uf := newUnionFind(n)
	for i := 0; i < n; i++ {
		if !valid[i] {
			continue
		}
		for j := i + 1; j < n; j++ {
			if valid[j] && sim[i][j] >= Threshold {
				uf.union(i, j)
			}
		}
	}

	components := map[int][]int{}
	for i := 0; i < n; i++ {
		if !valid[i] {
			continue
		}
		root := uf.find(i)
		components[root] = append(components[root], i)
	}

	var groups []store.CoverSimilarityGroup
	for _, members := range components {
		if len(members) < 2 {
			continue
		}
		groupID := uuid.NewString()

		counts := map[string]int{}
		var texts []string
		for _, m := range members {
			if cat := categoryOf[covers[m].FileID]; cat != "" {
				counts[cat]++
			}
			texts = append(texts, covers[m].CoverText)
		}
		dominant := ""
		best := 0
		for cat, c := range counts {
			if c > best {
				best = c
				dominant = cat
			}
		}
		var autoTag string
		if dominant != "" && inferTag != nil {
			if tag, ok := inferTag(ctx, concat(texts), dominant); ok {
				autoTag = tag
			}
		}

		for _, m := range members {
			var sum float32
			for _, other := range members {
				if other != m {
					sum += sim[m][other]
				}
			}
			avg := sum / float32(len(members)-1)
			groups = append(groups, store.CoverSimilarityGroup{
				GroupID:          groupID,
				FileID:           covers[m].FileID,
				SimilarityScore:  float64(avg),
				AutoTag:          autoTag,
			})
		}
	}

	return s.ReplaceSimilarityGroups(ctx, groups)
}

func concat(texts []string) string {
	out := ""
	for i, t := range texts {
		if i > 0 {
			out += "\n"
		}
		out += t
	}
	return out
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (sqrt(na) * sqrt(nb)))
}

func sqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	z := x
	for i := 0; i < 32; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(x, y int) {
	rx, ry := u.find(x), u.find(y)
	if rx != ry {
		u.parent[rx] = ry
	}
}
