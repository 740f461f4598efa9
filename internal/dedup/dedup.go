// Package dedup finds near-duplicate candidates within a batch by pairwise
// Jaccard similarity of descriptions. Only candidates sharing a rule type are
// ever compared. The scan is O(n²) within each rule-type partition, which is
// acceptable at batch sizes of tens to low hundreds; partitions are
// independent and compared in parallel with append-only result lists merged
// at the end.
package dedup

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/schema"
	"github.com/evalgate/evalgate/internal/textmatch"
)

// Result summarizes duplicate detection for one batch.
type Result struct {
	// Pairs holds each near-duplicate pair once, ordered by the positions of
	// its members in the input batch.
	Pairs       []schema.DuplicatePair
	UniqueCount int
	// Ratio is unique_count / total, 1.0 for an empty batch.
	Ratio float64
}

// indexed keeps the batch position so merged output stays in input order.
type indexed struct {
	a, b int
	pair schema.DuplicatePair
}

// Detect runs the duplicate scan over the whole batch. It requires the
// complete batch; unlike the per-candidate checks it cannot be computed for
// one candidate in isolation.
func Detect(ctx context.Context, candidates []schema.Candidate, cfg *config.Config) (Result, error) {
	total := len(candidates)
	if total == 0 {
		return Result{Pairs: []schema.DuplicatePair{}, Ratio: 1.0}, nil
	}

	// Partition by rule type, preserving batch order within each partition.
	order := []schema.RuleType{}
	partitions := map[schema.RuleType][]int{}
	for i, c := range candidates {
		if _, ok := partitions[c.RuleType]; !ok {
			order = append(order, c.RuleType)
		}
		partitions[c.RuleType] = append(partitions[c.RuleType], i)
	}

	results := make([][]indexed, len(order))
	g, ctx := errgroup.WithContext(ctx)
	for pi, rt := range order {
		pi := pi
		indices := partitions[rt]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[pi] = scanPartition(candidates, indices, cfg.Dedup.SimilarityThreshold)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var merged []indexed
	for _, part := range results {
		merged = append(merged, part...)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].a != merged[j].a {
			return merged[i].a < merged[j].a
		}
		return merged[i].b < merged[j].b
	})

	pairs := make([]schema.DuplicatePair, len(merged))
	for i, m := range merged {
		pairs[i] = m.pair
	}

	unique := total - len(pairs)
	if unique < 0 {
		unique = 0
	}
	return Result{
		Pairs:       pairs,
		UniqueCount: unique,
		Ratio:       round3(float64(unique) / float64(total)),
	}, nil
}

func scanPartition(candidates []schema.Candidate, indices []int, threshold float64) []indexed {
	var out []indexed
	for x := 0; x < len(indices); x++ {
		for y := x + 1; y < len(indices); y++ {
			a, b := candidates[indices[x]], candidates[indices[y]]
			sim := textmatch.Jaccard(a.Description, b.Description)
			if sim < threshold {
				continue
			}
			out = append(out, indexed{
				a: indices[x],
				b: indices[y],
				pair: schema.DuplicatePair{
					IDA:        a.ID,
					IDB:        b.ID,
					Similarity: round3(sim),
					RuleType:   a.RuleType,
				},
			})
		}
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
