// Package coverage computes what fraction of source chunks produced at least
// one candidate. It has no failure condition of its own; the ratio feeds the
// failure classifier.
package coverage

import (
	"github.com/evalgate/evalgate/internal/schema"
)

// Result summarizes chunk coverage for one batch.
type Result struct {
	TotalChunks     int
	ChunksProcessed int
	// ZeroExtractionChunks lists chunk ids with no candidate, in chunk order.
	ZeroExtractionChunks []string
	Ratio                float64
}

// Analyze computes the set of chunk ids referenced by at least one
// candidate's source_chunk_id. The ratio is 0.0 when there are no chunks.
func Analyze(chunks []schema.SourceChunk, candidates []schema.Candidate) Result {
	if len(chunks) == 0 {
		return Result{ZeroExtractionChunks: []string{}}
	}

	referenced := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if c.SourceChunkID != "" {
			referenced[c.SourceChunkID] = struct{}{}
		}
	}

	// Count only references that resolve to a real chunk; a dangling
	// source_chunk_id must not inflate the ratio.
	processed := 0
	zero := []string{}
	for _, ch := range chunks {
		if _, ok := referenced[ch.ID]; ok {
			processed++
		} else {
			zero = append(zero, ch.ID)
		}
	}

	return Result{
		TotalChunks:          len(chunks),
		ChunksProcessed:      processed,
		ZeroExtractionChunks: zero,
		Ratio:                float64(processed) / float64(len(chunks)),
	}
}
