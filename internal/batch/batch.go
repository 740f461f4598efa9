// Package batch loads and sanity-checks the evaluation inputs: the source
// chunk set and the candidate list produced by the upstream extractor.
package batch

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/evalgate/evalgate/internal/schema"
)

// Batch is one complete evaluation input. Chunks and Candidates keep their
// file order; report output depends on it.
type Batch struct {
	Chunks     []schema.SourceChunk `json:"chunks"`
	Candidates []schema.Candidate   `json:"candidates"`
	// ExtractionIteration is the extractor's pass number for this batch.
	// Zero means unset; the pipeline then falls back to the highest
	// per-candidate iteration.
	ExtractionIteration int `json:"extraction_iteration,omitempty"`
}

// LoadChunks reads a JSON array of source chunks from path.
func LoadChunks(path string) ([]schema.SourceChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch: read chunks: %w", err)
	}
	var chunks []schema.SourceChunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("batch: parse chunks %s: %w", path, err)
	}
	return chunks, nil
}

// LoadCandidates reads a JSON array of requirement candidates from path.
func LoadCandidates(path string) ([]schema.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch: read candidates: %w", err)
	}
	var candidates []schema.Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("batch: parse candidates %s: %w", path, err)
	}
	return candidates, nil
}

// ValidateChunks returns a list of contract problems in the chunk set.
// An empty list means the chunks are usable.
func ValidateChunks(chunks []schema.SourceChunk) []string {
	var errs []string
	seen := map[string]bool{}
	for i, ch := range chunks {
		if ch.ID == "" {
			errs = append(errs, fmt.Sprintf("chunk[%d]: missing id", i))
			continue
		}
		if seen[ch.ID] {
			errs = append(errs, fmt.Sprintf("chunk[%d]: duplicate id %q", i, ch.ID))
		}
		seen[ch.ID] = true
		if ch.Text == "" {
			errs = append(errs, fmt.Sprintf("chunk[%d] (%s): empty text", i, ch.ID))
		}
	}
	return errs
}

// ValidateCandidates returns a list of contract problems in the candidate
// list. Malformed individual candidates are not reported here; the pipeline
// degrades those to recorded issues instead of rejecting the batch.
func ValidateCandidates(candidates []schema.Candidate) []string {
	var errs []string
	seen := map[string]bool{}
	for i, c := range candidates {
		if c.ID == "" {
			errs = append(errs, fmt.Sprintf("candidate[%d]: missing id", i))
			continue
		}
		if seen[c.ID] {
			errs = append(errs, fmt.Sprintf("candidate[%d]: duplicate id %q", i, c.ID))
		}
		seen[c.ID] = true
	}
	return errs
}

// Malformed reports whether c is missing a field the checks cannot run
// without. Such candidates are excluded from scoring and surfaced as
// testability issues.
func Malformed(c schema.Candidate) (string, bool) {
	switch {
	case c.RuleType == "":
		return "missing rule_type", true
	case c.Description == "":
		return "missing description", true
	case c.SourceChunkID == "":
		return "missing source_chunk_id", true
	}
	return "", false
}
