// Package grounding scores how well a candidate's description is supported by
// its cited source excerpt, using four weighted lexical signals. Scores are
// reproducible from the inputs alone; INFERENCE candidates are recorded as
// issues but never dropped here — accept/retry is a routing decision made
// downstream from the report.
package grounding

import (
	"fmt"
	"math"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/schema"
	"github.com/evalgate/evalgate/internal/textmatch"
)

// Result is the full grounding outcome for one candidate.
type Result struct {
	Score float64
	Class schema.GroundingClass

	// Signal contributions, already weighted.
	Lexical     float64
	Phrase      float64
	Consistency float64
	SourceMatch float64

	// Evidence.
	Jaccard       float64
	Phrases       []string
	Contradiction bool
	SourceFound   bool
}

// Validate scores one candidate against its cited excerpt and the text of the
// chunk it names. chunkText is empty when source_chunk_id resolves to no
// chunk.
func Validate(c schema.Candidate, chunkText string, cfg *config.Config) Result {
	w := cfg.Grounding.Weights
	r := Result{}

	// Lexical overlap: Jaccard of the case-folded word sets.
	r.Jaccard = textmatch.Jaccard(c.Description, c.GroundedIn)
	r.Lexical = round3(w.Lexical * r.Jaccard)

	// Phrase overlap: each maximal contiguous run of MinPhraseWords+ words
	// from the excerpt found verbatim in the description earns an equal share
	// of the phrase weight; with at least one match the shares sum to the
	// full weight, so the credit collapses to all or nothing.
	r.Phrases = textmatch.ContiguousPhrases(c.GroundedIn, c.Description, cfg.Grounding.MinPhraseWords)
	if len(r.Phrases) > 0 {
		r.Phrase = round3(w.Phrase)
	}

	// Semantic consistency: flat credit unless polarity contradicts.
	r.Contradiction = textmatch.NegationMismatch(c.Description, c.GroundedIn, cfg.Text.NegationMarkers)
	if !r.Contradiction {
		r.Consistency = w.Consistency
	}

	// Source match: the excerpt must actually occur in the cited chunk.
	r.SourceFound = chunkText != "" && textmatch.ContainsFold(chunkText, c.GroundedIn)
	if r.SourceFound {
		r.SourceMatch = w.SourceMatch
	}

	r.Score = round3(r.Lexical + r.Phrase + r.Consistency + r.SourceMatch)
	r.Class = classify(r.Score, cfg)
	return r
}

func classify(score float64, cfg *config.Config) schema.GroundingClass {
	switch {
	case score > cfg.Grounding.ExactThreshold:
		return schema.GroundingExact
	case score < cfg.Grounding.InferenceThreshold:
		return schema.GroundingInference
	default:
		return schema.GroundingParaphrase
	}
}

// Issue converts a weak grounding result into a recordable issue. Returns nil
// for well-grounded candidates.
func Issue(c schema.Candidate, r Result) *schema.GroundingIssue {
	var problems []string
	severity := schema.SeverityMedium

	if c.GroundedIn == "" {
		problems = append(problems, "missing grounded_in citation")
		severity = schema.SeverityHigh
	}
	if r.Contradiction {
		problems = append(problems, "description polarity contradicts cited source text")
		severity = schema.SeverityHigh
	}
	if r.Class == schema.GroundingInference {
		problems = append(problems, fmt.Sprintf("grounding classified as INFERENCE (score %.3f)", r.Score))
	}

	if len(problems) == 0 {
		return nil
	}
	return &schema.GroundingIssue{
		CandidateID:   c.ID,
		Class:         r.Class,
		Score:         r.Score,
		Problems:      problems,
		Severity:      severity,
		Contradiction: r.Contradiction,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
