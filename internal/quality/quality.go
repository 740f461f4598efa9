// Package quality folds the aggregated check outputs into one overall score
// and an ordered list of remediation suggestions for the extraction side.
package quality

import (
	"fmt"
	"math"
	"sort"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/schema"
)

// Inputs are the batch aggregates the quality score is computed from.
type Inputs struct {
	CoverageRatio float64
	// TotalCandidates is the number of scored candidates.
	TotalCandidates int
	// GroundedCount is the number of candidates classified EXACT or
	// PARAPHRASE.
	GroundedCount int
	// SchemaCleanCount is the number of candidates with zero schema issues.
	SchemaCleanCount int
	// TestableCount is the number of candidates without testability issues.
	TestableCount int
	DedupRatio    float64
	// SchemaIssues feed the aggregated missing-field suggestion.
	SchemaIssues       []schema.SchemaIssue
	GroundingIssues    int
	TestabilityIssues  int
	HallucinationFlags int
	DuplicatePairs     int
}

// Result is the aggregate quality verdict detail.
type Result struct {
	OverallScore float64
	// Suggestions is ordered by check, deterministic for identical inputs.
	Suggestions []string
}

// Aggregate computes the weighted overall score and the remediation
// suggestions. Fractions over an empty batch are zero, so an empty batch
// scores only its coverage component.
func Aggregate(in Inputs, cfg *config.Config) Result {
	score := cfg.Quality.Coverage * in.CoverageRatio
	if in.TotalCandidates > 0 {
		n := float64(in.TotalCandidates)
		score += cfg.Quality.Grounding * (float64(in.GroundedCount) / n)
		score += cfg.Quality.Schema * (float64(in.SchemaCleanCount) / n)
		score += cfg.Quality.Testability * (float64(in.TestableCount) / n)
	}

	return Result{
		OverallScore: round3(clamp01(score)),
		Suggestions:  suggest(in, cfg),
	}
}

func suggest(in Inputs, cfg *config.Config) []string {
	var out []string

	if in.CoverageRatio < cfg.Coverage.MinRatio {
		out = append(out, fmt.Sprintf(
			"coverage ratio %.2f is below the minimum %.2f: relax extraction scope so more source chunks yield candidates",
			in.CoverageRatio, cfg.Coverage.MinRatio))
	} else if in.CoverageRatio < cfg.Coverage.WarningRatio {
		out = append(out, fmt.Sprintf(
			"coverage ratio %.2f is below the warning band %.2f: review chunks with zero extractions for missed requirements",
			in.CoverageRatio, cfg.Coverage.WarningRatio))
	}

	if in.TestabilityIssues > cfg.Testability.MaxIssues {
		out = append(out, fmt.Sprintf(
			"%d candidates are not testable: require explicit pass/fail conditions and measurable thresholds in extraction output",
			in.TestabilityIssues))
	}

	if in.GroundingIssues > cfg.Grounding.MaxIssues {
		out = append(out, fmt.Sprintf(
			"%d candidates are weakly grounded: verify citations against source text before accepting them",
			in.GroundingIssues))
	}

	if fields := aggregateMissing(in.SchemaIssues); len(fields) > 0 {
		out = append(out, fmt.Sprintf(
			"schema gaps remain after repair (%s): have extraction populate required attribute fields",
			joinCounts(fields)))
	}

	if in.DedupRatio < cfg.Dedup.MinRatio {
		out = append(out, fmt.Sprintf(
			"dedup ratio %.2f is below the minimum %.2f: merge the %d near-duplicate pairs before downstream use",
			in.DedupRatio, cfg.Dedup.MinRatio, in.DuplicatePairs))
	}

	if in.HallucinationFlags > 0 {
		out = append(out, fmt.Sprintf(
			"%d candidates carry hallucination risk flags: route them for manual review",
			in.HallucinationFlags))
	}

	if len(out) == 0 {
		out = append(out, "all checks passed: batch is ready for downstream processing")
	}
	return out
}

type fieldCount struct {
	field string
	n     int
}

// aggregateMissing collapses missing fields across issues into a sorted
// per-field tally.
func aggregateMissing(issues []schema.SchemaIssue) []fieldCount {
	counts := map[string]int{}
	for _, is := range issues {
		for _, f := range is.MissingFields {
			counts[f]++
		}
	}
	out := make([]fieldCount, 0, len(counts))
	for f, n := range counts {
		out = append(out, fieldCount{field: f, n: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].field < out[j].field
	})
	return out
}

func joinCounts(fields []fieldCount) string {
	s := ""
	for i, fc := range fields {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s missing %dx", fc.field, fc.n)
	}
	return s
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
