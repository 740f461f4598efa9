package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/schema"
)

func TestAggregatePerfectBatch(t *testing.T) {
	in := Inputs{
		CoverageRatio:    1.0,
		TotalCandidates:  4,
		GroundedCount:    4,
		SchemaCleanCount: 4,
		TestableCount:    4,
		DedupRatio:       1.0,
	}
	res := Aggregate(in, config.Default())
	assert.Equal(t, 1.0, res.OverallScore)
	require.Len(t, res.Suggestions, 1)
	assert.Contains(t, res.Suggestions[0], "ready for downstream processing")
}

func TestAggregateEmptyBatchScoresCoverageOnly(t *testing.T) {
	in := Inputs{CoverageRatio: 0.0, DedupRatio: 1.0}
	res := Aggregate(in, config.Default())
	assert.Equal(t, 0.0, res.OverallScore)
}

func TestAggregateWeightedScore(t *testing.T) {
	// 0.30*1.0 + 0.30*0.5 + 0.20*0.5 + 0.20*1.0 = 0.75
	in := Inputs{
		CoverageRatio:    1.0,
		TotalCandidates:  4,
		GroundedCount:    2,
		SchemaCleanCount: 2,
		TestableCount:    4,
		DedupRatio:       1.0,
	}
	res := Aggregate(in, config.Default())
	assert.InDelta(t, 0.75, res.OverallScore, 1e-9)
}

func TestAggregateCoverageSuggestions(t *testing.T) {
	in := Inputs{CoverageRatio: 0.45, TotalCandidates: 1, DedupRatio: 1.0}
	res := Aggregate(in, config.Default())
	require.NotEmpty(t, res.Suggestions)
	assert.Contains(t, res.Suggestions[0], "relax extraction scope")

	in.CoverageRatio = 0.70
	res = Aggregate(in, config.Default())
	require.NotEmpty(t, res.Suggestions)
	assert.Contains(t, res.Suggestions[0], "zero extractions")
}

func TestAggregateSuggestionOrderIsStable(t *testing.T) {
	in := Inputs{
		CoverageRatio:      0.40,
		TotalCandidates:    10,
		DedupRatio:         0.50,
		TestabilityIssues:  6,
		GroundingIssues:    4,
		HallucinationFlags: 2,
		DuplicatePairs:     5,
	}
	res := Aggregate(in, config.Default())
	require.Len(t, res.Suggestions, 5)
	assert.Contains(t, res.Suggestions[0], "relax extraction scope")
	assert.Contains(t, res.Suggestions[1], "pass/fail conditions")
	assert.Contains(t, res.Suggestions[2], "verify citations")
	assert.Contains(t, res.Suggestions[3], "near-duplicate")
	assert.Contains(t, res.Suggestions[4], "manual review")
}

func TestAggregateSchemaGapSuggestionSortedByCount(t *testing.T) {
	issues := []schema.SchemaIssue{
		{CandidateID: "c1", MissingFields: []string{"threshold_unit"}},
		{CandidateID: "c2", MissingFields: []string{"threshold_unit", "applies_to"}},
		{CandidateID: "c3", MissingFields: []string{"threshold_unit"}},
	}
	in := Inputs{
		CoverageRatio:   1.0,
		TotalCandidates: 3,
		DedupRatio:      1.0,
		SchemaIssues:    issues,
	}
	res := Aggregate(in, config.Default())
	var gap string
	for _, s := range res.Suggestions {
		if strings.Contains(s, "schema gaps") {
			gap = s
		}
	}
	require.NotEmpty(t, gap)
	assert.Contains(t, gap, "threshold_unit missing 3x, applies_to missing 1x")
}

func TestAggregateScoreClamped(t *testing.T) {
	in := Inputs{
		CoverageRatio:    2.0, // out-of-range input must not escape [0,1]
		TotalCandidates:  1,
		GroundedCount:    1,
		SchemaCleanCount: 1,
		TestableCount:    1,
		DedupRatio:       1.0,
	}
	res := Aggregate(in, config.Default())
	assert.LessOrEqual(t, res.OverallScore, 1.0)
}
