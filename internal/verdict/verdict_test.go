package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/schema"
)

func clean() Inputs {
	return Inputs{
		TotalChunks:         10,
		CoverageRatio:       1.0,
		DedupRatio:          1.0,
		ExtractionIteration: 1,
	}
}

func TestClassifyCleanBatch(t *testing.T) {
	v := Classify(clean(), config.Default())
	assert.Equal(t, schema.FailureNone, v.FailureType)
	assert.Equal(t, schema.SeverityLow, v.Severity)
	assert.False(t, v.IsRetryable)
}

func TestClassifyCoverageFailure(t *testing.T) {
	in := clean()
	in.CoverageRatio = 0.59

	v := Classify(in, config.Default())
	assert.Equal(t, schema.FailureCoverage, v.FailureType)
	assert.Equal(t, schema.SeverityHigh, v.Severity)
	assert.True(t, v.IsRetryable)

	in.ExtractionIteration = 2
	v = Classify(in, config.Default())
	assert.Equal(t, schema.FailureCoverage, v.FailureType)
	assert.False(t, v.IsRetryable)
}

func TestClassifyCoverageBoundary(t *testing.T) {
	in := clean()
	in.CoverageRatio = 0.60
	v := Classify(in, config.Default())
	assert.Equal(t, schema.FailureNone, v.FailureType)
}

func TestClassifyNoChunksCannotFailCoverage(t *testing.T) {
	in := clean()
	in.TotalChunks = 0
	in.CoverageRatio = 0.0
	v := Classify(in, config.Default())
	assert.Equal(t, schema.FailureNone, v.FailureType)
	assert.Equal(t, schema.SeverityLow, v.Severity)
}

func TestClassifyTestabilityNeverRetryable(t *testing.T) {
	in := clean()
	in.TestabilityCount = 6
	v := Classify(in, config.Default())
	assert.Equal(t, schema.FailureTestability, v.FailureType)
	assert.Equal(t, schema.SeverityHigh, v.Severity)
	assert.False(t, v.IsRetryable)
}

func TestClassifyTestabilityLocksRetry(t *testing.T) {
	// A later dedup failure on iteration 1 must not re-enable retry once
	// testability has marked the batch as a prompt defect.
	in := clean()
	in.TestabilityCount = 6
	in.DedupRatio = 0.50
	v := Classify(in, config.Default())
	assert.Equal(t, schema.FailureMulti, v.FailureType)
	assert.False(t, v.IsRetryable)
}

func TestClassifyGroundingRaisesToMedium(t *testing.T) {
	in := clean()
	in.GroundingCount = 4
	v := Classify(in, config.Default())
	assert.Equal(t, schema.FailureGrounding, v.FailureType)
	assert.Equal(t, schema.SeverityMedium, v.Severity)
	assert.False(t, v.IsRetryable)
}

func TestClassifyGroundingDoesNotLowerSeverity(t *testing.T) {
	in := clean()
	in.CoverageRatio = 0.30
	in.GroundingCount = 4
	v := Classify(in, config.Default())
	assert.Equal(t, schema.FailureMulti, v.FailureType)
	assert.Equal(t, schema.SeverityHigh, v.Severity)
}

func TestClassifyDedupRetryableFirstPass(t *testing.T) {
	in := clean()
	in.DedupRatio = 0.69
	v := Classify(in, config.Default())
	assert.Equal(t, schema.FailureDedup, v.FailureType)
	assert.Equal(t, schema.SeverityMedium, v.Severity)
	assert.True(t, v.IsRetryable)

	in.ExtractionIteration = 2
	v = Classify(in, config.Default())
	assert.False(t, v.IsRetryable)
}

func TestClassifyHallucinationOverridesEverything(t *testing.T) {
	in := clean()
	in.CoverageRatio = 0.59
	in.HallucinationCount = 6
	v := Classify(in, config.Default())
	assert.Equal(t, schema.SeverityCritical, v.Severity)
	assert.False(t, v.IsRetryable)
}

func TestClassifyHallucinationOnCleanBatch(t *testing.T) {
	in := clean()
	in.HallucinationCount = 6
	v := Classify(in, config.Default())
	assert.Equal(t, schema.FailureNone, v.FailureType)
	assert.Equal(t, schema.SeverityCritical, v.Severity)
	assert.False(t, v.IsRetryable)
}

func TestClassifyZeroIterationTreatedAsFirstPass(t *testing.T) {
	in := clean()
	in.CoverageRatio = 0.10
	in.ExtractionIteration = 0
	v := Classify(in, config.Default())
	assert.True(t, v.IsRetryable)
}

func TestSeverityOrdinal(t *testing.T) {
	assert.Equal(t, 0, SeverityOrdinal(schema.SeverityLow))
	assert.Equal(t, 1, SeverityOrdinal(schema.SeverityMedium))
	assert.Equal(t, 2, SeverityOrdinal(schema.SeverityHigh))
	assert.Equal(t, 3, SeverityOrdinal(schema.SeverityCritical))
	assert.Equal(t, -1, SeverityOrdinal(schema.Severity("unknown")))
}
