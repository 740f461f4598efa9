// Package verdict provides deterministic local logic for batch failure
// classification. No scoring happens here; it consumes the aggregated
// outputs of the per-candidate checks and the duplicate pass.
package verdict

import (
	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/schema"
)

// Inputs are the aggregated check outputs a batch verdict is derived from.
type Inputs struct {
	// TotalChunks gates the coverage rule: a batch with no chunks at all has
	// nothing to cover and cannot fail on coverage.
	TotalChunks         int
	CoverageRatio       float64
	TestabilityCount    int
	GroundingCount      int
	DedupRatio          float64
	HallucinationCount  int
	ExtractionIteration int
}

// Verdict is the routing signal for one batch.
type Verdict struct {
	FailureType schema.FailureType
	Severity    schema.Severity
	IsRetryable bool
}

// Classify applies the failure decision table to in.
//
// Rules (in order of precedence):
//  1. coverage_ratio below minimum → coverage failure, high severity,
//     retryable on the first extraction pass only.
//  2. testability issue count over the limit → testability failure (multi if a
//     failure is already set), high severity, never retryable.
//  3. grounding issue count over the limit → grounding failure (or multi),
//     severity raised to at least medium.
//  4. dedup_ratio below minimum → dedup failure (or multi), severity raised
//     to at least medium, retryable on the first pass unless a non-retryable
//     failure is already set.
//  5. hallucination flag count over the limit → severity forced to critical and
//     retryability cleared, overriding everything above.
//
// When nothing triggers the verdict is none/low and there is nothing to
// retry.
func Classify(in Inputs, cfg *config.Config) Verdict {
	iteration := in.ExtractionIteration
	if iteration < 1 {
		iteration = 1
	}

	v := Verdict{FailureType: schema.FailureNone, Severity: schema.SeverityLow}
	retryLocked := false

	if in.TotalChunks > 0 && in.CoverageRatio < cfg.Coverage.MinRatio {
		v.FailureType = schema.FailureCoverage
		v.Severity = schema.SeverityHigh
		v.IsRetryable = iteration < 2
	}

	if in.TestabilityCount > cfg.Testability.MaxIssues {
		v.FailureType = combine(v.FailureType, schema.FailureTestability)
		v.Severity = raise(v.Severity, schema.SeverityHigh)
		v.IsRetryable = false
		retryLocked = true
	}

	if in.GroundingCount > cfg.Grounding.MaxIssues {
		v.FailureType = combine(v.FailureType, schema.FailureGrounding)
		v.Severity = raise(v.Severity, schema.SeverityMedium)
	}

	if in.DedupRatio < cfg.Dedup.MinRatio {
		v.FailureType = combine(v.FailureType, schema.FailureDedup)
		v.Severity = raise(v.Severity, schema.SeverityMedium)
		if !retryLocked {
			v.IsRetryable = iteration < 2
		}
	}

	if in.HallucinationCount > cfg.Hallucination.MaxFlags {
		v.Severity = raise(v.Severity, schema.SeverityCritical)
		v.IsRetryable = false
	}

	return v
}

func combine(current, next schema.FailureType) schema.FailureType {
	if current == schema.FailureNone {
		return next
	}
	if current == next {
		return current
	}
	return schema.FailureMulti
}

func raise(current, floor schema.Severity) schema.Severity {
	if SeverityOrdinal(current) < SeverityOrdinal(floor) {
		return floor
	}
	return current
}

// SeverityOrdinal returns the numeric ordinal for a severity, used to compare
// severity order. low=0, medium=1, high=2, critical=3.
// Used by --fail-on comparison: exit 2 if SeverityOrdinal(actual) >= SeverityOrdinal(threshold).
func SeverityOrdinal(s schema.Severity) int {
	switch s {
	case schema.SeverityLow:
		return 0
	case schema.SeverityMedium:
		return 1
	case schema.SeverityHigh:
		return 2
	case schema.SeverityCritical:
		return 3
	default:
		return -1
	}
}
