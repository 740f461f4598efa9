// Package pipeline orchestrates a full batch evaluation: per-candidate
// checks in parallel, the batch-wide duplicate pass, failure classification,
// and report assembly. The pipeline is stateless between batches; the
// configuration and schema catalog are read-only for its lifetime.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/evalgate/evalgate/internal/batch"
	"github.com/evalgate/evalgate/internal/compliance"
	"github.com/evalgate/evalgate/internal/confidence"
	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/coverage"
	"github.com/evalgate/evalgate/internal/dedup"
	"github.com/evalgate/evalgate/internal/grounding"
	"github.com/evalgate/evalgate/internal/hallucination"
	"github.com/evalgate/evalgate/internal/quality"
	"github.com/evalgate/evalgate/internal/schema"
	"github.com/evalgate/evalgate/internal/testability"
	"github.com/evalgate/evalgate/internal/verdict"
)

// Version is stamped into every report.
const Version = "0.1.0"

// Pipeline evaluates candidate batches against a fixed configuration.
type Pipeline struct {
	cfg     *config.Config
	logger  *slog.Logger
	workers int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithWorkers caps the per-candidate concurrency. Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// New builds a Pipeline over cfg. A nil cfg selects the defaults.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	p := &Pipeline{
		cfg:     cfg,
		logger:  slog.Default(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// candidateResult holds everything the per-candidate checks produced for one
// scored candidate. Results are written into a position-indexed slice, so
// the parallel phase shares no mutable state.
type candidateResult struct {
	evaluation  schema.CandidateEvaluation
	repaired    schema.Candidate
	schemaIssue *schema.SchemaIssue
	repairs     []schema.Repair
	grounding   *schema.GroundingIssue
	halluc      *schema.HallucinationFlag
	testability *schema.TestabilityIssue
}

// Evaluate runs the full check suite over b and assembles the report.
// Malformed candidates degrade to recorded issues; the only errors returned
// are caller contract violations (nil batch or nil chunk set).
func (p *Pipeline) Evaluate(ctx context.Context, b *batch.Batch) (*schema.Report, error) {
	if b == nil {
		return nil, fmt.Errorf("pipeline: nil batch")
	}
	if b.Chunks == nil {
		return nil, fmt.Errorf("pipeline: nil chunk set")
	}
	if b.Candidates == nil {
		return nil, fmt.Errorf("pipeline: nil candidate list")
	}

	p.logger.Info("eval.started",
		"chunks", len(b.Chunks),
		"candidates", len(b.Candidates))

	chunkText := make(map[string]string, len(b.Chunks))
	for _, ch := range b.Chunks {
		chunkText[ch.ID] = ch.Text
	}

	// Malformed candidates are excluded from scoring but still recorded.
	var scored []schema.Candidate
	var excluded []string
	var malformedIssues []schema.TestabilityIssue
	for _, c := range b.Candidates {
		if reason, bad := batch.Malformed(c); bad {
			p.logger.Warn("eval.candidate_excluded", "id", c.ID, "reason", reason)
			excluded = append(excluded, c.ID)
			malformedIssues = append(malformedIssues, schema.TestabilityIssue{
				CandidateID: c.ID,
				Problems:    []string{reason},
				Severity:    schema.SeverityHigh,
			})
			continue
		}
		scored = append(scored, c)
	}

	results := make([]candidateResult, len(scored))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, c := range scored {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.evaluateCandidate(c, chunkText[c.SourceChunkID])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: candidate checks: %w", err)
	}

	// Barrier: every per-candidate check is done before the batch passes.
	cov := coverage.Analyze(b.Chunks, scored)
	dd, err := dedup.Detect(ctx, scored, p.cfg)
	if err != nil {
		return nil, fmt.Errorf("pipeline: duplicate scan: %w", err)
	}

	report := p.assemble(b, cov, dd, results, excluded, malformedIssues)

	p.logger.Info("eval.completed",
		"failure_type", report.FailureType,
		"failure_severity", report.FailureSeverity,
		"retryable", report.IsRetryable,
		"quality", report.OverallQualityScore)
	return report, nil
}

// evaluateCandidate runs the pure per-candidate checks in their data order:
// schema repair feeds confidence and testability, grounding feeds
// confidence, and the authoritative confidence feeds hallucination.
func (p *Pipeline) evaluateCandidate(c schema.Candidate, chunkText string) candidateResult {
	res := candidateResult{}

	comp := compliance.Validate(c)
	res.repaired = comp.Candidate
	res.schemaIssue = comp.Issue
	res.repairs = comp.Repairs

	schemaIssues := 0
	if comp.Issue != nil {
		schemaIssues = 1
	}

	gr := grounding.Validate(comp.Candidate, chunkText, p.cfg)
	res.grounding = grounding.Issue(comp.Candidate, gr)

	conf := confidence.Score(comp.Candidate, gr, schemaIssues, p.cfg)
	res.halluc = hallucination.Detect(comp.Candidate, conf.Score, p.cfg)
	res.testability = testability.Check(comp.Candidate)

	res.evaluation = schema.CandidateEvaluation{
		CandidateID:    c.ID,
		RuleType:       c.RuleType,
		GroundingScore: gr.Score,
		GroundingClass: gr.Class,
		Confidence:     conf.Score,
		Features:       conf.Features,
		Rationale:      conf.Rationale,
		Notes:          conf.Notes,
	}
	return res
}

func (p *Pipeline) assemble(
	b *batch.Batch,
	cov coverage.Result,
	dd dedup.Result,
	results []candidateResult,
	excluded []string,
	malformedIssues []schema.TestabilityIssue,
) *schema.Report {
	report := &schema.Report{
		Tool:    "evalgate",
		Version: Version,

		TotalChunks:               cov.TotalChunks,
		ChunksProcessed:           cov.ChunksProcessed,
		ChunksWithZeroExtractions: cov.ZeroExtractionChunks,
		CoverageRatio:             cov.Ratio,

		TotalCandidates:    len(results),
		ExcludedCandidates: excluded,
		CandidatesByType:   map[string]int{},

		Evaluations:        []schema.CandidateEvaluation{},
		TestabilityIssues:  append([]schema.TestabilityIssue{}, malformedIssues...),
		GroundingIssues:    []schema.GroundingIssue{},
		HallucinationFlags: []schema.HallucinationFlag{},
		SchemaIssues:       []schema.SchemaIssue{},

		Duplicates:  dd.Pairs,
		UniqueCount: dd.UniqueCount,
		DedupRatio:  dd.Ratio,
	}

	distribution := map[string]int{}
	confidenceSum := 0.0
	groundedCount := 0
	schemaClean := 0
	testableCount := 0

	for _, r := range results {
		report.Evaluations = append(report.Evaluations, r.evaluation)
		report.CandidatesByType[string(r.evaluation.RuleType)]++
		confidenceSum += r.evaluation.Confidence
		distribution[confidenceTier(r.evaluation.Confidence)]++

		if r.evaluation.GroundingClass != schema.GroundingInference {
			groundedCount++
		}
		if r.schemaIssue == nil {
			schemaClean++
		} else {
			report.SchemaIssues = append(report.SchemaIssues, *r.schemaIssue)
		}
		if r.testability == nil {
			testableCount++
		} else {
			report.TestabilityIssues = append(report.TestabilityIssues, *r.testability)
		}
		if r.grounding != nil {
			report.GroundingIssues = append(report.GroundingIssues, *r.grounding)
		}
		if r.halluc != nil {
			report.HallucinationFlags = append(report.HallucinationFlags, *r.halluc)
		}
		report.Repairs = append(report.Repairs, r.repairs...)
	}

	if len(results) > 0 {
		report.AvgConfidence = round3(confidenceSum / float64(len(results)))
	}
	report.ConfidenceDistribution = distribution

	iteration := b.ExtractionIteration
	if iteration == 0 {
		for _, r := range results {
			if r.repaired.ExtractionIteration > iteration {
				iteration = r.repaired.ExtractionIteration
			}
		}
	}
	if iteration < 1 {
		iteration = 1
	}
	report.ExtractionIteration = iteration

	v := verdict.Classify(verdict.Inputs{
		TotalChunks:         cov.TotalChunks,
		CoverageRatio:       cov.Ratio,
		TestabilityCount:    len(report.TestabilityIssues),
		GroundingCount:      len(report.GroundingIssues),
		DedupRatio:          dd.Ratio,
		HallucinationCount:  len(report.HallucinationFlags),
		ExtractionIteration: iteration,
	}, p.cfg)
	report.FailureType = v.FailureType
	report.FailureSeverity = v.Severity
	report.IsRetryable = v.IsRetryable

	q := quality.Aggregate(quality.Inputs{
		CoverageRatio:      cov.Ratio,
		TotalCandidates:    len(results),
		GroundedCount:      groundedCount,
		SchemaCleanCount:   schemaClean,
		TestableCount:      testableCount,
		DedupRatio:         dd.Ratio,
		SchemaIssues:       report.SchemaIssues,
		GroundingIssues:    len(report.GroundingIssues),
		TestabilityIssues:  len(report.TestabilityIssues),
		HallucinationFlags: len(report.HallucinationFlags),
		DuplicatePairs:     len(report.Duplicates),
	}, p.cfg)
	report.OverallQualityScore = q.OverallScore
	report.Suggestions = q.Suggestions

	return report
}

// confidenceTier buckets a clamped confidence for the report distribution.
func confidenceTier(v float64) string {
	switch {
	case v >= 0.90:
		return "0.90-0.99"
	case v >= 0.80:
		return "0.80-0.89"
	case v >= 0.70:
		return "0.70-0.79"
	case v >= 0.60:
		return "0.60-0.69"
	default:
		return "0.50-0.59"
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
