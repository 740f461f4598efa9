// Package schema defines all canonical data types for the evalgate report format.
package schema

// RuleType identifies which canonical attribute schema applies to a candidate.
type RuleType string

const (
	RuleDataQualityThreshold         RuleType = "data_quality_threshold"
	RuleOwnershipCategory            RuleType = "ownership_category"
	RuleBeneficialOwnershipThreshold RuleType = "beneficial_ownership_threshold"
	RuleDocumentationRequirement     RuleType = "documentation_requirement"
	RuleUpdateRequirement            RuleType = "update_requirement"
	RuleUpdateTimeline               RuleType = "update_timeline"
)

// RuleTypes returns the fixed enumeration in canonical order.
func RuleTypes() []RuleType {
	return []RuleType{
		RuleDataQualityThreshold,
		RuleOwnershipCategory,
		RuleBeneficialOwnershipThreshold,
		RuleDocumentationRequirement,
		RuleUpdateRequirement,
		RuleUpdateTimeline,
	}
}

// Known reports whether rt is one of the fixed rule types.
func (rt RuleType) Known() bool {
	switch rt {
	case RuleDataQualityThreshold, RuleOwnershipCategory,
		RuleBeneficialOwnershipThreshold, RuleDocumentationRequirement,
		RuleUpdateRequirement, RuleUpdateTimeline:
		return true
	}
	return false
}

// Severity represents the severity level of an issue or of the batch verdict.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// FailureType summarizes the dominant failure mode of a batch.
type FailureType string

const (
	FailureNone        FailureType = "none"
	FailureCoverage    FailureType = "coverage"
	FailureTestability FailureType = "testability"
	FailureGrounding   FailureType = "grounding"
	FailureDedup       FailureType = "dedup"
	FailureMulti       FailureType = "multi"
)

// GroundingClass classifies how directly a candidate's description is
// supported by its cited source excerpt.
type GroundingClass string

const (
	GroundingExact      GroundingClass = "EXACT"
	GroundingParaphrase GroundingClass = "PARAPHRASE"
	GroundingInference  GroundingClass = "INFERENCE"
)

// SourceChunk is an immutable unit of source text produced by the external
// parser. Read-only here.
type SourceChunk struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	RecordType string `json:"record_type,omitempty"`
}

// Candidate is one machine-extracted obligation pending evaluation. It is
// created by the external extractor and never mutated by this engine, except
// that schema repair may fill missing attribute values.
type Candidate struct {
	ID                  string         `json:"id"`
	RuleType            RuleType       `json:"rule_type"`
	Description         string         `json:"description"`
	GroundedIn          string         `json:"grounded_in"`
	SourceChunkID       string         `json:"source_chunk_id"`
	Confidence          float64        `json:"confidence"`
	Attributes          map[string]any `json:"attributes,omitempty"`
	ExtractionIteration int            `json:"extraction_iteration"`
}

// TestabilityIssue records why a candidate lacks a clear pass/fail condition.
type TestabilityIssue struct {
	CandidateID string   `json:"candidate_id"`
	Problems    []string `json:"problems"`
	Severity    Severity `json:"severity"`
}

// GroundingIssue records weak or contradicted source support.
type GroundingIssue struct {
	CandidateID   string         `json:"candidate_id"`
	Class         GroundingClass `json:"class"`
	Score         float64        `json:"score"`
	Problems      []string       `json:"problems"`
	Severity      Severity       `json:"severity"`
	Contradiction bool           `json:"contradiction,omitempty"`
}

// HallucinationFlag marks a candidate whose confidence/iteration combination
// indicates unsupported inference.
type HallucinationFlag struct {
	CandidateID string   `json:"candidate_id"`
	Risk        Severity `json:"risk"`
	Reason      string   `json:"reason"`
	Confidence  float64  `json:"confidence"`
	Iteration   int      `json:"iteration"`
}

// SchemaIssue records canonical-schema violations for one candidate.
type SchemaIssue struct {
	CandidateID   string   `json:"candidate_id"`
	RuleType      RuleType `json:"rule_type"`
	MissingFields []string `json:"missing_fields,omitempty"`
	InvalidFields []string `json:"invalid_fields,omitempty"`
	Severity      Severity `json:"severity"`
}

// Repair is the audit record for one auto-repaired attribute value. Repairs
// fill gaps or coerce representable types; they never remove information or
// overwrite an existing valid value.
type Repair struct {
	CandidateID string `json:"candidate_id"`
	Field       string `json:"field"`
	Value       any    `json:"value"`
	Basis       string `json:"basis"`
}

// DuplicatePair records two near-duplicate candidates of the same rule type,
// in batch order.
type DuplicatePair struct {
	IDA        string   `json:"id_a"`
	IDB        string   `json:"id_b"`
	Similarity float64  `json:"similarity"`
	RuleType   RuleType `json:"rule_type"`
}

// ConfidenceFeatures is the explainable breakdown of a confidence score.
// RawTotal is the unclamped sum; the authoritative score clamps it to
// [0.50, 0.99].
type ConfidenceFeatures struct {
	GroundingMatch   float64 `json:"grounding_match"`
	Completeness     float64 `json:"completeness"`
	Quantification   float64 `json:"quantification"`
	SchemaCompliance float64 `json:"schema_compliance"`
	Coherence        float64 `json:"coherence"`
	DomainSignals    float64 `json:"domain_signals"`
	RawTotal         float64 `json:"raw_total"`
}

// CandidateEvaluation is the per-candidate record attached to the report:
// the grounding outcome, the authoritative confidence with its feature
// breakdown and rationale, and any remediation notes.
type CandidateEvaluation struct {
	CandidateID    string             `json:"candidate_id"`
	RuleType       RuleType           `json:"rule_type"`
	GroundingScore float64            `json:"grounding_score"`
	GroundingClass GroundingClass     `json:"grounding_class"`
	Confidence     float64            `json:"confidence"`
	Features       ConfidenceFeatures `json:"features"`
	Rationale      string             `json:"rationale"`
	Notes          []string           `json:"notes,omitempty"`
}

// Report is the single output artifact for a batch. It is constructed once by
// the pipeline and immutable after construction. Fields are additive only and
// never change type across versions; re-running on identical inputs and
// configuration produces byte-identical output.
type Report struct {
	Tool    string `json:"tool"`
	Version string `json:"version"`

	// Coverage.
	TotalChunks               int      `json:"total_chunks"`
	ChunksProcessed           int      `json:"chunks_processed"`
	ChunksWithZeroExtractions []string `json:"chunks_with_zero_extractions"`
	CoverageRatio             float64  `json:"coverage_ratio"`

	// Candidate metrics.
	TotalCandidates        int            `json:"total_candidates"`
	ExcludedCandidates     []string       `json:"excluded_candidates,omitempty"`
	CandidatesByType       map[string]int `json:"candidates_by_type"`
	AvgConfidence          float64        `json:"avg_confidence"`
	ConfidenceDistribution map[string]int `json:"confidence_distribution"`

	// Per-candidate records and issue lists.
	Evaluations        []CandidateEvaluation `json:"evaluations"`
	TestabilityIssues  []TestabilityIssue    `json:"testability_issues"`
	GroundingIssues    []GroundingIssue      `json:"grounding_issues"`
	HallucinationFlags []HallucinationFlag   `json:"hallucination_flags"`
	SchemaIssues       []SchemaIssue         `json:"schema_issues"`
	Repairs            []Repair              `json:"repairs,omitempty"`

	// Deduplication.
	Duplicates  []DuplicatePair `json:"duplicates"`
	UniqueCount int             `json:"unique_count"`
	DedupRatio  float64         `json:"dedup_ratio"`

	// Routing signal.
	FailureType     FailureType `json:"failure_type"`
	FailureSeverity Severity    `json:"failure_severity"`
	IsRetryable     bool        `json:"is_retryable"`

	// Aggregates.
	OverallQualityScore float64  `json:"overall_quality_score"`
	Suggestions         []string `json:"suggestions"`
	ExtractionIteration int      `json:"extraction_iteration"`
}
