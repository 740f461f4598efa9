// Package config centralizes every weight, threshold, and marker list used by
// the evaluation checks. No check carries its own constants; all tuning
// happens here so the heuristics can be tested independently of the logic.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// CoverageConfig bounds the chunk-coverage check.
type CoverageConfig struct {
	// MinRatio is the coverage ratio below which the batch fails.
	MinRatio float64 `yaml:"min_ratio" validate:"gte=0,lte=1"`
	// WarningRatio is the band below which a review suggestion is emitted
	// without failing the batch.
	WarningRatio float64 `yaml:"warning_ratio" validate:"gte=0,lte=1"`
}

// GroundingWeights are the four signal weights of the grounding validator.
// They sum to at most 1.0.
type GroundingWeights struct {
	Lexical     float64 `yaml:"lexical" validate:"gte=0,lte=1"`
	Phrase      float64 `yaml:"phrase" validate:"gte=0,lte=1"`
	Consistency float64 `yaml:"consistency" validate:"gte=0,lte=1"`
	SourceMatch float64 `yaml:"source_match" validate:"gte=0,lte=1"`
}

// GroundingConfig bounds the grounding validator.
type GroundingConfig struct {
	MaxIssues int              `yaml:"max_issues" validate:"gte=0"`
	Weights   GroundingWeights `yaml:"weights"`
	// ExactThreshold and InferenceThreshold delimit the EXACT / PARAPHRASE /
	// INFERENCE bands: score > ExactThreshold is EXACT, score below
	// InferenceThreshold is INFERENCE.
	ExactThreshold     float64 `yaml:"exact_threshold" validate:"gte=0,lte=1"`
	InferenceThreshold float64 `yaml:"inference_threshold" validate:"gte=0,lte=1"`
	// MinPhraseWords is the minimum run length for phrase-overlap credit.
	MinPhraseWords int `yaml:"min_phrase_words" validate:"gte=2"`
}

// ConfidenceWeights are the six feature weights of the confidence scorer.
// They sum to at most 1.0.
type ConfidenceWeights struct {
	Grounding      float64 `yaml:"grounding" validate:"gte=0,lte=1"`
	Completeness   float64 `yaml:"completeness" validate:"gte=0,lte=1"`
	Quantification float64 `yaml:"quantification" validate:"gte=0,lte=1"`
	Schema         float64 `yaml:"schema" validate:"gte=0,lte=1"`
	Coherence      float64 `yaml:"coherence" validate:"gte=0,lte=1"`
	Domain         float64 `yaml:"domain" validate:"gte=0,lte=1"`
}

// ConfidenceConfig bounds the confidence scorer.
type ConfidenceConfig struct {
	Weights ConfidenceWeights `yaml:"weights"`
	// Floor and Ceiling clamp the final score. The floor keeps even poorly
	// grounded candidates scoreable downstream; the ceiling reserves 1.0 for
	// human-verified records.
	Floor   float64 `yaml:"floor" validate:"gte=0,lte=1"`
	Ceiling float64 `yaml:"ceiling" validate:"gte=0,lte=1,gtefield=Floor"`
	// DeclaredDriftNote is the tolerance beyond which a clamp that moves the
	// extractor's declared confidence is recorded as a remediation note.
	DeclaredDriftNote float64 `yaml:"declared_drift_note" validate:"gte=0,lte=1"`
}

// RiskTiers are per-iteration confidence minimums for hallucination risk.
// A zero value disables that tier.
type RiskTiers struct {
	Critical float64 `yaml:"critical" validate:"gte=0,lte=1"`
	High     float64 `yaml:"high" validate:"gte=0,lte=1"`
	Medium   float64 `yaml:"medium" validate:"gte=0,lte=1"`
}

// HallucinationConfig bounds the hallucination detector.
type HallucinationConfig struct {
	MaxFlags int `yaml:"max_flags" validate:"gte=0"`
	// FirstPass applies at extraction iteration 1, Retry at iteration >= 2.
	FirstPass RiskTiers `yaml:"first_pass"`
	Retry     RiskTiers `yaml:"retry"`
}

// TestabilityConfig bounds the testability check.
type TestabilityConfig struct {
	MaxIssues int `yaml:"max_issues" validate:"gte=0"`
}

// DedupConfig bounds duplicate detection.
type DedupConfig struct {
	MinRatio float64 `yaml:"min_ratio" validate:"gte=0,lte=1"`
	// SimilarityThreshold is the Jaccard similarity at or above which a pair
	// of same-type candidates is reported as a near duplicate.
	SimilarityThreshold float64 `yaml:"similarity_threshold" validate:"gte=0,lte=1"`
}

// QualityWeights combine the check fractions into the overall quality score.
type QualityWeights struct {
	Coverage    float64 `yaml:"coverage" validate:"gte=0,lte=1"`
	Grounding   float64 `yaml:"grounding" validate:"gte=0,lte=1"`
	Schema      float64 `yaml:"schema" validate:"gte=0,lte=1"`
	Testability float64 `yaml:"testability" validate:"gte=0,lte=1"`
}

// TextConfig holds the marker and term lists consumed by the lexical checks.
type TextConfig struct {
	// NegationMarkers drive polarity-contradiction detection: a marker
	// present on one side of a description/excerpt pair but not the other is
	// a contradiction.
	NegationMarkers []string `yaml:"negation_markers" validate:"min=1"`
	// DomainTerms are recognized regulatory-term tokens that credit the
	// domain-signals confidence feature.
	DomainTerms []string `yaml:"domain_terms" validate:"min=1"`
}

// Config is the complete, immutable evaluation configuration for a batch.
type Config struct {
	Coverage      CoverageConfig      `yaml:"coverage"`
	Testability   TestabilityConfig   `yaml:"testability"`
	Grounding     GroundingConfig     `yaml:"grounding"`
	Confidence    ConfidenceConfig    `yaml:"confidence"`
	Hallucination HallucinationConfig `yaml:"hallucination"`
	Dedup         DedupConfig         `yaml:"deduplication"`
	Quality       QualityWeights      `yaml:"quality"`
	Text          TextConfig          `yaml:"text"`
}

// Default returns the documented default configuration.
func Default() *Config {
	return &Config{
		Coverage: CoverageConfig{MinRatio: 0.60, WarningRatio: 0.80},
		Testability: TestabilityConfig{MaxIssues: 5},
		Grounding: GroundingConfig{
			MaxIssues: 3,
			Weights: GroundingWeights{
				Lexical:     0.40,
				Phrase:      0.30,
				Consistency: 0.20,
				SourceMatch: 0.10,
			},
			ExactThreshold:     0.85,
			InferenceThreshold: 0.60,
			MinPhraseWords:     3,
		},
		Confidence: ConfidenceConfig{
			Weights: ConfidenceWeights{
				Grounding:      0.30,
				Completeness:   0.20,
				Quantification: 0.20,
				Schema:         0.15,
				Coherence:      0.10,
				Domain:         0.05,
			},
			Floor:             0.50,
			Ceiling:           0.99,
			DeclaredDriftNote: 0.05,
		},
		Hallucination: HallucinationConfig{
			MaxFlags:  5,
			FirstPass: RiskTiers{High: 0.70, Medium: 0.80},
			Retry:     RiskTiers{Critical: 0.75, High: 0.85},
		},
		Dedup: DedupConfig{MinRatio: 0.70, SimilarityThreshold: 0.75},
		Quality: QualityWeights{
			Coverage:    0.30,
			Grounding:   0.30,
			Schema:      0.20,
			Testability: 0.20,
		},
		Text: TextConfig{
			NegationMarkers: []string{
				"must not", "shall not", "may not", "cannot", "prohibited",
				"not permitted", "never", "no longer",
			},
			DomainTerms: []string{
				"fdic", "part 370", "deposit insurance", "insured deposit",
				"beneficial owner", "ownership category", "account holder",
				"recordkeeping", "compliance", "regulatory", "examination",
				"cip", "kyc", "bsa", "aml", "tin", "ssn", "ein",
			},
		},
	}
}

// presets is the registry of built-in configurations keyed by name.
var presets = map[string]func() *Config{
	"default": Default,
	"strict": func() *Config {
		c := Default()
		c.Coverage.MinRatio = 0.75
		c.Coverage.WarningRatio = 0.90
		c.Testability.MaxIssues = 2
		c.Grounding.MaxIssues = 1
		c.Dedup.MinRatio = 0.85
		c.Hallucination.MaxFlags = 2
		return c
	},
	"lenient": func() *Config {
		c := Default()
		c.Coverage.MinRatio = 0.40
		c.Coverage.WarningRatio = 0.60
		c.Testability.MaxIssues = 10
		c.Grounding.MaxIssues = 8
		c.Dedup.MinRatio = 0.50
		c.Hallucination.MaxFlags = 10
		return c
	},
}

// Preset returns the named built-in configuration or an error if the name is
// unknown.
func Preset(name string) (*Config, error) {
	f, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown preset %q", name)
	}
	return f(), nil
}

// PresetNames returns the available preset names in sorted order.
func PresetNames() []string {
	return []string{"default", "lenient", "strict"}
}

// LoadFile reads a YAML configuration file layered over the defaults and
// validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every weight and threshold range.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	w := c.Grounding.Weights
	if sum := w.Lexical + w.Phrase + w.Consistency + w.SourceMatch; sum > 1.0+1e-9 {
		return fmt.Errorf("grounding weights sum to %.3f, must not exceed 1.0", sum)
	}
	cw := c.Confidence.Weights
	sum := cw.Grounding + cw.Completeness + cw.Quantification + cw.Schema + cw.Coherence + cw.Domain
	if sum > 1.0+1e-9 {
		return fmt.Errorf("confidence weights sum to %.3f, must not exceed 1.0", sum)
	}
	if c.Coverage.WarningRatio < c.Coverage.MinRatio {
		return fmt.Errorf("coverage warning_ratio %.2f below min_ratio %.2f", c.Coverage.WarningRatio, c.Coverage.MinRatio)
	}
	return nil
}
