// Package confidence produces the authoritative confidence score for a
// candidate from six independently computed, capped sub-scores. Identical
// (description, grounded_in, attributes, rule_type) inputs always yield the
// identical score and rationale.
package confidence

import (
	"fmt"
	"math"
	"strings"

	"github.com/evalgate/evalgate/internal/catalog"
	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/grounding"
	"github.com/evalgate/evalgate/internal/schema"
	"github.com/evalgate/evalgate/internal/textmatch"
)

// unitHints credit the quantification feature when no unit attribute is set.
var unitHints = []string{"percent", "%", "days", "hours", "weeks", "months", "years", "dollars", "$"}

// exceptionHints credit the exception/tolerance part of quantification.
var exceptionHints = []string{"except", "exception", "tolerance", "unless", "waiver"}

// Result is the scoring outcome for one candidate.
type Result struct {
	// Score is the clamped, authoritative confidence in [floor, ceiling].
	Score    float64
	Features schema.ConfidenceFeatures
	// Rationale is a human-readable explanation of the breakdown.
	Rationale string
	// Notes carries remediation notes, e.g. when the authoritative score
	// departs from the extractor's declared confidence beyond tolerance.
	Notes []string
}

// Score computes the confidence for c given its grounding result and the
// number of schema issues recorded against it.
func Score(c schema.Candidate, g grounding.Result, schemaIssues int, cfg *config.Config) Result {
	w := cfg.Confidence.Weights
	f := schema.ConfidenceFeatures{}

	// Grounding match: full weight above the EXACT band, two thirds in the
	// PARAPHRASE band, one third below.
	switch g.Class {
	case schema.GroundingExact:
		f.GroundingMatch = round3(w.Grounding)
	case schema.GroundingParaphrase:
		f.GroundingMatch = round3(w.Grounding * 2 / 3)
	default:
		f.GroundingMatch = round3(w.Grounding / 3)
	}

	f.Completeness = round3(w.Completeness * completenessRatio(c))
	f.Quantification = round3(quantification(c, w.Quantification))
	if schemaIssues == 0 {
		f.SchemaCompliance = w.Schema
	}
	if !g.Contradiction {
		f.Coherence = w.Coherence
	}
	text := c.Description + " " + c.GroundedIn
	if textmatch.ContainsAnyTerm(text, cfg.Text.DomainTerms) {
		f.DomainSignals = w.Domain
	}

	f.RawTotal = round3(f.GroundingMatch + f.Completeness + f.Quantification +
		f.SchemaCompliance + f.Coherence + f.DomainSignals)

	score := math.Min(cfg.Confidence.Ceiling, math.Max(cfg.Confidence.Floor, f.RawTotal))
	score = round3(score)

	r := Result{
		Score:     score,
		Features:  f,
		Rationale: rationale(f, g, cfg),
	}
	if c.Confidence != 0 && math.Abs(score-c.Confidence) > cfg.Confidence.DeclaredDriftNote {
		r.Notes = append(r.Notes, fmt.Sprintf(
			"declared confidence %.2f adjusted to %.2f by scoring clamp", c.Confidence, score))
	}
	return r
}

// completenessRatio is present required fields over total required fields.
// Unknown rule types score zero.
func completenessRatio(c schema.Candidate) float64 {
	cat, ok := catalog.Lookup(c.RuleType)
	if !ok {
		return 0
	}
	if len(cat.Required) == 0 {
		return 1
	}
	present := 0
	for _, field := range cat.Required {
		if v, ok := c.Attributes[field]; ok && v != nil {
			present++
		}
	}
	return float64(present) / float64(len(cat.Required))
}

// quantification credits a numeric threshold (half weight), an explicit unit
// (quarter weight), and an exception or tolerance (quarter weight).
func quantification(c schema.Candidate, weight float64) float64 {
	score := 0.0
	desc := strings.ToLower(c.Description)

	hasThreshold := false
	for _, key := range []string{"threshold_value", "timeline_value"} {
		if v, ok := c.Attributes[key]; ok && catalog.CheckValue(catalog.TypeNumber, v) {
			hasThreshold = true
			break
		}
	}
	if !hasThreshold && textmatch.HasNumber(desc) {
		hasThreshold = true
	}
	if hasThreshold {
		score += weight / 2
	}

	hasUnit := false
	for _, key := range []string{"threshold_unit", "timeline_unit"} {
		if v, ok := c.Attributes[key]; ok && v != nil && v != "" {
			hasUnit = true
			break
		}
	}
	if !hasUnit {
		for _, hint := range unitHints {
			if strings.Contains(desc, hint) {
				hasUnit = true
				break
			}
		}
	}
	if hasUnit {
		score += weight / 4
	}

	hasException := false
	if v, ok := c.Attributes["exception_threshold"]; ok && v != nil {
		hasException = true
	} else {
		for _, hint := range exceptionHints {
			if strings.Contains(desc, hint) {
				hasException = true
				break
			}
		}
	}
	if hasException {
		score += weight / 4
	}

	return score
}

func rationale(f schema.ConfidenceFeatures, g grounding.Result, cfg *config.Config) string {
	var parts []string

	switch g.Class {
	case schema.GroundingExact:
		parts = append(parts, fmt.Sprintf("strong grounding (%.0f%% word overlap, %d phrase matches)",
			g.Jaccard*100, len(g.Phrases)))
	case schema.GroundingParaphrase:
		parts = append(parts, fmt.Sprintf("moderate grounding (%.0f%% word overlap)", g.Jaccard*100))
	default:
		parts = append(parts, fmt.Sprintf("weak grounding (%.0f%% word overlap)", g.Jaccard*100))
	}

	w := cfg.Confidence.Weights
	switch {
	case f.Completeness >= w.Completeness:
		parts = append(parts, "attributes complete")
	case f.Completeness >= w.Completeness/2:
		parts = append(parts, "some attributes missing")
	default:
		parts = append(parts, "many attributes missing")
	}

	switch {
	case f.Quantification >= w.Quantification*3/4:
		parts = append(parts, "well-quantified")
	case f.Quantification > 0:
		parts = append(parts, "partially quantified")
	default:
		parts = append(parts, "no quantification")
	}

	if f.SchemaCompliance > 0 {
		parts = append(parts, "schema-compliant")
	} else {
		parts = append(parts, "schema violations")
	}
	if f.Coherence == 0 {
		parts = append(parts, "potential contradiction")
	}
	if f.DomainSignals > 0 {
		parts = append(parts, "regulatory terms present")
	}

	return strings.Join(parts, "; ") + "."
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
