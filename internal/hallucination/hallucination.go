// Package hallucination flags candidates whose confidence and extraction
// iteration together indicate unsupported inference. Retry passes are held to
// stricter tiers: a retry that still cannot clear the bar is evidence of
// fabrication, not transient noise.
package hallucination

import (
	"fmt"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/schema"
)

// Detect returns a risk flag for the candidate, or nil when its confidence
// clears the tier for its iteration. confidence is the authoritative score
// from the confidence scorer, not the extractor's declared value.
func Detect(c schema.Candidate, confidence float64, cfg *config.Config) *schema.HallucinationFlag {
	iteration := c.ExtractionIteration
	if iteration < 1 {
		iteration = 1
	}

	tiers := cfg.Hallucination.FirstPass
	pass := "first pass"
	if iteration >= 2 {
		tiers = cfg.Hallucination.Retry
		pass = fmt.Sprintf("retry pass %d", iteration)
	}

	var risk schema.Severity
	var reason string
	switch {
	case tiers.Critical > 0 && confidence < tiers.Critical:
		risk = schema.SeverityCritical
		reason = fmt.Sprintf("%s: confidence %.2f below critical tier %.2f", pass, confidence, tiers.Critical)
	case tiers.High > 0 && confidence < tiers.High:
		risk = schema.SeverityHigh
		reason = fmt.Sprintf("%s: confidence %.2f below safe tier %.2f", pass, confidence, tiers.High)
	case tiers.Medium > 0 && confidence < tiers.Medium:
		risk = schema.SeverityMedium
		reason = fmt.Sprintf("%s: confidence %.2f indicates moderate inference", pass, confidence)
	default:
		return nil
	}

	return &schema.HallucinationFlag{
		CandidateID: c.ID,
		Risk:        risk,
		Reason:      reason,
		Confidence:  confidence,
		Iteration:   iteration,
	}
}
