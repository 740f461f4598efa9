package grounding

import (
	"math"
	"strings"
	"testing"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/schema"
)

const (
	bankDescription = "Deposit account records must maintain 99.5% accuracy standards."
	bankExcerpt     = "National Banking Corporation shall maintain deposit account records meeting 99.5% accuracy standards"
	bankChunkText   = "Section 4. National Banking Corporation shall maintain deposit account records meeting 99.5% accuracy standards at all times."
)

func bankCandidate() schema.Candidate {
	return schema.Candidate{
		ID:            "REQ-001",
		RuleType:      schema.RuleDataQualityThreshold,
		Description:   bankDescription,
		GroundedIn:    bankExcerpt,
		SourceChunkID: "chunk-1",
	}
}

func TestValidateBankScenario(t *testing.T) {
	cfg := config.Default()
	r := Validate(bankCandidate(), bankChunkText, cfg)

	// 7 of 13 union tokens shared.
	if want := 7.0 / 13.0; math.Abs(r.Jaccard-want) > 1e-9 {
		t.Errorf("Jaccard = %v, want %v", r.Jaccard, want)
	}
	if len(r.Phrases) != 2 {
		t.Errorf("Phrases = %v, want two matches", r.Phrases)
	}
	if r.Phrase != 0.30 {
		t.Errorf("Phrase contribution = %v, want 0.30", r.Phrase)
	}
	if r.Contradiction || r.Consistency != 0.20 {
		t.Errorf("Consistency = %v (contradiction=%v), want 0.20", r.Consistency, r.Contradiction)
	}
	if !r.SourceFound || r.SourceMatch != 0.10 {
		t.Errorf("SourceMatch = %v (found=%v), want 0.10", r.SourceMatch, r.SourceFound)
	}
	if r.Class != schema.GroundingParaphrase {
		t.Errorf("Class = %q, want PARAPHRASE", r.Class)
	}
	if Issue(bankCandidate(), r) != nil {
		t.Error("well-grounded paraphrase produced an issue")
	}
}

func TestValidateIdenticalTextIsExact(t *testing.T) {
	cfg := config.Default()
	c := bankCandidate()
	c.Description = c.GroundedIn
	r := Validate(c, bankChunkText, cfg)
	if r.Score <= 0.85 || r.Class != schema.GroundingExact {
		t.Errorf("identical text: score %v class %q, want EXACT", r.Score, r.Class)
	}
}

func TestValidateCaseAndWhitespaceInvariant(t *testing.T) {
	cfg := config.Default()
	a := Validate(bankCandidate(), bankChunkText, cfg)

	c := bankCandidate()
	c.Description = strings.ToUpper(c.Description)
	c.GroundedIn = strings.Join(strings.Fields(c.GroundedIn), "  ")
	b := Validate(c, bankChunkText, cfg)

	if a.Score != b.Score {
		t.Errorf("score changed under case/whitespace: %v vs %v", a.Score, b.Score)
	}
}

func TestValidateWordReorderingLowersScore(t *testing.T) {
	cfg := config.Default()
	base := Validate(bankCandidate(), bankChunkText, cfg)

	c := bankCandidate()
	// Reverse the word order: word set unchanged, phrase runs broken.
	words := strings.Fields(c.Description)
	for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
		words[i], words[j] = words[j], words[i]
	}
	c.Description = strings.Join(words, " ")
	reordered := Validate(c, bankChunkText, cfg)

	if reordered.Phrase != 0 {
		t.Errorf("reordered description kept phrase credit %v", reordered.Phrase)
	}
	if reordered.Score >= base.Score {
		t.Errorf("reordered score %v not below base %v", reordered.Score, base.Score)
	}
}

func TestValidateContradiction(t *testing.T) {
	cfg := config.Default()
	c := schema.Candidate{
		ID:          "REQ-002",
		Description: "Account records must not be shared with third parties.",
		GroundedIn:  "Account records must be shared with the insurance corporation on request.",
	}
	r := Validate(c, "", cfg)
	if !r.Contradiction {
		t.Fatal("polarity mismatch not detected")
	}
	if r.Consistency != 0 {
		t.Errorf("Consistency = %v, want 0 on contradiction", r.Consistency)
	}
	issue := Issue(c, r)
	if issue == nil {
		t.Fatal("contradiction produced no issue")
	}
	if issue.Severity != schema.SeverityHigh || !issue.Contradiction {
		t.Errorf("issue = %+v, want high-severity contradiction", issue)
	}
}

func TestValidateUnrelatedTextIsInference(t *testing.T) {
	cfg := config.Default()
	c := schema.Candidate{
		ID:          "REQ-003",
		Description: "Ownership categories require quarterly review by the board.",
		GroundedIn:  "Deposits held in trust accounts are insured separately.",
	}
	r := Validate(c, "", cfg)
	if r.Class != schema.GroundingInference {
		t.Errorf("Class = %q (score %v), want INFERENCE", r.Class, r.Score)
	}
	issue := Issue(c, r)
	if issue == nil || issue.Class != schema.GroundingInference {
		t.Errorf("INFERENCE candidate not recorded as issue: %+v", issue)
	}
}

func TestIssueMissingCitation(t *testing.T) {
	cfg := config.Default()
	c := schema.Candidate{ID: "REQ-004", Description: "Records must be accurate."}
	r := Validate(c, "", cfg)
	issue := Issue(c, r)
	if issue == nil || issue.Severity != schema.SeverityHigh {
		t.Errorf("missing grounded_in: issue = %+v, want high severity", issue)
	}
}
