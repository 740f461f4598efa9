package hallucination

import (
	"testing"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/schema"
)

func TestDetectTiers(t *testing.T) {
	cfg := config.Default()
	cases := []struct {
		name       string
		iteration  int
		confidence float64
		wantRisk   schema.Severity
		wantFlag   bool
	}{
		{"iter1 below safe", 1, 0.65, schema.SeverityHigh, true},
		{"iter1 moderate", 1, 0.70, schema.SeverityMedium, true},
		{"iter1 moderate upper bound", 1, 0.79, schema.SeverityMedium, true},
		{"iter1 clean", 1, 0.80, "", false},
		{"iter1 well above", 1, 0.95, "", false},
		{"retry critical", 2, 0.74, schema.SeverityCritical, true},
		{"retry high", 2, 0.75, schema.SeverityHigh, true},
		{"retry high upper bound", 2, 0.84, schema.SeverityHigh, true},
		{"retry clean", 2, 0.85, "", false},
		{"third pass uses retry tiers", 3, 0.70, schema.SeverityCritical, true},
		{"zero iteration treated as first", 0, 0.65, schema.SeverityHigh, true},
	}
	for _, c := range cases {
		flag := Detect(schema.Candidate{ID: "REQ-001", ExtractionIteration: c.iteration}, c.confidence, cfg)
		if c.wantFlag != (flag != nil) {
			t.Errorf("%s: flag = %v, want flagged=%v", c.name, flag, c.wantFlag)
			continue
		}
		if flag != nil && flag.Risk != c.wantRisk {
			t.Errorf("%s: risk = %q, want %q", c.name, flag.Risk, c.wantRisk)
		}
	}
}

func TestDetectReasonCarriesContext(t *testing.T) {
	cfg := config.Default()
	flag := Detect(schema.Candidate{ID: "REQ-002", ExtractionIteration: 2}, 0.60, cfg)
	if flag == nil {
		t.Fatal("no flag")
	}
	if flag.Reason == "" || flag.Iteration != 2 || flag.Confidence != 0.60 {
		t.Errorf("flag = %+v", flag)
	}
}
