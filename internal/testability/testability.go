// Package testability checks that each candidate states a clear pass/fail
// condition: the attributes a verifier would need, a non-definitional
// description, and quantification where the language is otherwise vague.
package testability

import (
	"strings"

	"github.com/evalgate/evalgate/internal/schema"
	"github.com/evalgate/evalgate/internal/textmatch"
)

// vagueTerms flag descriptions that hedge without a number to pin them down.
var vagueTerms = []string{"appropriate", "reasonable", "adequate", "sufficient", "as needed"}

// Check returns the testability issue for c, or nil when c is testable.
func Check(c schema.Candidate) *schema.TestabilityIssue {
	var problems []string

	if !c.RuleType.Known() {
		problems = append(problems, "rule_type not mapped")
	}

	problems = append(problems, typeProblems(c)...)

	desc := strings.ToLower(c.Description)
	if strings.HasPrefix(desc, "a ") && strings.Contains(desc, " means ") {
		problems = append(problems, "appears to be a definition, not an obligation")
	}
	if strings.HasPrefix(desc, "the term ") {
		problems = append(problems, "appears to be a definition, not an obligation")
	}

	if !textmatch.HasNumber(desc) {
		for _, term := range vagueTerms {
			if strings.Contains(desc, term) {
				problems = append(problems, "vague language without quantification")
				break
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	severity := schema.SeverityMedium
	if len(problems) > 1 {
		severity = schema.SeverityHigh
	}
	return &schema.TestabilityIssue{
		CandidateID: c.ID,
		Problems:    problems,
		Severity:    severity,
	}
}

// typeProblems enumerates the attributes each rule type needs before a
// verifier can decide pass or fail. The switch is exhaustive over the fixed
// rule-type set; unknown types were already reported above.
func typeProblems(c schema.Candidate) []string {
	var problems []string
	has := func(keys ...string) bool {
		for _, k := range keys {
			if v, ok := c.Attributes[k]; ok && v != nil && v != "" {
				return true
			}
		}
		return false
	}

	switch c.RuleType {
	case schema.RuleDataQualityThreshold:
		if !has("metric_type") {
			problems = append(problems, "missing metric definition")
		}
		if !has("threshold_value") {
			problems = append(problems, "missing threshold_value (cannot test)")
		}
	case schema.RuleDocumentationRequirement:
		if !has("document_type") {
			problems = append(problems, "missing document_type")
		}
		if !has("required_by", "applies_to") {
			problems = append(problems, "missing trigger condition")
		}
	case schema.RuleUpdateTimeline:
		if !has("timeline_value") {
			problems = append(problems, "missing timeline value")
		}
	case schema.RuleUpdateRequirement:
		if !has("update_frequency", "trigger_event") {
			problems = append(problems, "missing update frequency")
		}
	case schema.RuleBeneficialOwnershipThreshold:
		if !has("threshold_value") {
			problems = append(problems, "missing ownership threshold value")
		}
	case schema.RuleOwnershipCategory:
		if !has("ownership_type") {
			problems = append(problems, "missing ownership_type")
		}
	}
	return problems
}
