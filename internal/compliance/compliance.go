// Package compliance validates candidate attributes against the canonical
// per-rule-type schemas and performs bounded, auditable repair: missing
// fields are derived from the candidate's own text, and numeric strings in
// number-typed fields are coerced to their parsed value. Repairs fill gaps
// or coerce representable types; they never overwrite an existing valid
// value and never discard data.
package compliance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evalgate/evalgate/internal/catalog"
	"github.com/evalgate/evalgate/internal/schema"
	"github.com/evalgate/evalgate/internal/textmatch"
)

// fieldAliases map each canonical field to legacy names older extractor
// prompts emitted. A required value parked under a legacy name fills the
// canonical field; the legacy key stays in place.
var fieldAliases = map[string][]string{
	"metric_type":    {"metric", "threshold_type"},
	"timeline_value": {"threshold_value", "value"},
	"timeline_unit":  {"threshold_unit", "unit"},
	"trigger_event":  {"trigger", "applies_when"},
	"scope":          {"applies_to"},
}

// unitFieldFor names the unit field a percentage literal implies when a
// numeric value is coerced from a string such as "99.5%".
var unitFieldFor = map[string]string{
	"threshold_value": "threshold_unit",
	"timeline_value":  "timeline_unit",
}

// Result is the schema-compliance outcome for one candidate.
type Result struct {
	// Candidate is the post-repair copy. The input candidate is never
	// mutated.
	Candidate schema.Candidate
	// Issue is nil when the repaired candidate satisfies its canonical
	// schema (or its rule type has no schema to check).
	Issue *schema.SchemaIssue
	// Repairs lists each derived value with its derivation basis.
	Repairs []schema.Repair
	// RepairAttempted is true when at least one field was filled.
	RepairAttempted bool
}

// Validate checks c against the canonical schema for its rule type. Unknown
// rule types are not checked; callers surface those through the testability
// path instead.
func Validate(c schema.Candidate) Result {
	cs, ok := catalog.Lookup(c.RuleType)
	if !ok {
		return Result{Candidate: c}
	}

	repaired := c
	repaired.Attributes = cloneAttributes(c.Attributes)
	var repairs []schema.Repair

	// Legacy field names: a required value parked under an old name fills
	// the canonical field.
	for _, field := range cs.Required {
		if _, present := repaired.Attributes[field]; present {
			continue
		}
		for _, legacy := range fieldAliases[field] {
			if v, ok := repaired.Attributes[legacy]; ok && v != nil {
				repaired.Attributes[field] = v
				repairs = append(repairs, schema.Repair{
					CandidateID: c.ID,
					Field:       field,
					Value:       v,
					Basis:       fmt.Sprintf("value found under legacy field name %q", legacy),
				})
				break
			}
		}
	}

	// Coerce numeric strings in number-typed fields before the missing and
	// invalid scans, so "99.5%" becomes 99.5 (and its unit field "percent")
	// instead of a type violation.
	for _, field := range sortedFields(repaired.Attributes) {
		if !cs.HasField(field) || cs.FieldTypeOf(field) != catalog.TypeNumber {
			continue
		}
		s, isStr := repaired.Attributes[field].(string)
		if !isStr {
			continue
		}
		value, unit, ok := textmatch.FirstNumber(s)
		if !ok {
			continue
		}
		repaired.Attributes[field] = value
		repairs = append(repairs, schema.Repair{
			CandidateID: c.ID,
			Field:       field,
			Value:       value,
			Basis:       fmt.Sprintf("coerced numeric string %q", s),
		})
		if uf := unitFieldFor[field]; unit == "percent" && uf != "" && cs.HasField(uf) {
			if _, present := repaired.Attributes[uf]; !present {
				repaired.Attributes[uf] = "percent"
				repairs = append(repairs, schema.Repair{
					CandidateID: c.ID,
					Field:       uf,
					Value:       "percent",
					Basis:       fmt.Sprintf("percentage literal in coerced %s", field),
				})
			}
		}
	}

	var missing []string
	for _, field := range cs.Required {
		if _, present := repaired.Attributes[field]; !present {
			missing = append(missing, field)
		}
	}

	var stillMissing []string
	text := c.Description + " " + c.GroundedIn
	for _, field := range missing {
		value, basis, ok := derive(field, text, cs)
		if !ok {
			stillMissing = append(stillMissing, field)
			continue
		}
		repaired.Attributes[field] = value
		repairs = append(repairs, schema.Repair{
			CandidateID: c.ID,
			Field:       field,
			Value:       value,
			Basis:       basis,
		})
	}

	var invalid []string
	for _, field := range sortedFields(repaired.Attributes) {
		if !cs.HasField(field) {
			continue
		}
		v := repaired.Attributes[field]
		ft := cs.FieldTypeOf(field)
		if !catalog.CheckValue(ft, v) {
			if _, isStr := v.(string); ft == catalog.TypeNumber && isStr {
				// Coercion above already consumed every parseable string;
				// what remains stays in place, repair never discards data.
				invalid = append(invalid, fmt.Sprintf("%s (unparseable as number, original value preserved)", field))
			} else {
				invalid = append(invalid, fmt.Sprintf("%s (wrong type, expected %s)", field, ft))
			}
			continue
		}
		if !cs.AllowedEnum(field, v) {
			invalid = append(invalid, fmt.Sprintf("%s (value outside allowed set)", field))
		}
	}

	res := Result{
		Candidate:       repaired,
		Repairs:         repairs,
		RepairAttempted: len(repairs) > 0,
	}
	if len(stillMissing) > 0 || len(invalid) > 0 {
		sev := schema.SeverityMedium
		if len(stillMissing) > 1 {
			sev = schema.SeverityHigh
		}
		res.Issue = &schema.SchemaIssue{
			CandidateID:   c.ID,
			RuleType:      c.RuleType,
			MissingFields: stillMissing,
			InvalidFields: invalid,
			Severity:      sev,
		}
	}
	return res
}

// derive attempts to produce a value for a missing field from the
// candidate's description and cited excerpt. Every derived value must be
// valid under the field's type and enumeration, so a repair can never
// introduce a new violation.
func derive(field, text string, cs catalog.Schema) (any, string, bool) {
	lower := textmatch.Fold(text)
	switch field {
	case "threshold_value", "timeline_value":
		v, _, ok := textmatch.FirstNumber(text)
		if !ok {
			return nil, "", false
		}
		return v, "numeric literal in candidate text", true

	case "threshold_unit", "timeline_unit":
		if _, unit, ok := textmatch.FirstNumber(text); ok && unit == "percent" {
			return "percent", "percentage literal in candidate text", true
		}
		for _, unit := range []string{"hours", "days", "weeks", "months", "years"} {
			if strings.Contains(lower, strings.TrimSuffix(unit, "s")) {
				return unit, "time unit keyword in candidate text", true
			}
		}
		if strings.Contains(lower, "dollar") || strings.Contains(lower, "$") {
			return "dollars", "currency keyword in candidate text", true
		}
		return nil, "", false

	case "metric_type":
		for _, m := range []string{"accuracy", "completeness", "timeliness", "consistency", "uniqueness", "availability"} {
			if strings.Contains(lower, m) {
				return m, "metric keyword in candidate text", true
			}
		}
		return nil, "", false

	case "applies_to":
		for _, kw := range []struct{ key, value string }{
			{"account", "accounts"},
			{"record", "records"},
			{"document", "documents"},
			{"transaction", "transactions"},
			{"customer", "customers"},
		} {
			if strings.Contains(lower, kw.key) {
				return kw.value, "subject keyword in candidate text", true
			}
		}
		return nil, "", false

	case "threshold_direction":
		switch {
		case containsAny(lower, "at least", "minimum", "greater", "exceed", "or more"):
			return "minimum", "lower-bound keyword in candidate text", true
		case containsAny(lower, "at most", "maximum", "less than", "under", "no more than", "within"):
			return "maximum", "upper-bound keyword in candidate text", true
		}
		return nil, "", false

	case "ownership_type":
		for _, kw := range []struct{ key, value string }{
			{"individual", "individual"},
			{"single", "individual"},
			{"joint", "joint"},
			{"trust", "trust"},
			{"corporate", "corporate"},
			{"business", "corporate"},
		} {
			if strings.Contains(lower, kw.key) {
				return kw.value, "ownership keyword in candidate text", true
			}
		}
		return nil, "", false

	case "update_frequency", "measurement_frequency":
		for _, f := range []string{"continuous", "daily", "weekly", "monthly", "quarterly", "annual"} {
			if strings.Contains(lower, f) {
				return f, "frequency keyword in candidate text", true
			}
		}
		return nil, "", false

	case "trigger_event":
		switch {
		case strings.Contains(lower, "change"):
			return "on_change", "change keyword in candidate text", true
		case containsAny(lower, "new", "open", "establish"):
			return "on_creation", "creation keyword in candidate text", true
		case strings.Contains(lower, "clos"):
			return "on_closure", "closure keyword in candidate text", true
		}
		return nil, "", false
	}
	return nil, "", false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func sortedFields(attrs map[string]any) []string {
	fields := make([]string, 0, len(attrs))
	for f := range attrs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func cloneAttributes(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
