// Package catalog holds the canonical per-rule-type attribute schemas:
// required and optional fields, allowed enumerations, and value types. The
// catalog is static configuration, loaded once and read-only for the lifetime
// of a batch.
package catalog

import (
	"github.com/evalgate/evalgate/internal/schema"
)

// FieldType is the expected value type of an attribute field.
type FieldType string

const (
	TypeNumber  FieldType = "number"
	TypeString  FieldType = "string"
	TypeBoolean FieldType = "boolean"
	TypeList    FieldType = "list"
	TypeObject  FieldType = "object"
)

// Schema is the canonical attribute schema for one rule type.
type Schema struct {
	RuleType schema.RuleType
	Required []string
	Optional []string
	// Enums maps a field name to its allowed value set.
	Enums map[string][]string
	// Types maps a field name to its expected value type. Fields absent from
	// the map default to TypeString.
	Types map[string]FieldType
}

var (
	metricTypes = []string{
		"accuracy", "completeness", "timeliness", "consistency",
		"uniqueness", "availability",
	}
	thresholdUnits = []string{
		"percent", "count", "hours", "days", "dollars", "months",
		"weeks", "years",
	}
	thresholdDirections = []string{"minimum", "maximum", "exact"}
	frequencies         = []string{
		"continuous", "daily", "weekly", "monthly", "quarterly", "annual",
	}
)

// catalogs is the fixed registry keyed by rule type.
var catalogs = map[schema.RuleType]Schema{
	schema.RuleDataQualityThreshold: {
		RuleType: schema.RuleDataQualityThreshold,
		Required: []string{"metric_type", "threshold_value", "threshold_unit", "applies_to"},
		Optional: []string{"threshold_direction", "measurement_frequency", "exception_threshold"},
		Enums: map[string][]string{
			"metric_type":           metricTypes,
			"threshold_unit":        thresholdUnits,
			"threshold_direction":   thresholdDirections,
			"measurement_frequency": frequencies,
		},
		Types: map[string]FieldType{
			"threshold_value":     TypeNumber,
			"exception_threshold": TypeNumber,
		},
	},
	schema.RuleUpdateTimeline: {
		RuleType: schema.RuleUpdateTimeline,
		Required: []string{"timeline_value", "timeline_unit", "trigger_event", "applies_to"},
		Optional: []string{"priority_levels"},
		Enums: map[string][]string{
			"timeline_unit": thresholdUnits,
		},
		Types: map[string]FieldType{
			"timeline_value":  TypeNumber,
			"priority_levels": TypeList,
		},
	},
	schema.RuleDocumentationRequirement: {
		RuleType: schema.RuleDocumentationRequirement,
		Required: []string{"document_type", "applies_to"},
		Optional: []string{"required_by", "validation_method", "approval_chain"},
		Enums:    map[string][]string{},
		Types: map[string]FieldType{
			"approval_chain": TypeList,
		},
	},
	schema.RuleUpdateRequirement: {
		RuleType: schema.RuleUpdateRequirement,
		Required: []string{"update_frequency", "responsible_party", "applies_to"},
		Optional: []string{"data_elements", "trigger_event"},
		Enums: map[string][]string{
			"update_frequency": frequencies,
		},
		Types: map[string]FieldType{
			"data_elements": TypeList,
		},
	},
	schema.RuleBeneficialOwnershipThreshold: {
		RuleType: schema.RuleBeneficialOwnershipThreshold,
		Required: []string{"threshold_value", "threshold_unit", "applies_to"},
		Optional: []string{"identification_required", "threshold_direction"},
		Enums: map[string][]string{
			"threshold_unit":      thresholdUnits,
			"threshold_direction": thresholdDirections,
		},
		Types: map[string]FieldType{
			"threshold_value":         TypeNumber,
			"identification_required": TypeBoolean,
		},
	},
	schema.RuleOwnershipCategory: {
		RuleType: schema.RuleOwnershipCategory,
		Required: []string{"ownership_type", "scope"},
		Optional: []string{"responsibility", "required_data_elements", "insurance_coverage"},
		Enums:    map[string][]string{},
		Types: map[string]FieldType{
			"required_data_elements": TypeList,
		},
	},
}

// Lookup returns the canonical schema for rt. ok is false for unknown rule
// types; callers must not attempt validation in that case.
func Lookup(rt schema.RuleType) (Schema, bool) {
	s, ok := catalogs[rt]
	return s, ok
}

// HasField reports whether field belongs to s, required or optional.
// Attributes outside the schema carry no type or enum constraints.
func (s Schema) HasField(field string) bool {
	for _, f := range s.Required {
		if f == field {
			return true
		}
	}
	for _, f := range s.Optional {
		if f == field {
			return true
		}
	}
	return false
}

// FieldTypeOf returns the expected type of field under s, defaulting to
// string.
func (s Schema) FieldTypeOf(field string) FieldType {
	if t, ok := s.Types[field]; ok {
		return t
	}
	return TypeString
}

// CheckValue reports whether v is representable as ft. Numeric values arrive
// from JSON as float64 but int is accepted for values built in-process.
func CheckValue(ft FieldType, v any) bool {
	switch ft {
	case TypeNumber:
		switch v.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeList:
		switch v.(type) {
		case []any, []string:
			return true
		}
		return false
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	}
	return false
}

// AllowedEnum reports whether value is allowed for field under s. Fields
// without an enumeration accept any value.
func (s Schema) AllowedEnum(field string, value any) bool {
	allowed, ok := s.Enums[field]
	if !ok {
		return true
	}
	str, ok := value.(string)
	if !ok {
		return false
	}
	for _, a := range allowed {
		if str == a {
			return true
		}
	}
	return false
}
