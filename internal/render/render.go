// Package render produces output from a fully assembled schema.Report.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evalgate/evalgate/internal/schema"
)

// RenderJSON produces a pretty-printed JSON representation of the report.
// The output round-trips through json.Unmarshal back to an equal Report.
// Map-valued fields marshal with sorted keys, so identical reports always
// render to identical bytes.
func RenderJSON(report *schema.Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("render: nil report")
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: json marshal: %w", err)
	}
	return b, nil
}

// RenderMarkdown produces a GitHub-flavoured Markdown summary of the report,
// suitable for PR comments or terminal output.
func RenderMarkdown(report *schema.Report) string {
	if report == nil {
		return ""
	}
	var sb strings.Builder

	// Summary section.
	sb.WriteString("## Evaluation Report\n\n")
	fmt.Fprintf(&sb, "**Failure:** %s [%s]", report.FailureType, report.FailureSeverity)
	if report.IsRetryable {
		sb.WriteString(" (retryable)")
	}
	sb.WriteString("  \n")
	fmt.Fprintf(&sb, "**Quality score:** %.3f  \n", report.OverallQualityScore)
	fmt.Fprintf(&sb, "**Coverage:** %.3f (%d/%d chunks)  \n",
		report.CoverageRatio, report.ChunksProcessed, report.TotalChunks)
	fmt.Fprintf(&sb, "**Candidates:** %d | **Unique:** %d | **Avg confidence:** %.3f\n\n",
		report.TotalCandidates, report.UniqueCount, report.AvgConfidence)

	if len(report.ChunksWithZeroExtractions) > 0 {
		sb.WriteString("## Chunks With Zero Extractions\n\n")
		for _, id := range report.ChunksWithZeroExtractions {
			fmt.Fprintf(&sb, "- `%s`\n", id)
		}
		sb.WriteString("\n")
	}

	if len(report.Evaluations) > 0 {
		sb.WriteString("## Candidates\n\n")
		sb.WriteString("| ID | Rule Type | Grounding | Class | Confidence |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, e := range report.Evaluations {
			fmt.Fprintf(&sb, "| %s | %s | %.3f | %s | %.3f |\n",
				e.CandidateID, e.RuleType, e.GroundingScore, e.GroundingClass, e.Confidence)
		}
		sb.WriteString("\n")
	}

	if len(report.TestabilityIssues) > 0 {
		sb.WriteString("## Testability Issues\n\n")
		sb.WriteString("| Candidate | Severity | Problems |\n")
		sb.WriteString("|---|---|---|\n")
		for _, is := range report.TestabilityIssues {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n",
				is.CandidateID, is.Severity, mdEscape(strings.Join(is.Problems, "; ")))
		}
		sb.WriteString("\n")
	}

	if len(report.GroundingIssues) > 0 {
		sb.WriteString("## Grounding Issues\n\n")
		sb.WriteString("| Candidate | Class | Severity | Problems |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, is := range report.GroundingIssues {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
				is.CandidateID, is.Class, is.Severity, mdEscape(strings.Join(is.Problems, "; ")))
		}
		sb.WriteString("\n")
	}

	if len(report.HallucinationFlags) > 0 {
		sb.WriteString("## Hallucination Flags\n\n")
		sb.WriteString("| Candidate | Risk | Reason |\n")
		sb.WriteString("|---|---|---|\n")
		for _, f := range report.HallucinationFlags {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n",
				f.CandidateID, f.Risk, mdEscape(f.Reason))
		}
		sb.WriteString("\n")
	}

	if len(report.SchemaIssues) > 0 {
		sb.WriteString("## Schema Issues\n\n")
		sb.WriteString("| Candidate | Severity | Missing | Invalid |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, is := range report.SchemaIssues {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
				is.CandidateID, is.Severity,
				mdEscape(strings.Join(is.MissingFields, ", ")),
				mdEscape(strings.Join(is.InvalidFields, ", ")))
		}
		sb.WriteString("\n")
	}

	if len(report.Repairs) > 0 {
		sb.WriteString("## Repairs\n\n")
		sb.WriteString("| Candidate | Field | Value | Basis |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, r := range report.Repairs {
			fmt.Fprintf(&sb, "| %s | %s | %v | %s |\n",
				r.CandidateID, r.Field, r.Value, mdEscape(r.Basis))
		}
		sb.WriteString("\n")
	}

	if len(report.Duplicates) > 0 {
		sb.WriteString("## Near-Duplicate Pairs\n\n")
		sb.WriteString("| A | B | Similarity | Rule Type |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, d := range report.Duplicates {
			fmt.Fprintf(&sb, "| %s | %s | %.3f | %s |\n",
				d.IDA, d.IDB, d.Similarity, d.RuleType)
		}
		sb.WriteString("\n")
	}

	if len(report.Suggestions) > 0 {
		sb.WriteString("## Suggestions\n\n")
		for _, s := range report.Suggestions {
			fmt.Fprintf(&sb, "- %s\n", mdEscape(s))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// mdEscape replaces characters that would break Markdown table cells.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
