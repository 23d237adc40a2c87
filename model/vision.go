package model

import (
	"fmt"
	"strings"

	"lawtui/api"
)

// FormatFindings renders structured vision findings as markdown for the
// conversation. Analyses that failed server-side come back with the error
// fields set instead of findings; those render as a short notice.
func FormatFindings(f *api.VisionFindings) string {
	if f.ErrorMessage != "" {
		if f.ErrorDetail != "" {
			return fmt.Sprintf("❌ 문서 분석에 실패했습니다: %s (%s)", f.ErrorMessage, f.ErrorDetail)
		}
		return fmt.Sprintf("❌ 문서 분석에 실패했습니다: %s", f.ErrorMessage)
	}

	var b strings.Builder
	b.WriteString("## 📑 문서 분석 결과\n\n")

	if f.DocumentType != "" {
		fmt.Fprintf(&b, "**문서 종류:** %s\n", f.DocumentType)
	}
	if f.RiskLevel != "" {
		fmt.Fprintf(&b, "**위험도:** %s %s\n", riskMarker(f.RiskLevel), f.RiskLevel)
	}

	if len(f.ToxicClauses) > 0 {
		b.WriteString("\n### ⚠️ 독소 조항\n")
		for i, clause := range f.ToxicClauses {
			fmt.Fprintf(&b, "\n%d. %s\n", i+1, clause.Clause)
			if clause.Reason != "" {
				fmt.Fprintf(&b, "   - 사유: %s\n", clause.Reason)
			}
			if clause.Suggestion != "" {
				fmt.Fprintf(&b, "   - 제안: %s\n", clause.Suggestion)
			}
		}
	}

	if len(f.MissingItems) > 0 {
		b.WriteString("\n### 📌 누락된 항목\n")
		for _, item := range f.MissingItems {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}

	if f.OverallOpinion != "" {
		b.WriteString("\n### 종합 의견\n")
		b.WriteString(f.OverallOpinion)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func riskMarker(level string) string {
	switch strings.ToLower(level) {
	case "높음", "high":
		return "🔴"
	case "중간", "medium", "보통":
		return "🟡"
	default:
		return "🟢"
	}
}
