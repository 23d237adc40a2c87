package report

import (
	"strings"
	"testing"
)

func TestExtractSectionsFullReport(t *testing.T) {
	answer := "1. 사건 개요\n임대차 보증금 반환 분쟁입니다.\n" +
		"2. 법률 분석\n주택임대차보호법 제3조의2가 적용됩니다.\n" +
		"3. 결론\n임차인의 청구가 인용될 가능성이 높습니다.\n" +
		"4. 향후 조치\n내용증명을 발송하십시오."

	s := ExtractSections(answer)

	if s.Overview != "임대차 보증금 반환 분쟁입니다." {
		t.Errorf("overview = %q", s.Overview)
	}
	if s.Analysis != "주택임대차보호법 제3조의2가 적용됩니다." {
		t.Errorf("analysis = %q", s.Analysis)
	}
	if s.Conclusion != "임차인의 청구가 인용될 가능성이 높습니다." {
		t.Errorf("conclusion = %q", s.Conclusion)
	}
	if s.Action != "내용증명을 발송하십시오." {
		t.Errorf("action = %q", s.Action)
	}
}

func TestExtractSectionsMissingSection(t *testing.T) {
	answer := "1. 사건 개요\n임대차 분쟁입니다.\n2. 법률 분석\n민법 제618조가 적용됩니다.\n3. 결론\n임차인이 유리합니다."

	s := ExtractSections(answer)

	if s.Overview != "임대차 분쟁입니다." {
		t.Errorf("overview = %q", s.Overview)
	}
	if s.Analysis != "민법 제618조가 적용됩니다." {
		t.Errorf("analysis = %q", s.Analysis)
	}
	if s.Conclusion != "임차인이 유리합니다." {
		t.Errorf("conclusion = %q", s.Conclusion)
	}
	if s.Action != "" {
		t.Errorf("action should be empty, got %q", s.Action)
	}
}

func TestExtractSectionsEmphasisAndOrdinals(t *testing.T) {
	answer := "**1. 사건 개요**\n개요 내용\n**2. 법률 분석:**\n분석 내용\n**3. 결론**\n결론 내용\n**4. 향후 조치**\n- 조치 하나\n- 조치 둘"

	s := ExtractSections(answer)

	if s.Overview != "개요 내용" {
		t.Errorf("overview = %q", s.Overview)
	}
	if s.Analysis != "분석 내용" {
		t.Errorf("analysis = %q", s.Analysis)
	}
	if s.Conclusion != "결론 내용" {
		t.Errorf("conclusion = %q", s.Conclusion)
	}
	if s.Action != "• 조치 하나\n• 조치 둘" {
		t.Errorf("action = %q", s.Action)
	}
}

func TestExtractSectionsFallback(t *testing.T) {
	answer := "안녕하세요. 말씀하신 내용은 법률 상담이 필요한 사안으로 보입니다."

	s := ExtractSections(answer)

	if s.Overview != answer {
		t.Errorf("overview should absorb the whole answer, got %q", s.Overview)
	}
	if s.Analysis != "" || s.Conclusion != "" || s.Action != "" {
		t.Errorf("other sections should be empty: %+v", s)
	}

	// Re-parsing the fallback output reproduces it (idempotent for
	// header-free text).
	again := ExtractSections(s.Overview)
	if again.Overview != s.Overview {
		t.Errorf("re-parse changed overview: %q vs %q", again.Overview, s.Overview)
	}
}

func TestExtractSectionsNoContentLost(t *testing.T) {
	body := map[string]string{
		"overview":   "갑과 을 사이의 매매 계약 분쟁.",
		"analysis":   "민법 제565조에 따른 해약금 법리가 적용된다.",
		"conclusion": "계약금 배액 상환으로 해제 가능.",
		"action":     "해제 의사표시를 서면으로 통지할 것.",
	}
	answer := "1. 사건 개요\n" + body["overview"] +
		"\n2. 법률 분석\n" + body["analysis"] +
		"\n3. 결론\n" + body["conclusion"] +
		"\n4. 향후 조치\n" + body["action"]

	s := ExtractSections(answer)

	for _, want := range body {
		combined := strings.Join([]string{s.Overview, s.Analysis, s.Conclusion, s.Action}, "\n")
		if !strings.Contains(combined, want) {
			t.Errorf("section content %q missing from extracted output", want)
		}
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{
		`**강조된** 텍스트\n다음 줄`,
		"# 제목\n- 항목 하나\n* 항목 둘\n• 항목 셋",
		"  공백으로 둘러싸인 텍스트  ",
		"",
	}

	for _, in := range inputs {
		once := CleanText(in)
		twice := CleanText(once)
		if once != twice {
			t.Errorf("CleanText not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestCleanTextNormalization(t *testing.T) {
	in := `**유의사항**\n- 첫째\n- 둘째`
	want := "유의사항\n• 첫째\n• 둘째"
	if got := CleanText(in); got != want {
		t.Errorf("CleanText = %q, want %q", got, want)
	}
}

func TestCitationIsStatute(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"민법", true},
		{"주택임대차보호법", true},
		{"대통령령", true},
		{"공정거래위원회 규칙", true},
		{"소득세법 시행률", true},
		{"대법원 2020다12345 판결", false},
		{"계약서.pdf", false},
		{"", false},
	}

	for _, tt := range tests {
		c := Citation{Source: tt.source}
		if got := c.IsStatute(); got != tt.want {
			t.Errorf("IsStatute(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestPayloadResolved(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"42", true},
		{"local-7f3b0c9e", false},
		{"", false},
	}

	for _, tt := range tests {
		p := &Payload{ReportID: tt.id}
		if got := p.Resolved(); got != tt.want {
			t.Errorf("Resolved(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
