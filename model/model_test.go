package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"lawtui/api"
	"lawtui/config"
	"lawtui/report"
	"lawtui/storage"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	store, err := storage.NewReportStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewReportStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{ServerURL: "http://localhost:8000", DataDirectory: t.TempDir()}
	return NewModel(cfg, api.NewClient(cfg.ServerURL), nil, store, "test", "")
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		in   string
		want Intent
	}{
		{"GENERAL", IntentGeneral},
		{"CHAT", IntentGeneral},
		{"REPORT", IntentReport},
		{"VISION_ANALYSIS", IntentVision},
		{"", IntentGeneral},
		{"SOMETHING_NEW", IntentGeneral},
	}
	for _, tt := range tests {
		if got := ParseIntent(tt.in); got != tt.want {
			t.Errorf("ParseIntent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSubmitRejectsWhileInFlight(t *testing.T) {
	m := newTestModel(t)

	if cmd := m.Submit("전세금을 돌려받지 못하고 있어요"); cmd == nil {
		t.Fatal("first Submit returned nil")
	}
	if !m.Submitting {
		t.Fatal("Submitting = false after Submit")
	}
	turns := len(m.Turns)

	if cmd := m.Submit("다른 질문"); cmd != nil {
		t.Error("second Submit while in flight returned a command")
	}
	if len(m.Turns) != turns {
		t.Errorf("rejected Submit changed conversation: %d turns, want %d", len(m.Turns), turns)
	}
}

func TestSubmitRejectsEmpty(t *testing.T) {
	m := newTestModel(t)
	if cmd := m.Submit("   "); cmd != nil {
		t.Error("Submit with whitespace-only input returned a command")
	}
	if len(m.Turns) != 0 {
		t.Errorf("rejected Submit appended %d turns", len(m.Turns))
	}
}

func TestSubmitAllowsEmptyTextWithAttachment(t *testing.T) {
	m := newTestModel(t)
	m.StageAttachment(&Attachment{
		Filename:    "lease.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4"),
	})

	if cmd := m.Submit(""); cmd == nil {
		t.Fatal("Submit with staged attachment and empty text returned nil")
	}
	if len(m.Turns) != 1 {
		t.Fatalf("got %d turns, want 1", len(m.Turns))
	}
	if !strings.Contains(m.Turns[0].Content, "lease.pdf") {
		t.Errorf("user turn %q does not show the attachment preview", m.Turns[0].Content)
	}
}

func TestCancelAppendsSingleNotice(t *testing.T) {
	m := newTestModel(t)
	m.Submit("질문")
	seq := m.requestSeq
	turns := len(m.Turns)

	if !m.Cancel() {
		t.Fatal("Cancel returned false with a request in flight")
	}
	if m.Submitting {
		t.Error("Submitting still true after Cancel")
	}
	if len(m.Turns) != turns+1 {
		t.Fatalf("Cancel appended %d turns, want 1", len(m.Turns)-turns)
	}
	if m.Cancel() {
		t.Error("second Cancel returned true")
	}
	if len(m.Turns) != turns+1 {
		t.Error("second Cancel appended another notice")
	}

	// A late result from the canceled request must not change anything.
	payload := m.ApplyQueryResult(QueryResultMsg{
		Seq:   seq,
		Query: "질문",
		Resp:  &api.QueryResponse{Answer: "늦은 답변", Intent: "GENERAL"},
	})
	if payload != nil {
		t.Error("stale result produced a handoff payload")
	}
	if len(m.Turns) != turns+1 {
		t.Error("stale result appended a turn")
	}
}

func TestCancelIdleIsNoop(t *testing.T) {
	m := newTestModel(t)
	if m.Cancel() {
		t.Error("Cancel with no request in flight returned true")
	}
	if len(m.Turns) != 0 {
		t.Error("idle Cancel appended a turn")
	}
}

func TestApplyQueryResultGeneral(t *testing.T) {
	m := newTestModel(t)
	m.Submit("민법이 뭔가요?")
	seq := m.requestSeq

	payload := m.ApplyQueryResult(QueryResultMsg{
		Seq:   seq,
		Query: "민법이 뭔가요?",
		Resp: &api.QueryResponse{
			Answer: "민법은 사인 간의 법률관계를 규율합니다.",
			Intent: "CHAT",
			Engine: "rag",
		},
	})
	if payload != nil {
		t.Error("GENERAL answer produced a handoff payload")
	}
	if m.Submitting {
		t.Error("Submitting still true after result")
	}

	last := m.Turns[len(m.Turns)-1]
	if last.Role != RoleAssistant || last.Intent != IntentGeneral {
		t.Errorf("last turn role=%q intent=%q", last.Role, last.Intent)
	}

	// The conversation must be immediately usable again.
	if cmd := m.Submit("후속 질문"); cmd == nil {
		t.Error("Submit after settled result returned nil")
	}
}

func TestApplyQueryResultReportHandoff(t *testing.T) {
	m := newTestModel(t)
	m.Submit("임대차 보증금 반환 소송 검토해 주세요")
	seq := m.requestSeq

	payload := m.ApplyQueryResult(QueryResultMsg{
		Seq:   seq,
		Query: "임대차 보증금 반환 소송 검토해 주세요",
		Resp: &api.QueryResponse{
			Answer:   "## 1. 사건 개요\n임대차 분쟁입니다.",
			Intent:   "REPORT",
			Engine:   "rag",
			ReportID: json.Number("42"),
			Sources:  []report.Citation{{Source: "주택임대차보호법", Type: "law"}},
		},
	})
	if payload == nil {
		t.Fatal("REPORT answer produced no handoff payload")
	}
	if payload.ReportID != "42" {
		t.Errorf("ReportID = %q, want %q", payload.ReportID, "42")
	}
	if !payload.Resolved() {
		t.Error("server-identified payload reported unresolved")
	}

	stored, err := m.Reports.ReadHandoff()
	if err != nil {
		t.Fatalf("ReadHandoff: %v", err)
	}
	if stored.ReportID != "42" || stored.Answer != payload.Answer {
		t.Errorf("handoff slot holds %+v", stored)
	}
}

func TestApplyQueryResultReportLocalFallback(t *testing.T) {
	m := newTestModel(t)
	m.Submit("계약 검토")
	seq := m.requestSeq

	payload := m.ApplyQueryResult(QueryResultMsg{
		Seq:   seq,
		Query: "계약 검토",
		Resp:  &api.QueryResponse{Answer: "분석 결과", Intent: "REPORT"},
	})
	if payload == nil {
		t.Fatal("REPORT answer produced no handoff payload")
	}
	if !strings.HasPrefix(payload.ReportID, report.LocalIDPrefix) {
		t.Errorf("fallback ReportID = %q, want %q prefix", payload.ReportID, report.LocalIDPrefix)
	}
	if payload.Resolved() {
		t.Error("locally identified payload reported resolved")
	}
}

func TestApplyQueryErrorDetail(t *testing.T) {
	m := newTestModel(t)
	m.Submit("질문")
	seq := m.requestSeq
	turns := len(m.Turns)

	m.ApplyQueryError(QueryErrorMsg{
		Seq: seq,
		Err: &api.Error{StatusCode: 503, Detail: "AI 모델 연결에 실패했습니다"},
	})
	if m.Submitting {
		t.Error("Submitting still true after error")
	}
	if len(m.Turns) != turns+1 {
		t.Fatalf("error appended %d turns, want 1", len(m.Turns)-turns)
	}
	if !strings.Contains(m.Turns[len(m.Turns)-1].Content, "AI 모델 연결에 실패했습니다") {
		t.Errorf("error turn %q does not surface the server detail", m.Turns[len(m.Turns)-1].Content)
	}
}

func TestApplyQueryErrorGeneric(t *testing.T) {
	m := newTestModel(t)
	m.Submit("질문")
	seq := m.requestSeq

	m.ApplyQueryError(QueryErrorMsg{Seq: seq, Err: errors.New("dial tcp: connection refused")})
	last := m.Turns[len(m.Turns)-1]
	if strings.Contains(last.Content, "connection refused") {
		t.Errorf("raw transport error leaked into the conversation: %q", last.Content)
	}
	if !strings.Contains(last.Content, "다시 시도") {
		t.Errorf("generic failure turn %q lacks retry guidance", last.Content)
	}
}

func TestApplyVisionResultClearsAttachment(t *testing.T) {
	m := newTestModel(t)
	m.StageAttachment(&Attachment{Filename: "scan.png", ContentType: "image/png", Data: []byte{1}})
	m.Submit("이 계약서 검토해 주세요")
	seq := m.requestSeq

	m.ApplyVisionResult(VisionResultMsg{
		Seq: seq,
		Findings: &api.VisionFindings{
			DocumentType: "임대차계약서",
			RiskLevel:    "높음",
			ToxicClauses: []api.ToxicClause{{Clause: "제7조", Reason: "과도한 위약금", Suggestion: "감액 협의"}},
		},
	})
	if m.Attachment != nil {
		t.Error("attachment still staged after vision result")
	}
	last := m.Turns[len(m.Turns)-1]
	if last.Intent != IntentVision {
		t.Errorf("vision turn intent = %q", last.Intent)
	}
	if !strings.Contains(last.Content, "임대차계약서") || !strings.Contains(last.Content, "제7조") {
		t.Errorf("vision turn missing findings: %q", last.Content)
	}
}

func TestProgressAdvancesWithinBounds(t *testing.T) {
	p := 0.0
	for i := 0; i < 500; i++ {
		next := AdvanceProgress(p)
		if next < p {
			t.Fatalf("progress regressed: %f -> %f", p, next)
		}
		if next >= 100 {
			t.Fatalf("progress reached %f", next)
		}
		p = next
	}
	if p < 50 {
		t.Errorf("progress barely moved after 500 ticks: %f", p)
	}
}

func TestStageLabelBands(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, "질의 내용을 분석하고 있습니다"},
		{24.9, "질의 내용을 분석하고 있습니다"},
		{25, "관련 법령과 판례를 검색하고 있습니다"},
		{60, "답변을 생성하고 있습니다"},
		{90, "최종 검토 중입니다"},
		{99, "최종 검토 중입니다"},
	}
	for _, tt := range tests {
		if got := StageLabel(tt.percent); got != tt.want {
			t.Errorf("StageLabel(%v) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestApplyProgressTick(t *testing.T) {
	m := newTestModel(t)
	m.Submit("질문")
	seq := m.requestSeq

	if cmd := m.ApplyProgressTick(ProgressTickMsg{Seq: seq}); cmd == nil {
		t.Error("live tick did not reschedule")
	}
	if m.Percent <= 0 {
		t.Errorf("Percent = %f after tick", m.Percent)
	}

	m.Cancel()
	if cmd := m.ApplyProgressTick(ProgressTickMsg{Seq: seq}); cmd != nil {
		t.Error("stale tick rescheduled the timer")
	}
}

func TestStageAttachmentReplaces(t *testing.T) {
	m := newTestModel(t)
	m.StageAttachment(&Attachment{Filename: "a.png", ContentType: "image/png"})
	m.StageAttachment(&Attachment{Filename: "b.pdf", ContentType: "application/pdf"})
	if m.Attachment == nil || m.Attachment.Filename != "b.pdf" {
		t.Errorf("staged attachment = %+v, want b.pdf", m.Attachment)
	}
	m.ClearAttachment()
	if m.Attachment != nil {
		t.Error("attachment still staged after ClearAttachment")
	}
}
