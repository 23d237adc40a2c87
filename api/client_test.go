package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestQueryDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/query" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if got := r.FormValue("query"); got != "전세금 반환" {
			t.Errorf("query field = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"answer": "1. 사건 개요\n내용",
			"sources": [{"source": "민법", "type": "law"}],
			"intent": "REPORT",
			"engine": "gemini-3-pro-preview",
			"report_id": 42
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.Query(context.Background(), "전세금 반환")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if resp.Intent != "REPORT" {
		t.Errorf("intent = %q", resp.Intent)
	}
	if resp.ReportID.String() != "42" {
		t.Errorf("report_id = %q", resp.ReportID.String())
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Source != "민법" {
		t.Errorf("sources = %+v", resp.Sources)
	}
}

func TestQuerySendsBearerWhenSet(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"answer": "ok", "sources": [], "intent": "GENERAL", "engine": "e"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Query(context.Background(), "질문"); err != nil {
		t.Fatalf("anonymous query failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("anonymous request carried Authorization %q", gotAuth)
	}

	c.SetToken("tok-123")
	if _, err := c.Query(context.Background(), "질문"); err != nil {
		t.Fatalf("authenticated query failed: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestQueryCancellation(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	c := NewClient(srv.URL)
	_, err := c.Query(ctx, "취소될 질문")
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if !IsCanceled(err) {
		t.Errorf("expected canceled error, got %v", err)
	}
}

func TestErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Authentication required"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Followup(context.Background(), "7", "후속 질문")
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Detail != "Authentication required" {
		t.Errorf("detail = %q", apiErr.Detail)
	}
}

func TestFollowupPathAndDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/report/42" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"answer": "리포트 기반 답변입니다.", "model": "gemini-2.0-flash-lite"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.Followup(context.Background(), "42", "후속 질문")
	if err != nil {
		t.Fatalf("Followup failed: %v", err)
	}
	if resp.Answer != "리포트 기반 답변입니다." {
		t.Errorf("answer = %q", resp.Answer)
	}
}

func TestAnalyzeDocumentMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("failed to parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file part: %v", err)
		}
		defer file.Close()
		if header.Filename != "contract.pdf" {
			t.Errorf("filename = %q", header.Filename)
		}
		if got := r.FormValue("description"); got != "임대차 계약서" {
			t.Errorf("description = %q", got)
		}
		w.Write([]byte(`{
			"document_type": "임대차 계약서",
			"toxic_clauses": [{"clause": "제5조", "reason": "일방적 해지권", "suggestion": "상호 해지권으로 수정"}],
			"missing_items": ["보증금 반환 조건"],
			"overall_opinion": "수정 후 체결 권장",
			"risk_level": "중"
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	findings, err := c.AnalyzeDocument(context.Background(), "contract.pdf", "application/pdf", []byte("%PDF-1.4"), "임대차 계약서")
	if err != nil {
		t.Fatalf("AnalyzeDocument failed: %v", err)
	}
	if findings.RiskLevel != "중" {
		t.Errorf("risk_level = %q", findings.RiskLevel)
	}
	if len(findings.ToxicClauses) != 1 || findings.ToxicClauses[0].Suggestion != "상호 해지권으로 수정" {
		t.Errorf("toxic_clauses = %+v", findings.ToxicClauses)
	}
}

func TestReportRecordPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/history/7" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"id": 7,
			"query": "질문",
			"answer": "답변",
			"engine": "gemini-3-pro-preview",
			"sources": [{"source": "상법", "type": "law"}],
			"chat_history": [{"role": "user", "content": "후속"}],
			"created_at": "2026-08-20T09:30:00"
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	record, err := c.Report(context.Background(), "7")
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	p := record.Payload()
	if p.ReportID != "7" || p.Query != "질문" || p.Answer != "답변" {
		t.Errorf("payload = %+v", p)
	}
	if !p.Resolved() {
		t.Error("history payload should be resolved")
	}
	if len(p.ChatHistory) != 1 || p.ChatHistory[0].Content != "후속" {
		t.Errorf("chat_history = %+v", p.ChatHistory)
	}
}
