package storage

import (
	"errors"
	"testing"

	"lawtui/report"
)

func newTestStore(t *testing.T) *ReportStore {
	t.Helper()
	store, err := NewReportStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestHandoffRoundtrip(t *testing.T) {
	store := newTestStore(t)

	written := &report.Payload{
		ReportID: "42",
		Query:    "전세금 반환 청구",
		Answer:   "1. 사건 개요\n내용",
		Sources:  []report.Citation{{Source: "주택임대차보호법", Type: "law"}},
		Engine:   "gemini-3-pro-preview",
	}
	if err := store.WriteHandoff(written); err != nil {
		t.Fatalf("WriteHandoff failed: %v", err)
	}

	got, err := store.ReadHandoff()
	if err != nil {
		t.Fatalf("ReadHandoff failed: %v", err)
	}

	if got.ReportID != written.ReportID {
		t.Errorf("report_id = %q, want %q", got.ReportID, written.ReportID)
	}
	if got.Query != written.Query {
		t.Errorf("query = %q, want %q", got.Query, written.Query)
	}
	if got.Answer != written.Answer {
		t.Errorf("answer = %q, want %q", got.Answer, written.Answer)
	}
	if len(got.Sources) != 1 || got.Sources[0].Source != "주택임대차보호법" {
		t.Errorf("sources = %+v", got.Sources)
	}
}

func TestHandoffOverwriteWins(t *testing.T) {
	store := newTestStore(t)

	first := &report.Payload{ReportID: "1", Query: "첫 번째", Answer: "a"}
	second := &report.Payload{ReportID: "2", Query: "두 번째", Answer: "b"}

	if err := store.WriteHandoff(first); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := store.WriteHandoff(second); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	got, err := store.ReadHandoff()
	if err != nil {
		t.Fatalf("ReadHandoff failed: %v", err)
	}
	if got.ReportID != "2" {
		t.Errorf("slot holds report %q, want the newer one", got.ReportID)
	}
}

func TestReadHandoffEmpty(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ReadHandoff()
	if !errors.Is(err, ErrNoReport) {
		t.Errorf("expected ErrNoReport, got %v", err)
	}
}

func TestRecentOrdering(t *testing.T) {
	store := newTestStore(t)

	for _, p := range []*report.Payload{
		{ReportID: "1", Query: "q1", Answer: "a1"},
		{ReportID: "2", Query: "q2", Answer: "a2"},
		{ReportID: "3", Query: "q3", Answer: "a3"},
	} {
		if err := store.WriteHandoff(p); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	recent, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d reports, want 2", len(recent))
	}
	if recent[0].ReportID != "3" {
		t.Errorf("newest first: got %q", recent[0].ReportID)
	}
}
