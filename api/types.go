package api

import (
	"encoding/json"
	"fmt"

	"lawtui/report"
)

// QueryResponse is the backend's answer to a text query. Intent is decided
// entirely server-side; ReportID is present only when the server persisted
// the answer as a report.
type QueryResponse struct {
	Answer   string            `json:"answer"`
	Sources  []report.Citation `json:"sources"`
	Intent   string            `json:"intent"`
	Engine   string            `json:"engine"`
	ReportID json.Number       `json:"report_id,omitempty"`
}

// ToxicClause is one flagged contract clause from a vision analysis.
type ToxicClause struct {
	Clause     string `json:"clause"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion"`
}

// VisionFindings is the structured result of a contract image/PDF analysis.
type VisionFindings struct {
	DocumentType   string        `json:"document_type"`
	ToxicClauses   []ToxicClause `json:"toxic_clauses"`
	MissingItems   []string      `json:"missing_items"`
	OverallOpinion string        `json:"overall_opinion"`
	RiskLevel      string        `json:"risk_level"`

	// Set instead of the fields above when the analysis itself failed
	// server-side.
	ErrorMessage string `json:"error,omitempty"`
	ErrorDetail  string `json:"detail,omitempty"`
}

// FollowupResponse is the answer to a report-scoped follow-up question.
type FollowupResponse struct {
	Answer string `json:"answer"`
	Model  string `json:"model,omitempty"`
}

// ReportRecord is a persisted report as returned by the history endpoints.
type ReportRecord struct {
	ID          json.Number       `json:"id"`
	Query       string            `json:"query"`
	Answer      string            `json:"answer"`
	Engine      string            `json:"engine"`
	Sources     []report.Citation `json:"sources"`
	ChatHistory []report.Turn     `json:"chat_history"`
	CreatedAt   string            `json:"created_at"`
}

// Payload converts a history record into the handoff payload shape, so a
// replayed report enters the viewing surface through the same contract as a
// fresh one.
func (r *ReportRecord) Payload() *report.Payload {
	return &report.Payload{
		ReportID:    r.ID.String(),
		Query:       r.Query,
		Answer:      r.Answer,
		Sources:     r.Sources,
		Engine:      r.Engine,
		ChatHistory: r.ChatHistory,
	}
}

// LoginResponse carries the bearer credential issued by the identity
// collaborator.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	Nickname    string `json:"nickname"`
}

// Profile is the current-user snapshot.
type Profile struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

// Subscription is a statute watch registration.
type Subscription struct {
	ID      json.Number `json:"id"`
	LawName string      `json:"law_name"`
}

// Notification is a statute amendment notice.
type Notification struct {
	ID      json.Number `json:"id"`
	LawName string      `json:"law_name"`
	Message string      `json:"message"`
	IsRead  bool        `json:"is_read"`
}

// Error is a structured backend error, decoded from the FastAPI
// {"detail": ...} shape.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("server error (%d)", e.StatusCode)
}
