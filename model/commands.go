package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"lawtui/api"
	"lawtui/config"
	"lawtui/report"
	"lawtui/storage"
)

const (
	listTimeout       = 15 * time.Second
	recentReportLimit = 20
)

// Submit starts one analysis request. It returns nil when a request is
// already in flight or there is nothing to send; otherwise it appends the
// user turn (optimistically - never rolled back), transitions to
// Submitting and returns the command batch that issues the network call
// and starts the progress timer.
func (m *Model) Submit(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if !m.CanSubmit(text) {
		return nil
	}

	att := m.Attachment

	content := text
	if att != nil {
		if content == "" {
			content = att.PreviewLabel()
		} else {
			content = att.PreviewLabel() + "\n" + content
		}
	}
	m.Turns = append(m.Turns, Turn{
		Role:      RoleUser,
		Content:   content,
		Rendered:  content,
		Timestamp: time.Now(),
	})

	ctx, seq := m.beginRequest()
	client := m.Client

	if att != nil {
		att.Description = text
		return tea.Batch(ProgressTick(seq), func() tea.Msg {
			findings, err := client.AnalyzeDocument(ctx, att.Filename, att.ContentType, att.Data, att.Description)
			if err != nil {
				return QueryErrorMsg{Seq: seq, Err: err}
			}
			return VisionResultMsg{Seq: seq, Findings: findings}
		})
	}

	return tea.Batch(ProgressTick(seq), func() tea.Msg {
		resp, err := client.Query(ctx, text)
		if err != nil {
			return QueryErrorMsg{Seq: seq, Err: err}
		}
		return QueryResultMsg{Seq: seq, Query: text, Resp: resp}
	})
}

// Cancel aborts the in-flight request, appends exactly one cancellation
// notice and returns to Idle. Returns false when nothing was in flight.
// The server side of the aborted call is neither tracked nor reversed.
func (m *Model) Cancel() bool {
	if !m.Submitting {
		return false
	}
	m.finishRequest()

	notice := "⚠️ 요청이 취소되었습니다. 다시 질문해 주세요."
	m.Turns = append(m.Turns, Turn{
		Role:      RoleAssistant,
		Content:   notice,
		Rendered:  notice,
		Timestamp: time.Now(),
	})
	return true
}

// ApplyProgressTick advances the simulated progress and schedules the next
// tick. Stale ticks return nil, which lets the timer die once the request
// has settled.
func (m *Model) ApplyProgressTick(msg ProgressTickMsg) tea.Cmd {
	if !m.current(msg.Seq) {
		return nil
	}
	m.Percent = AdvanceProgress(m.Percent)
	return ProgressTick(msg.Seq)
}

// Stage returns the label for the current simulated progress band.
func (m *Model) Stage() string {
	return StageLabel(m.Percent)
}

// ApplyQueryResult settles a completed text query. The assistant turn is
// appended with its server-assigned intent; for REPORT answers the handoff
// payload is synthesized, written to the handoff slot and returned so the
// caller can open the viewing surface. Late results are dropped (nil).
func (m *Model) ApplyQueryResult(msg QueryResultMsg) *report.Payload {
	if !m.current(msg.Seq) {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] Dropping stale query result (seq %d, current %d)", msg.Seq, m.requestSeq)
		}
		return nil
	}
	m.finishRequest()

	intent := ParseIntent(msg.Resp.Intent)
	m.Turns = append(m.Turns, Turn{
		Role:      RoleAssistant,
		Content:   msg.Resp.Answer,
		Rendered:  msg.Resp.Answer,
		Timestamp: time.Now(),
		Intent:    intent,
		Sources:   msg.Resp.Sources,
		Engine:    msg.Resp.Engine,
	})

	if intent != IntentReport {
		return nil
	}

	reportID := msg.Resp.ReportID.String()
	if reportID == "" {
		// Anonymous queries are never persisted server-side; give the
		// payload a local identity so the viewer can still render it.
		reportID = report.LocalIDPrefix + uuid.New().String()
	}

	payload := &report.Payload{
		ReportID: reportID,
		Query:    msg.Query,
		Answer:   msg.Resp.Answer,
		Sources:  msg.Resp.Sources,
		Engine:   msg.Resp.Engine,
	}

	if err := m.Reports.WriteHandoff(payload); err != nil {
		m.appendFailure(fmt.Errorf("failed to hand off report: %w", err))
		return nil
	}
	return payload
}

// ApplyQueryError settles a failed request with a user-facing error turn.
// Cancellation errors and late errors are dropped; the conversation stays
// usable in every case.
func (m *Model) ApplyQueryError(msg QueryErrorMsg) {
	if !m.current(msg.Seq) {
		return
	}
	m.finishRequest()

	if api.IsCanceled(msg.Err) {
		// User-initiated cancellation already appended its notice.
		return
	}
	m.appendFailure(msg.Err)
}

// ApplyVisionResult settles a completed document analysis: renders the
// findings as an assistant turn and clears the staged attachment.
func (m *Model) ApplyVisionResult(msg VisionResultMsg) {
	if !m.current(msg.Seq) {
		return
	}
	m.finishRequest()

	content := FormatFindings(msg.Findings)
	m.Turns = append(m.Turns, Turn{
		Role:      RoleAssistant,
		Content:   content,
		Rendered:  content,
		Timestamp: time.Now(),
		Intent:    IntentVision,
	})
	m.ClearAttachment()
}

func (m *Model) appendFailure(err error) {
	content := userFacingError(err)
	m.Turns = append(m.Turns, Turn{
		Role:      RoleAssistant,
		Content:   content,
		Rendered:  content,
		Timestamp: time.Now(),
	})
}

// userFacingError turns a transport or server error into conversation
// text: structured backend detail when available, a generic communication
// failure otherwise.
func userFacingError(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return fmt.Sprintf("❌ 오류가 발생했습니다: %s", apiErr.Detail)
	}
	return "❌ 서버와 통신하는 중 문제가 발생했습니다. 잠시 후 다시 시도해 주세요."
}

// FetchHistory retrieves the caller's persisted reports. When the server
// cannot serve the list (offline, signed out) the local report cache is
// shown instead, so recent work stays reachable.
func (m *Model) FetchHistory() tea.Cmd {
	client := m.Client
	reports := m.Reports
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()

		records, err := client.History(ctx)
		if err != nil {
			if local, lerr := reports.Recent(recentReportLimit); lerr == nil && len(local) > 0 {
				return HistoryListMsg{Records: recordsFromPayloads(local)}
			}
			return HistoryListMsg{Err: err}
		}
		return HistoryListMsg{Records: records}
	}
}

func recordsFromPayloads(payloads []*report.Payload) []api.ReportRecord {
	records := make([]api.ReportRecord, len(payloads))
	for i, p := range payloads {
		records[i] = api.ReportRecord{
			ID:          json.Number(p.ReportID),
			Query:       p.Query,
			Answer:      p.Answer,
			Engine:      p.Engine,
			Sources:     p.Sources,
			ChatHistory: p.ChatHistory,
		}
	}
	return records
}

// OpenHistoryReport fetches one persisted report, writes it to the handoff
// slot and reports back. History replay uses the exact same entry contract
// as a fresh report. Locally identified reports never touch the network.
func (m *Model) OpenHistoryReport(reportID string) tea.Cmd {
	client := m.Client
	reports := m.Reports
	return func() tea.Msg {
		if strings.HasPrefix(reportID, report.LocalIDPrefix) {
			local, err := reports.Recent(recentReportLimit)
			if err != nil {
				return ReportOpenedMsg{Err: err}
			}
			for _, p := range local {
				if p.ReportID == reportID {
					if err := reports.WriteHandoff(p); err != nil {
						return ReportOpenedMsg{Err: err}
					}
					return ReportOpenedMsg{Payload: p}
				}
			}
			return ReportOpenedMsg{Err: storage.ErrNoReport}
		}

		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()

		record, err := client.Report(ctx, reportID)
		if err != nil {
			return ReportOpenedMsg{Err: err}
		}
		payload := record.Payload()
		if err := reports.WriteHandoff(payload); err != nil {
			return ReportOpenedMsg{Err: err}
		}
		return ReportOpenedMsg{Payload: payload}
	}
}

// Login exchanges credentials for a bearer token.
func (m *Model) Login(username, password string) tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()

		resp, err := client.Login(ctx, username, password)
		return LoginResultMsg{Resp: resp, Err: err}
	}
}

// ApplySignIn persists the issued credential and installs it on the
// client.
func (m *Model) ApplySignIn(resp *api.LoginResponse) error {
	m.Client.SetToken(resp.AccessToken)
	if m.Credentials == nil {
		return nil
	}
	m.Credentials.SetSession(config.Session{
		AccessToken: resp.AccessToken,
		Username:    resp.Username,
		Nickname:    resp.Nickname,
	})
	return m.Credentials.Save(m.Config.DataDir())
}

// SignOut clears the stored session and reverts to anonymous access.
func (m *Model) SignOut() error {
	m.Client.SetToken("")
	if m.Credentials == nil {
		return nil
	}
	m.Credentials.Clear()
	return m.Credentials.Delete(m.Config.DataDir())
}

// FetchNotifications retrieves statute amendment notices. Returns nil for
// anonymous sessions, which have none.
func (m *Model) FetchNotifications() tea.Cmd {
	if !m.Client.HasToken() {
		return nil
	}
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()

		list, err := client.Notifications(ctx)
		return NotificationsMsg{Notifications: list, Err: err}
	}
}

// Subscribe registers a statute for amendment notifications.
func (m *Model) Subscribe(lawName string) tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()

		err := client.Subscribe(ctx, lawName)
		return SubscribeResultMsg{LawName: lawName, Err: err}
	}
}
