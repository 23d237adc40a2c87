package model

import (
	"lawtui/api"
	"lawtui/report"
)

// Messages produced by orchestrator commands. Result and error messages
// carry the request sequence number they belong to; the update loop drops
// any message whose seq no longer matches the in-flight request (late
// arrivals after cancellation).

type QueryResultMsg struct {
	Seq   int
	Query string
	Resp  *api.QueryResponse
}

type QueryErrorMsg struct {
	Seq int
	Err error
}

type VisionResultMsg struct {
	Seq      int
	Findings *api.VisionFindings
}

type ProgressTickMsg struct {
	Seq int
}

type MarkdownRenderedMsg struct {
	TurnIndex int
	Rendered  string
}

type HistoryListMsg struct {
	Records []api.ReportRecord
	Err     error
}

type ReportOpenedMsg struct {
	Payload *report.Payload
	Err     error
}

type LoginResultMsg struct {
	Resp *api.LoginResponse
	Err  error
}

type SubscribeResultMsg struct {
	LawName string
	Err     error
}

type NotificationsMsg struct {
	Notifications []api.Notification
	Err           error
}
