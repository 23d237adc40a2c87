package model

import (
	"time"

	"lawtui/report"
)

// Intent classifies an assistant turn's presentation mode. It is assigned
// by the server (or by the submission shape, for vision analyses) - never
// inferred client-side.
type Intent string

const (
	IntentGeneral Intent = "GENERAL"
	IntentReport  Intent = "REPORT"
	IntentVision  Intent = "VISION_ANALYSIS"
)

// ParseIntent maps the wire intent onto the presentation intent. Older
// server generations emit "CHAT" for plain conversation.
func ParseIntent(s string) Intent {
	switch s {
	case "REPORT":
		return IntentReport
	case "VISION_ANALYSIS":
		return IntentVision
	default:
		// CHAT, GENERAL, and anything unrecognized render as plain chat.
		return IntentGeneral
	}
}

// Turn is one entry in the visible conversation.
type Turn struct {
	Role      string
	Content   string // Raw content from the backend
	Rendered  string // Cached rendered markdown
	Timestamp time.Time

	// Assistant turns only
	Intent  Intent
	Sources []report.Citation
	Engine  string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)
