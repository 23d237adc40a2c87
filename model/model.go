package model

import (
	"context"

	"lawtui/api"
	"lawtui/config"
	"lawtui/storage"
)

// Model holds the core application data and request-orchestration state.
// It is owned by the single active view; there is no shared mutable state
// across goroutines - commands communicate back through tea.Msg values.
type Model struct {
	// Core dependencies
	Config      *config.Config
	Client      *api.Client
	Credentials *config.CredentialStore
	Reports     *storage.ReportStore

	// Conversation state. Append-only during a session; user turns are
	// optimistic and never rolled back.
	Turns      []Turn
	Attachment *Attachment

	// Request lifecycle. One request may be in flight at a time;
	// requestSeq identifies it so late messages from a canceled or
	// superseded request are dropped.
	Submitting    bool
	Percent       float64
	cancelRequest context.CancelFunc
	requestSeq    int

	// Application metadata
	Version string
	License string
}

// NewModel wires the core dependencies together. The credential store has
// already been loaded; its token (if any) is installed on the client.
func NewModel(cfg *config.Config, client *api.Client, creds *config.CredentialStore, reports *storage.ReportStore, version, license string) *Model {
	if creds != nil && creds.SignedIn() {
		client.SetToken(creds.Token())
	}

	return &Model{
		Config:      cfg,
		Client:      client,
		Credentials: creds,
		Reports:     reports,
		Version:     version,
		License:     license,
	}
}

// CanSubmit reports whether a submission with the given input would start
// a request right now.
func (m *Model) CanSubmit(text string) bool {
	return !m.Submitting && (text != "" || m.Attachment != nil)
}

// beginRequest transitions Idle → Submitting: allocates the cancellation
// token and the sequence number identifying this request.
func (m *Model) beginRequest() (context.Context, int) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelRequest = cancel
	m.requestSeq++
	m.Submitting = true
	m.Percent = 0
	return ctx, m.requestSeq
}

// finishRequest settles the lifecycle and releases the token.
func (m *Model) finishRequest() {
	if m.cancelRequest != nil {
		m.cancelRequest()
		m.cancelRequest = nil
	}
	m.Submitting = false
	m.Percent = 0
}

// current reports whether a message belongs to the in-flight request.
// Stale messages (after cancellation or a newer submission) are dropped by
// the update loop.
func (m *Model) current(seq int) bool {
	return m.Submitting && seq == m.requestSeq
}
