package report

import "strings"

// LocalIDPrefix marks client-generated fallback report IDs. Reports carrying
// such an ID were never persisted by the server, so report-scoped requests
// (follow-up chat, subscriptions) must not be issued against them.
const LocalIDPrefix = "local-"

// Citation is a single source reference attached to an answer.
type Citation struct {
	Source string `json:"source"`
	Type   string `json:"type,omitempty"`
}

// statuteSuffixes are the name endings of Korean statutory instruments.
// This is a plain suffix match, not a legal lookup - court decisions and
// uploaded documents never end in these characters, law names always do.
var statuteSuffixes = []string{"법", "령", "규칙", "률"}

// IsStatute reports whether the citation names a statute and is therefore
// subscribable for amendment notifications.
func (c Citation) IsStatute() bool {
	s := strings.TrimSpace(c.Source)
	for _, suffix := range statuteSuffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// Turn is one exchange entry in a report-scoped follow-up conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Payload is the complete report handed off from the chat surface to the
// viewing surface. The viewing surface owns it exclusively after handoff;
// the chat surface keeps no reference.
type Payload struct {
	ReportID    string     `json:"report_id"`
	Query       string     `json:"query"`
	Answer      string     `json:"answer"`
	Sources     []Citation `json:"sources"`
	Engine      string     `json:"engine,omitempty"`
	ChatHistory []Turn     `json:"chat_history,omitempty"`
}

// Resolved reports whether the payload carries a server-issued report ID.
// Follow-up questions are a no-op against unresolved reports.
func (p *Payload) Resolved() bool {
	return p.ReportID != "" && !strings.HasPrefix(p.ReportID, LocalIDPrefix)
}
