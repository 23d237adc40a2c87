package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atotto/clipboard"

	appmodel "lawtui/model"
	"lawtui/report"
	"lawtui/storage"
)

// reportClosedMsg tells the embedding chat view to tear the report view
// down. Standalone invocations quit instead.
type reportClosedMsg struct{}

type reportLoadedMsg struct {
	Payload *report.Payload
	Err     error
}

type followupResultMsg struct {
	Seq    int
	Answer string
}

type followupErrorMsg struct {
	Seq int
	Err error
}

const followupApology = "죄송합니다. 답변을 생성하지 못했습니다. 잠시 후 다시 질문해 주세요."

// ReportView presents one structured report: the four sections, the cited
// sources, and a grounded follow-up conversation scoped to this report.
type ReportView struct {
	dataModel *appmodel.Model

	payload  *report.Payload
	sections report.Sections

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	// Standalone mode: launched as `lawtui report`, reads the handoff
	// slot itself and quits on close
	standalone bool
	notFound   bool
	loadErr    string

	// Follow-up conversation. Single-flight, same drop discipline as the
	// main chat but scoped to this view.
	followups  []Turn
	submitting bool
	seq        int

	notice string
}

func NewReportView(dataModel *appmodel.Model, payload *report.Payload, standalone bool) ReportView {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "이 리포트에 대해 추가 질문하세요..."
	input.CharLimit = 0
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	rv := ReportView{
		dataModel:  dataModel,
		viewport:   viewport.New(0, 0),
		input:      input,
		spinner:    sp,
		standalone: standalone,
	}
	if payload != nil {
		rv.setPayload(payload)
	}
	return rv
}

func (r *ReportView) setPayload(p *report.Payload) {
	r.payload = p
	r.sections = report.ExtractSections(p.Answer)

	// Persisted follow-up turns from an earlier visit to this report
	r.followups = nil
	for _, turn := range p.ChatHistory {
		r.followups = append(r.followups, Turn{
			Role:     turn.Role,
			Content:  turn.Content,
			Rendered: turn.Content,
		})
	}
}

func (r *ReportView) SetSize(width, height int) {
	r.width = width
	r.height = height
	r.viewport.Width = width
	// Title (1), separator (1), input (1), status bar (1)
	r.viewport.Height = height - 4
	r.input.Width = width - 4
	r.ready = true
}

func (r ReportView) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if r.payload == nil {
		cmds = append(cmds, r.loadHandoff())
	}
	return tea.Batch(cmds...)
}

// loadHandoff reads the payload left in the handoff slot by the producing
// surface. An empty slot is a user-visible not-found state, not a crash.
func (r ReportView) loadHandoff() tea.Cmd {
	store := r.dataModel.Reports
	return func() tea.Msg {
		payload, err := store.ReadHandoff()
		return reportLoadedMsg{Payload: payload, Err: err}
	}
}

func (r ReportView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	if r.submitting {
		r.spinner, cmd = r.spinner.Update(msg)
		cmds = append(cmds, cmd)
		r.updateContent(true)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.SetSize(msg.Width, msg.Height)
		r.updateContent(false)
		return r, nil

	case reportLoadedMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, storage.ErrNoReport) {
				r.notFound = true
			} else {
				r.loadErr = msg.Err.Error()
			}
			return r, nil
		}
		r.setPayload(msg.Payload)
		r.updateContent(false)
		return r, nil

	case followupResultMsg:
		if !r.submitting || msg.Seq != r.seq {
			return r, tea.Batch(cmds...)
		}
		r.submitting = false
		r.followups = append(r.followups, Turn{
			Role:      appmodel.RoleAssistant,
			Content:   msg.Answer,
			Rendered:  renderMarkdown(msg.Answer, r.width),
			Timestamp: time.Now(),
		})
		r.updateContent(true)
		return r, tea.Batch(cmds...)

	case followupErrorMsg:
		if !r.submitting || msg.Seq != r.seq {
			return r, tea.Batch(cmds...)
		}
		r.submitting = false
		// The conversation stays usable: apologize and invite a retry
		r.followups = append(r.followups, Turn{
			Role:      appmodel.RoleAssistant,
			Content:   followupApology,
			Rendered:  followupApology,
			Timestamp: time.Now(),
		})
		r.updateContent(true)
		return r, tea.Batch(cmds...)

	case subscribeResultMsg:
		if msg.Err != nil {
			r.notice = "구독 실패: " + userFacingAPIError(msg.Err)
		} else {
			r.notice = "🔔 " + msg.LawName + " 개정 알림을 구독했습니다."
		}
		return r, tea.Batch(cmds...)

	case tea.KeyMsg:
		return r.handleKey(msg, cmds)
	}

	r.viewport, cmd = r.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return r, tea.Batch(cmds...)
}

func (r ReportView) handleKey(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return r, tea.Quit

	case "esc", "alt+q":
		if r.standalone {
			return r, tea.Quit
		}
		return r, func() tea.Msg { return reportClosedMsg{} }

	case "enter":
		return r.submitFollowup(cmds)

	case "alt+s":
		// Subscribe to the first cited statute
		if r.payload == nil {
			return r, nil
		}
		for _, src := range r.payload.Sources {
			if src.IsStatute() {
				return r, r.dataModel.Subscribe(src.Source)
			}
		}
		r.notice = "구독할 수 있는 법령 출처가 없습니다."
		return r, nil

	case "alt+y":
		if r.payload != nil {
			clipboard.WriteAll(r.payload.Answer)
		}
		return r, nil

	case "pgup", "pgdown", "ctrl+u", "ctrl+d", "home", "end", "up", "down":
		var cmd tea.Cmd
		r.viewport, cmd = r.viewport.Update(msg)
		return r, cmd
	}

	var cmd tea.Cmd
	r.input, cmd = r.input.Update(msg)
	cmds = append(cmds, cmd)
	return r, tea.Batch(cmds...)
}

func (r ReportView) submitFollowup(cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(r.input.Value())
	if text == "" || r.submitting || r.payload == nil {
		return r, nil
	}
	// Locally identified reports were never persisted server-side, so
	// there is nothing to ground a follow-up against.
	if !r.payload.Resolved() {
		r.notice = "저장되지 않은 리포트에는 추가 질문할 수 없습니다. 로그인 후 다시 생성해 주세요."
		return r, nil
	}

	r.followups = append(r.followups, Turn{
		Role:      appmodel.RoleUser,
		Content:   text,
		Rendered:  text,
		Timestamp: time.Now(),
	})
	r.input.Reset()
	r.submitting = true
	r.seq++
	r.updateContent(true)

	seq := r.seq
	client := r.dataModel.Client
	reportID := r.payload.ReportID
	cmds = append(cmds, r.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		resp, err := client.Followup(ctx, reportID, text)
		if err != nil {
			return followupErrorMsg{Seq: seq, Err: err}
		}
		return followupResultMsg{Seq: seq, Answer: resp.Answer}
	})
	return r, tea.Batch(cmds...)
}

func (r *ReportView) updateContent(gotoBottom bool) {
	if r.payload == nil {
		return
	}

	var b strings.Builder

	sections := []struct {
		title string
		body  string
	}{
		{"📌 사건 개요", r.sections.Overview},
		{"⚖️ 법률 분석", r.sections.Analysis},
		{"📝 결론", r.sections.Conclusion},
		{"🚀 향후 조치", r.sections.Action},
	}

	for _, s := range sections {
		if s.body == "" {
			continue
		}
		b.WriteString(SectionStyle.Render(s.title))
		b.WriteString("\n")
		b.WriteString(s.body)
		b.WriteString("\n\n")
	}

	b.WriteString(formatSources(r.payload.Sources))
	if len(r.payload.Sources) > 0 {
		b.WriteString(DimStyle.Render("  (Alt+S 법령 개정 알림 구독)"))
		b.WriteString("\n")
	}

	if len(r.followups) > 0 || r.submitting {
		b.WriteString("\n")
		b.WriteString(DimStyle.Render(strings.Repeat("─", max(r.width-4, 10))))
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("추가 질문"))
		b.WriteString("\n\n")
	}

	for _, turn := range r.followups {
		if turn.Role == appmodel.RoleUser {
			b.WriteString(formatUserMessage(DimStyle.Render(turn.Timestamp.Format("[15:04]")), UserStyle.Render("나"), turn.Rendered))
		} else {
			b.WriteString(AssistantStyle.Render("법률 비서") + "\n" + turn.Rendered + "\n\n")
		}
	}

	if r.submitting {
		b.WriteString(fmt.Sprintf("%s %s\n", r.spinner.View(), DimStyle.Render("답변을 생성하고 있습니다...")))
	}

	r.viewport.SetContent(b.String())
	if gotoBottom {
		r.viewport.GotoBottom()
	}
}

func (r ReportView) View() string {
	if !r.ready {
		return "Loading report..."
	}

	if r.notFound {
		return RenderAcknowledgeModal(
			"리포트를 찾을 수 없습니다",
			"열 수 있는 리포트가 없습니다.\n먼저 법률 질문으로 리포트를 생성해 주세요.",
			ModalTypeWarning,
			r.width,
			r.height,
		)
	}
	if r.loadErr != "" {
		return RenderAcknowledgeModal("⚠️  리포트 열기 실패", r.loadErr, ModalTypeError, r.width, r.height)
	}
	if r.payload == nil {
		return "Loading report..."
	}

	// Title bar - "⚖️ 법률 분석 리포트 #id (engine)"
	title := AssistantStyle.Render("⚖️ 법률 분석 리포트")
	id := r.payload.ReportID
	if strings.HasPrefix(id, report.LocalIDPrefix) {
		title += DimStyle.Render(" (임시)")
	} else {
		title += TitleStyle.Render(" #" + id)
	}
	if r.payload.Engine != "" {
		title += DimStyle.Render(" · " + r.payload.Engine)
	}
	if r.notice != "" {
		title += "  " + SelectedStyle.Render(r.notice)
	}

	separator := ""

	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	statusBar := fmt.Sprintf("Enter %s  Alt+S %s  Alt+Y %s  Esc %s",
		descStyle.Render("질문"),
		descStyle.Render("법령 구독"),
		descStyle.Render("복사"),
		descStyle.Render("닫기"),
	)
	statusBar = StatusStyle.Render(statusBar)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		separator,
		r.viewport.View(),
		r.input.View(),
		statusBar,
	)
}

