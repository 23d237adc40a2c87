package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"lawtui/api"
	"lawtui/config"
	appmodel "lawtui/model"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	// Report view owns the screen while open: forward everything except
	// window sizing, which both need
	if a.reportView != nil {
		if size, ok := msg.(tea.WindowSizeMsg); ok {
			a.width = size.Width
			a.height = size.Height
			a.ready = true
		}
		if _, ok := msg.(reportClosedMsg); ok {
			a.reportView = nil
			a.viewport.Width = a.width
			a.viewport.Height = a.height - 7
			a.textarea.SetWidth(a.width)
			a.updateViewportContent(true)
			return a, nil
		}
		updated, cmd := a.reportView.Update(msg)
		rv := updated.(ReportView)
		a.reportView = &rv
		return a, cmd
	}

	// Update spinner FIRST to handle TickMsg before anything else
	if a.dataModel.Submitting || a.historyLoading || a.openingReport || a.loggingIn {
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		cmds = append(cmds, cmd)
		if a.dataModel.Submitting {
			// Keep the waiting placeholder animated
			a.updateViewportContent(true)
		}
	}

	// Forward non-key messages to the file picker while it is browsing
	// (readDirMsg and friends)
	if a.attachmentPicker.Active {
		switch msg.(type) {
		case tea.KeyMsg:
			// Handled in handleAttachmentPicker to check DidSelectFile first
		default:
			a.attachmentPicker.Picker, cmd = a.attachmentPicker.Picker.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// Reserve space for title (1), separator (1), progress (1),
		// textarea (3), and status bar (1)
		viewportHeight := a.height - 7
		a.viewport.Width = a.width
		a.viewport.Height = viewportHeight
		a.textarea.SetWidth(a.width)

		a.ready = true
		a.updateViewportContent(true)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg, cmds)

	case progressTickMsg:
		cmd := a.dataModel.ApplyProgressTick(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case queryResultMsg:
		payload := a.dataModel.ApplyQueryResult(msg)
		if !a.dataModel.Submitting {
			// Request settled: render the new assistant turn
			cmds = append(cmds, a.renderLastTurn())
		}
		a.updateViewportContent(true)
		if payload != nil {
			rv := NewReportView(a.dataModel, payload, false)
			a.reportView = &rv
			a.reportView.SetSize(a.width, a.height)
			cmds = append(cmds, a.reportView.Init())
		}
		return a, tea.Batch(cmds...)

	case queryErrorMsg:
		a.dataModel.ApplyQueryError(msg)
		a.updateViewportContent(true)
		return a, tea.Batch(cmds...)

	case visionResultMsg:
		a.dataModel.ApplyVisionResult(msg)
		cmds = append(cmds, a.renderLastTurn())
		a.updateViewportContent(true)
		return a, tea.Batch(cmds...)

	case markdownRenderedMsg:
		if msg.TurnIndex >= 0 && msg.TurnIndex < len(a.dataModel.Turns) {
			a.dataModel.Turns[msg.TurnIndex].Rendered = msg.Rendered
			a.updateViewportContent(true)
		}
		return a, tea.Batch(cmds...)

	case historyListMsg:
		a.historyLoading = false
		if msg.Err != nil {
			a.historyError = userFacingAPIError(msg.Err)
			return a, tea.Batch(cmds...)
		}
		a.historyError = ""
		a.historyList = msg.Records
		if a.selectedHistoryIdx >= len(a.historyList) {
			a.selectedHistoryIdx = 0
		}
		return a, tea.Batch(cmds...)

	case reportOpenedMsg:
		a.openingReport = false
		if msg.Err != nil {
			a.acknowledge("⚠️  리포트 열기 실패", userFacingAPIError(msg.Err), ModalTypeError)
			return a, tea.Batch(cmds...)
		}
		a.showHistory = false
		rv := NewReportView(a.dataModel, msg.Payload, false)
		a.reportView = &rv
		a.reportView.SetSize(a.width, a.height)
		cmds = append(cmds, a.reportView.Init())
		return a, tea.Batch(cmds...)

	case loginResultMsg:
		a.loggingIn = false
		if msg.Err != nil {
			a.loginError = userFacingAPIError(msg.Err)
			return a, tea.Batch(cmds...)
		}
		if err := a.dataModel.ApplySignIn(msg.Resp); err != nil {
			// Signed in but the session could not be persisted; next
			// launch starts signed out
			if config.DebugLog != nil {
				config.DebugLog.Printf("[AppView] Failed to persist session: %v", err)
			}
		}
		a.showLogin = false
		a.loginError = ""
		a.loginUsernameInput.SetValue("")
		a.loginPasswordInput.SetValue("")
		a.textarea.Focus()
		cmds = append(cmds, a.dataModel.FetchNotifications())
		return a, tea.Batch(cmds...)

	case notificationsMsg:
		if msg.Err != nil {
			return a, tea.Batch(cmds...)
		}
		unread := 0
		for _, n := range msg.Notifications {
			if !n.IsRead {
				unread++
			}
		}
		a.unreadNotifications = unread
		return a, tea.Batch(cmds...)

	case subscribeResultMsg:
		if msg.Err != nil {
			a.acknowledge("⚠️  구독 실패", userFacingAPIError(msg.Err), ModalTypeError)
		} else {
			a.acknowledge("🔔 구독 완료", msg.LawName+" 개정 알림을 구독했습니다.", ModalTypeInfo)
		}
		return a, tea.Batch(cmds...)

	case reportDeletedMsg:
		if msg.Err != nil {
			a.acknowledge("⚠️  삭제 실패", userFacingAPIError(msg.Err), ModalTypeError)
			return a, tea.Batch(cmds...)
		}
		a.historyLoading = true
		cmds = append(cmds, a.dataModel.FetchHistory(), a.loadingSpinner.Tick)
		return a, tea.Batch(cmds...)
	}

	// Let the viewport handle mouse wheel and other messages
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

func (a AppView) handleKey(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	// Modal key handling, top layer first
	if a.showHelp {
		if msg.String() == "esc" || msg.String() == "enter" || msg.String() == "alt+k" {
			a.showHelp = false
		}
		return a, nil
	}

	if a.showAcknowledgeModal {
		if msg.String() == "esc" || msg.String() == "enter" {
			a.showAcknowledgeModal = false
		}
		return a, nil
	}

	if a.showLogin {
		return a.handleLoginKey(msg)
	}

	if a.attachmentPicker.Active {
		return a.handleAttachmentPicker(msg)
	}

	if a.showHistory {
		return a.handleHistoryKey(msg)
	}

	if a.showAbout {
		if msg.String() == "esc" || msg.String() == "enter" {
			a.showAbout = false
		}
		return a, nil
	}

	switch msg.String() {
	case "ctrl+c", "alt+q":
		return a, tea.Quit

	case "enter":
		cmd := a.dataModel.Submit(a.textarea.Value())
		if cmd == nil {
			return a, nil
		}
		a.textarea.Reset()
		a.updateViewportContent(true)
		return a, tea.Batch(cmd, a.loadingSpinner.Tick)

	case "esc":
		if a.dataModel.Cancel() {
			a.updateViewportContent(true)
		}
		return a, nil

	case "alt+a":
		a.attachmentPicker.Activate()
		return a, a.attachmentPicker.Picker.Init()

	case "alt+x":
		a.dataModel.ClearAttachment()
		return a, nil

	case "alt+h":
		a.showHistory = true
		a.historyLoading = true
		a.historyError = ""
		a.selectedHistoryIdx = 0
		return a, tea.Batch(a.dataModel.FetchHistory(), a.loadingSpinner.Tick)

	case "alt+l":
		if a.dataModel.Credentials != nil && a.dataModel.Credentials.SignedIn() {
			if err := a.dataModel.SignOut(); err != nil {
				a.acknowledge("⚠️  로그아웃 실패", err.Error(), ModalTypeError)
			}
			return a, nil
		}
		a.showLogin = true
		a.loginError = ""
		a.loginFocusedField = 0
		a.loginUsernameInput.Focus()
		a.loginPasswordInput.Blur()
		a.textarea.Blur()
		return a, textinput.Blink

	case "alt+y":
		// Copy the most recent assistant answer
		for i := len(a.dataModel.Turns) - 1; i >= 0; i-- {
			if a.dataModel.Turns[i].Role == appmodel.RoleAssistant {
				clipboard.WriteAll(a.dataModel.Turns[i].Content)
				break
			}
		}
		return a, nil

	case "alt+k":
		a.showHelp = true
		return a, nil

	case "alt+b":
		a.showAbout = true
		return a, nil

	case "pgup", "pgdown", "ctrl+u", "ctrl+d", "home", "end":
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	// Everything else goes to the textarea
	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a AppView) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.loggingIn {
		// Only allow bailing out while the request runs
		if msg.String() == "esc" {
			a.loggingIn = false
			a.showLogin = false
			a.textarea.Focus()
		}
		return a, nil
	}

	switch msg.String() {
	case "esc":
		a.showLogin = false
		a.loginError = ""
		a.textarea.Focus()
		return a, nil

	case "tab", "shift+tab", "up", "down":
		a.loginFocusedField = (a.loginFocusedField + 1) % 2
		if a.loginFocusedField == 0 {
			a.loginUsernameInput.Focus()
			a.loginPasswordInput.Blur()
		} else {
			a.loginUsernameInput.Blur()
			a.loginPasswordInput.Focus()
		}
		return a, textinput.Blink

	case "enter":
		username := strings.TrimSpace(a.loginUsernameInput.Value())
		password := a.loginPasswordInput.Value()
		if username == "" || password == "" {
			a.loginError = "아이디와 비밀번호를 입력해 주세요."
			return a, nil
		}
		a.loggingIn = true
		a.loginError = ""
		return a, tea.Batch(a.dataModel.Login(username, password), a.loadingSpinner.Tick)
	}

	var cmd tea.Cmd
	if a.loginFocusedField == 0 {
		a.loginUsernameInput, cmd = a.loginUsernameInput.Update(msg)
	} else {
		a.loginPasswordInput, cmd = a.loginPasswordInput.Update(msg)
	}
	return a, cmd
}

func (a AppView) handleAttachmentPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		a.attachmentPicker.Reset()
		return a, nil
	}

	var cmd tea.Cmd
	a.attachmentPicker.Picker, cmd = a.attachmentPicker.Picker.Update(msg)

	if didSelect, path := a.attachmentPicker.Picker.DidSelectFile(msg); didSelect {
		att, err := appmodel.LoadAttachment(path)
		if err != nil {
			a.acknowledge("⚠️  첨부 불가", "이미지 또는 PDF 파일만 첨부할 수 있습니다.", ModalTypeWarning)
			a.attachmentPicker.Reset()
			return a, nil
		}
		a.dataModel.StageAttachment(att)
		a.attachmentPicker.Reset()
		return a, nil
	}

	return a, cmd
}

func (a AppView) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Delete confirmation has priority
	if a.confirmDeleteReport != nil {
		switch msg.String() {
		case "y", "Y":
			record := a.confirmDeleteReport
			a.confirmDeleteReport = nil
			return a, a.deleteReport(record.ID.String())
		case "n", "N", "esc":
			a.confirmDeleteReport = nil
		}
		return a, nil
	}

	// Filter mode: route keys to the filter input
	if a.historyFilterMode {
		switch msg.String() {
		case "esc":
			a.historyFilterMode = false
			a.historyFilterInput.Blur()
			a.filteredHistoryList = nil
			return a, nil
		case "enter":
			a.historyFilterMode = false
			a.historyFilterInput.Blur()
			return a, nil
		}

		var cmd tea.Cmd
		a.historyFilterInput, cmd = a.historyFilterInput.Update(msg)

		filterValue := a.historyFilterInput.Value()
		if filterValue == "" {
			a.filteredHistoryList = nil
		} else {
			targets := make([]string, len(a.historyList))
			for i, r := range a.historyList {
				targets[i] = r.Query
			}

			matches := fuzzy.Find(filterValue, targets)
			a.filteredHistoryList = make([]api.ReportRecord, len(matches))
			for i, match := range matches {
				a.filteredHistoryList[i] = a.historyList[match.Index]
			}
		}

		list := a.getHistoryList()
		if a.selectedHistoryIdx >= len(list) && len(list) > 0 {
			a.selectedHistoryIdx = len(list) - 1
		}
		return a, cmd
	}

	list := a.getHistoryList()

	switch msg.String() {
	case "esc":
		a.showHistory = false
		a.historyFilterInput.SetValue("")
		a.filteredHistoryList = nil
		return a, nil

	case "/":
		a.historyFilterMode = true
		a.historyFilterInput.SetValue("")
		a.historyFilterInput.Focus()
		return a, textinput.Blink

	case "j", "down":
		if a.selectedHistoryIdx < len(list)-1 {
			a.selectedHistoryIdx++
		}
		return a, nil

	case "k", "up":
		if a.selectedHistoryIdx > 0 {
			a.selectedHistoryIdx--
		}
		return a, nil

	case "d":
		if a.selectedHistoryIdx < len(list) {
			record := list[a.selectedHistoryIdx]
			a.confirmDeleteReport = &record
		}
		return a, nil

	case "enter":
		if a.selectedHistoryIdx < len(list) {
			a.openingReport = true
			record := list[a.selectedHistoryIdx]
			return a, tea.Batch(a.dataModel.OpenHistoryReport(record.ID.String()), a.loadingSpinner.Tick)
		}
		return a, nil
	}

	return a, nil
}

type reportDeletedMsg struct {
	Err error
}

func (a AppView) deleteReport(reportID string) tea.Cmd {
	client := a.dataModel.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := client.DeleteReport(ctx, reportID)
		return reportDeletedMsg{Err: err}
	}
}

// userFacingAPIError keeps server detail when present and hides raw
// transport errors otherwise.
func userFacingAPIError(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return "서버와 통신하는 중 문제가 발생했습니다."
}
