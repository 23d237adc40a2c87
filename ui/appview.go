package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lawtui/api"
	appmodel "lawtui/model"
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI Components
	viewport viewport.Model
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	showHelp  bool
	showAbout bool

	// Loading spinner (bubbles/spinner) and simulated progress bar
	loadingSpinner spinner.Model
	progressBar    progress.Model

	// Unread statute amendment notices, shown as a title badge
	unreadNotifications int

	// Attachment picker modal
	attachmentPicker FilePickerState

	// History browser
	showHistory         bool
	historyLoading      bool
	historyError        string
	historyList         []api.ReportRecord
	selectedHistoryIdx  int
	historyFilterMode   bool
	historyFilterInput  textinput.Model
	filteredHistoryList []api.ReportRecord
	confirmDeleteReport *api.ReportRecord
	openingReport       bool

	// Login modal
	showLogin          bool
	loggingIn          bool
	loginError         string
	loginUsernameInput textinput.Model
	loginPasswordInput textinput.Model
	loginFocusedField  int

	// Report view overlay - non-nil while a report occupies the screen
	reportView *ReportView

	// Acknowledge modal (for warnings/errors requiring only acknowledgement)
	showAcknowledgeModal  bool
	acknowledgeModalTitle string
	acknowledgeModalMsg   string
	acknowledgeModalType  ModalType
}

func NewAppView(dataModel *appmodel.Model) AppView {
	ta := textarea.New()
	ta.Placeholder = "법률 질문을 입력하거나 Alt+A로 계약서 파일을 첨부하세요..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Custom KeyMap: Alt+Enter for newline, Enter alone does nothing (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	// Set dynamic prompt: "> " for first line, "| " for subsequent lines
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	pb := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	attachmentPicker := NewFilePickerState(FilePickerConfig{
		Title:        "계약서 파일 선택",
		AllowedTypes: []string{".jpg", ".jpeg", ".png", ".webp", ".pdf"},
		ShowHidden:   false,
	})

	historyFilterInput := textinput.New()
	historyFilterInput.Prompt = "Filter: "
	historyFilterInput.CharLimit = 64

	usernameInput := textinput.New()
	usernameInput.Prompt = "아이디: "
	usernameInput.CharLimit = 64

	passwordInput := textinput.New()
	passwordInput.Prompt = "비밀번호: "
	passwordInput.CharLimit = 128
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '•'

	return AppView{
		dataModel:          dataModel,
		textarea:           ta,
		viewport:           vp,
		loadingSpinner:     sp,
		progressBar:        pb,
		attachmentPicker:   attachmentPicker,
		historyFilterInput: historyFilterInput,
		loginUsernameInput: usernameInput,
		loginPasswordInput: passwordInput,
	}
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.dataModel.FetchNotifications())
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading LawTUI..."
	}

	// Report view takes over the whole screen while open
	if a.reportView != nil {
		return a.reportView.View()
	}

	// Modal rendering order (top to bottom layers):
	// 1. Help (always on top - can peek while in other modals)
	// 2. Acknowledge modal
	// 3. Login
	// 4. Attachment picker
	// 5. History browser
	// 6. About
	if a.showHelp {
		return renderHelpModal(a.width, a.height)
	}

	if a.showAcknowledgeModal {
		return RenderAcknowledgeModal(
			a.acknowledgeModalTitle,
			a.acknowledgeModalMsg,
			a.acknowledgeModalType,
			a.width,
			a.height,
		)
	}

	if a.showLogin {
		return renderLoginModal(a.loginUsernameInput, a.loginPasswordInput, a.loginFocusedField, a.loggingIn, a.loadingSpinner, a.loginError, a.width, a.height)
	}

	if a.attachmentPicker.Active {
		return RenderFilePickerModal(a.attachmentPicker, a.width, a.height)
	}

	if a.showHistory {
		return renderHistory(a.getHistoryList(), a.selectedHistoryIdx, a.historyLoading, a.openingReport, a.loadingSpinner, a.historyError, a.historyFilterMode, a.historyFilterInput, a.confirmDeleteReport, a.width, a.height)
	}

	if a.showAbout {
		return renderAboutModal(a.width, a.height, a.dataModel.Version, a.dataModel.License)
	}

	// Title bar - "LawTUI - server | user"
	titleText := AssistantStyle.Render("LawTUI")
	serverText := TitleStyle.Render(fmt.Sprintf(" - %s", a.dataModel.Config.ServerBaseURL()))

	userText := DimStyle.Render(" | 비회원")
	if a.dataModel.Credentials != nil && a.dataModel.Credentials.SignedIn() {
		session := a.dataModel.Credentials.Session()
		name := session.Nickname
		if name == "" {
			name = session.Username
		}
		userText = UserStyle.Render(fmt.Sprintf(" | %s", name))
	}

	attachmentText := ""
	if a.dataModel.Attachment != nil {
		attachmentText = SelectedStyle.Render(fmt.Sprintf(" | %s", a.dataModel.Attachment.PreviewLabel()))
	}

	notifText := ""
	if a.unreadNotifications > 0 {
		notifText = SelectedStyle.Render(fmt.Sprintf(" | 🔔 %d", a.unreadNotifications))
	}

	title := titleText + serverText + userText + attachmentText + notifText

	// Separator with bottom margin for header (empty line forces spacing)
	separator := ""

	// Viewport with messages
	viewportView := a.viewport.View()

	// Progress line while a request is in flight, blank line otherwise so
	// the layout height stays constant
	progressLine := ""
	if a.dataModel.Submitting {
		progressLine = a.renderProgressLine()
	}

	// Input area
	inputView := a.textarea.View()

	// Status bar with bold user green descriptions (main chat uses user green)
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	statusBar := fmt.Sprintf("Enter %s  Esc %s  Alt+A %s  Alt+H %s  Alt+L %s  Alt+Y %s  Alt+K %s  Alt+Q %s",
		descStyle.Render("Send"),
		descStyle.Render("Cancel"),
		descStyle.Render("Attach"),
		descStyle.Render("History"),
		descStyle.Render(a.loginKeyLabel()),
		descStyle.Render("Copy"),
		descStyle.Render("Help"),
		descStyle.Render("Quit"),
	)
	statusBar = StatusStyle.Render(statusBar)

	// Combine all parts
	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		separator,
		viewportView,
		progressLine,
		inputView,
		statusBar,
	)
}

func (a AppView) loginKeyLabel() string {
	if a.dataModel.Credentials != nil && a.dataModel.Credentials.SignedIn() {
		return "Logout"
	}
	return "Login"
}

func (a AppView) getHistoryList() []api.ReportRecord {
	if a.historyFilterMode && len(a.filteredHistoryList) > 0 {
		return a.filteredHistoryList
	}
	return a.historyList
}

func (a *AppView) closeAllModals() {
	a.showHelp = false
	a.showAbout = false
	a.showHistory = false
	a.showLogin = false
	a.showAcknowledgeModal = false

	a.historyFilterMode = false
	a.confirmDeleteReport = nil
	a.attachmentPicker.Active = false

	if a.historyFilterInput.Focused() {
		a.historyFilterInput.Blur()
	}
	if a.loginUsernameInput.Focused() {
		a.loginUsernameInput.Blur()
	}
	if a.loginPasswordInput.Focused() {
		a.loginPasswordInput.Blur()
	}
	a.textarea.Focus()
}

func (a *AppView) acknowledge(title, msg string, modalType ModalType) {
	a.showAcknowledgeModal = true
	a.acknowledgeModalTitle = title
	a.acknowledgeModalMsg = msg
	a.acknowledgeModalType = modalType
}
