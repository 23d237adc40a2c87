package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"lawtui/config"
	appmodel "lawtui/model"
	"lawtui/report"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

func (a *AppView) updateViewportContent(gotoBottom bool) {
	if len(a.dataModel.Turns) == 0 {
		a.viewport.SetContent("아직 대화가 없습니다. 법률 질문으로 시작해 보세요.")
		return
	}

	var content strings.Builder

	for _, turn := range a.dataModel.Turns {
		timestamp := DimStyle.Render(turn.Timestamp.Format("[15:04]"))

		var roleStyle = DimStyle
		var roleName string
		switch turn.Role {
		case appmodel.RoleUser:
			roleStyle = UserStyle
			roleName = "나"
		case appmodel.RoleAssistant:
			roleStyle = AssistantStyle
			roleName = "법률 비서"
		default:
			roleStyle = DimStyle
			roleName = "System"
		}

		role := roleStyle.Render(roleName)
		role += intentBadge(turn.Intent)

		// User messages with vertical bar formatting
		if turn.Role == appmodel.RoleUser {
			content.WriteString(formatUserMessage(timestamp, role, turn.Rendered))
			continue
		}

		// Default formatting for assistant and system turns
		content.WriteString(fmt.Sprintf("%s %s\n%s\n", timestamp, role, turn.Rendered))
		content.WriteString(formatSources(turn.Sources))
		content.WriteString("\n")
	}

	// Waiting placeholder under the last user turn
	if a.dataModel.Submitting {
		content.WriteString(fmt.Sprintf("%s %s\n\n", a.loadingSpinner.View(), DimStyle.Render(a.dataModel.Stage()+"...")))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

// intentBadge marks how an assistant answer was produced.
func intentBadge(intent appmodel.Intent) string {
	switch intent {
	case appmodel.IntentReport:
		return " " + SelectedStyle.Render("[리포트]")
	case appmodel.IntentVision:
		return " " + SelectedStyle.Render("[문서 분석]")
	default:
		return ""
	}
}

// formatSources renders the citation footer under an assistant turn.
// Statutes are marked so the user knows they can be subscribed from the
// report view.
func formatSources(sources []report.Citation) string {
	if len(sources) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(DimStyle.Render("근거 자료:"))
	b.WriteString("\n")
	for _, src := range sources {
		if src.IsStatute() {
			b.WriteString("  " + StatuteStyle.Render("⚖ "+src.Source) + "\n")
		} else {
			b.WriteString("  " + DimStyle.Render("• "+src.Source) + "\n")
		}
	}
	return b.String()
}

func formatUserMessage(timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	lines := strings.Split(content, "\n")

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))

	for _, line := range lines {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

// renderProgressLine draws the simulated progress bar with its stage label.
func (a AppView) renderProgressLine() string {
	barWidth := a.width - 40
	if barWidth < 10 {
		barWidth = 10
	}

	bar := a.progressBar
	bar.Width = barWidth

	percent := a.dataModel.Percent
	label := DimStyle.Render(fmt.Sprintf(" %3.0f%%  %s", percent, a.dataModel.Stage()))
	return " " + bar.ViewAs(percent/100) + label
}

// renderLastTurn kicks off async markdown rendering for the newest turn.
func (a AppView) renderLastTurn() tea.Cmd {
	idx := len(a.dataModel.Turns) - 1
	if idx < 0 {
		return nil
	}
	return a.renderMarkdownAsync(idx, a.dataModel.Turns[idx].Content)
}

func (a AppView) renderMarkdownAsync(turnIndex int, content string) tea.Cmd {
	width := a.width
	return func() tea.Msg {
		if config.DebugLog != nil {
			config.DebugLog.Printf("Starting async markdown render for turn %d - length: %d chars", turnIndex, len(content))
		}
		startTime := time.Now()

		rendered := renderMarkdown(content, width)

		elapsed := time.Since(startTime)
		if config.DebugLog != nil {
			config.DebugLog.Printf("Markdown rendered and post-processed in %v", elapsed)
		}

		return markdownRenderedMsg{
			TurnIndex: turnIndex,
			Rendered:  rendered,
		}
	}
}

// renderMarkdown is the shared terminal markdown pipeline, used by the chat
// viewport and the report view.
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 80
	}

	// Preprocess: strip markdown link syntax [text](url) → url
	// This ensures all links appear as plain red URLs regardless of format
	content = preprocessLinks(content)

	// Render with go-term-markdown (simple, fast, lightweight)
	// Disable autolink extension to keep plain URLs as plain text
	// This allows terminal emulators to handle URL detection and clickability
	defaultExt := markdown.Extensions()
	customExt := defaultExt &^ parser.Autolink
	p := parser.NewWithExtensions(customExt)
	r := markdown.NewRenderer(width-4, 0)
	doc := p.Parse([]byte(content))
	rendered := gomarkdown.Render(doc, r)

	// Post-process: fix inline code colors and color URLs
	processed := fixInlineCode(string(rendered))
	processed = fixMarkdownLinks(processed)
	return processed
}

func preprocessLinks(content string) string {
	// Strip markdown link syntax [text](url) → just url
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

func fixInlineCode(s string) string {
	// Replace: \x1b[44;3m...text...\x1b[0m (Blue BG + Italic)
	// With:    \x1b[31m...text...\x1b[0m (Red text)
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func fixMarkdownLinks(s string) string {
	// Color plain URLs red for visual distinction
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
	}
	return strings.Join(lines, "\n")
}
