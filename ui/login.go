package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// renderLoginModal draws the credential entry modal. Reports are only
// persisted server-side for signed-in users, so this is the gateway to
// history and statute subscriptions.
func renderLoginModal(usernameInput, passwordInput textinput.Model, focusedField int, loggingIn bool, sp spinner.Model, errMsg string, width, height int) string {
	if width < 20 || height < 10 {
		return "Terminal too small"
	}

	modalWidth := 60
	if width < modalWidth+10 {
		modalWidth = width - 10
		if modalWidth < 10 {
			modalWidth = 10
		}
	}

	contentStyle := lipgloss.NewStyle().Width(modalWidth).Align(lipgloss.Left)

	var messageLines []string
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))

	if loggingIn {
		messageLines = append(messageLines, centerTextLine(fmt.Sprintf("%s 로그인 중...", sp.View()), modalWidth))
		messageLines = append(messageLines, strings.Repeat(" ", modalWidth))
		return RenderThreeSectionModal("🔐 로그인", messageLines, "Esc Cancel", ModalTypeInfo, modalWidth, width, height)
	}

	cursor := func(field int) string {
		if focusedField == field {
			return SelectedStyle.Render("> ")
		}
		return "  "
	}

	messageLines = append(messageLines, contentStyle.Render("  "+cursor(0)+usernameInput.View()))
	messageLines = append(messageLines, contentStyle.Render("  "+cursor(1)+passwordInput.View()))

	if errMsg != "" {
		messageLines = append(messageLines, strings.Repeat(" ", modalWidth))
		errStyle := lipgloss.NewStyle().Foreground(dangerColor).Width(modalWidth).Align(lipgloss.Center)
		messageLines = append(messageLines, errStyle.Render(errMsg))
	}

	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))

	footer := FormatFooter("Tab", "Next field", "Enter", "Login", "Esc", "Cancel")

	return RenderThreeSectionModal(
		"🔐 로그인",
		messageLines,
		footer,
		ModalTypeInfo,
		modalWidth,
		width,
		height,
	)
}
