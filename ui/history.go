package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"lawtui/api"
)

// renderHistory draws the saved-report browser: one line per report with
// its question, creation time, and engine.
func renderHistory(records []api.ReportRecord, selectedIdx int, loading, opening bool, sp spinner.Model, errMsg string, filterMode bool, filterInput textinput.Model, confirmDelete *api.ReportRecord, width, height int) string {
	if width < 20 || height < 10 {
		return "Terminal too small"
	}

	if confirmDelete != nil {
		return RenderConfirmationModal(ConfirmationState{
			Active:  true,
			Title:   "리포트 삭제",
			Message: fmt.Sprintf("다음 리포트를 삭제할까요?\n\n%s", truncate(confirmDelete.Query, 50)),
		}, width, height)
	}

	modalWidth := width - 10
	if modalWidth < 30 {
		modalWidth = 30
	}
	if modalWidth > 100 {
		modalWidth = 100
	}

	var messageLines []string
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))

	contentStyle := lipgloss.NewStyle().Width(modalWidth).Align(lipgloss.Left)

	switch {
	case loading:
		messageLines = append(messageLines, centerTextLine(fmt.Sprintf("%s 리포트 목록을 불러오는 중...", sp.View()), modalWidth))

	case opening:
		messageLines = append(messageLines, centerTextLine(fmt.Sprintf("%s 리포트를 여는 중...", sp.View()), modalWidth))

	case errMsg != "":
		messageLines = append(messageLines, centerTextLine(errMsg, modalWidth))

	case len(records) == 0:
		messageLines = append(messageLines, centerTextLine("저장된 리포트가 없습니다.", modalWidth))
		messageLines = append(messageLines, centerTextLine("로그인 후 생성한 리포트가 여기에 표시됩니다.", modalWidth))

	default:
		queryWidth := modalWidth - 30
		if queryWidth < 20 {
			queryWidth = 20
		}

		for i, record := range records {
			cursor := "  "
			style := lipgloss.NewStyle()
			if i == selectedIdx {
				cursor = "> "
				style = SelectedStyle
			}

			query := truncate(record.Query, queryWidth)
			when := formatCreatedAt(record.CreatedAt)
			line := fmt.Sprintf("%s%s  %s  %s",
				cursor,
				style.Render(padRight(query, queryWidth)),
				DimStyle.Render(padRight(when, 12)),
				DimStyle.Render(record.Engine),
			)
			messageLines = append(messageLines, contentStyle.Render("  "+line))
		}
	}

	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))

	if filterMode {
		messageLines = append(messageLines, contentStyle.Render("  "+filterInput.View()))
		messageLines = append(messageLines, strings.Repeat(" ", modalWidth))
	}

	footer := FormatFooter("j/k", "Navigate", "Enter", "Open", "/", "Filter", "d", "Delete", "Esc", "Close")

	return RenderThreeSectionModal(
		"📋 상담 기록",
		messageLines,
		footer,
		ModalTypeInfo,
		modalWidth,
		width,
		height,
	)
}

func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

func padRight(s string, width int) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}

// formatCreatedAt turns the server timestamp into a short relative label.
// Unparseable values fall back to the first ten characters (the date part).
func formatCreatedAt(createdAt string) string {
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		if len(createdAt) >= 10 {
			return createdAt[:10]
		}
		return createdAt
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "방금 전"
	case d < time.Hour:
		return fmt.Sprintf("%d분 전", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d시간 전", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d일 전", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
