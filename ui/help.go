package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderHelpModal(width, height int) string {
	if width < 20 || height < 10 {
		return "Terminal too small"
	}

	modalWidth := 64
	if width < modalWidth+10 {
		modalWidth = width - 10
		if modalWidth < 10 {
			modalWidth = 10
		}
	}

	keyStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	contentStyle := lipgloss.NewStyle().Width(modalWidth).Align(lipgloss.Left)

	bindings := []struct {
		key  string
		desc string
	}{
		{"Enter", "질문 보내기"},
		{"Alt+Enter", "줄바꿈"},
		{"Esc", "진행 중인 요청 취소"},
		{"Alt+A", "계약서 파일 첨부 (이미지/PDF)"},
		{"Alt+X", "첨부 취소"},
		{"Alt+H", "상담 기록 열기"},
		{"Alt+L", "로그인 / 로그아웃"},
		{"Alt+Y", "마지막 답변 복사"},
		{"Alt+B", "프로그램 정보"},
		{"Alt+K", "도움말"},
		{"Alt+Q", "종료"},
		{"", ""},
		{"리포트 화면", ""},
		{"Enter", "추가 질문"},
		{"Alt+S", "법령 개정 알림 구독"},
		{"Esc", "리포트 닫기"},
	}

	var messageLines []string
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))

	for _, b := range bindings {
		if b.key == "" && b.desc == "" {
			messageLines = append(messageLines, strings.Repeat(" ", modalWidth))
			continue
		}
		if b.desc == "" {
			messageLines = append(messageLines, contentStyle.Render("  "+TitleStyle.Render(b.key)))
			continue
		}
		line := "    " + keyStyle.Render(padRight(b.key, 12)) + b.desc
		messageLines = append(messageLines, contentStyle.Render(line))
	}

	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))

	return RenderThreeSectionModal(
		"도움말",
		messageLines,
		"Press Esc to close",
		ModalTypeInfo,
		modalWidth,
		width,
		height,
	)
}
