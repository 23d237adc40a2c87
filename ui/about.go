package ui

import (
	"fmt"
	"strings"
)

func renderAboutModal(width, height int, version, license string) string {
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

	var messageLines []string
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))
	messageLines = append(messageLines, centerTextLine("LawTUI - 터미널 법률 상담 비서", modalWidth))
	messageLines = append(messageLines, centerTextLine(fmt.Sprintf("Version %s", version), modalWidth))
	if license != "" {
		messageLines = append(messageLines, centerTextLine(license, modalWidth))
	}
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))
	messageLines = append(messageLines, centerTextLine("본 프로그램의 답변은 법률 자문이 아닌 참고 자료입니다.", modalWidth))
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))

	return RenderThreeSectionModal(
		"About",
		messageLines,
		"Press Enter to close",
		ModalTypeInfo,
		modalWidth,
		width,
		height,
	)
}
