package model

import (
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// The progress indicator is cosmetic. Analysis requests take several
// seconds to tens of seconds; the bar advances on a fixed tick with a
// pseudo-random step, monotonically toward (never reaching) 100, and the
// stage label is keyed purely on the percentage. No other component may
// read it as a real signal.

const (
	progressTickInterval = 400 * time.Millisecond
	progressCeiling      = 95.0
)

type progressStage struct {
	threshold float64
	label     string
}

// Four ordered bands: analysis, statute/precedent search, generation,
// final review.
var progressStages = []progressStage{
	{25, "질의 내용을 분석하고 있습니다"},
	{55, "관련 법령과 판례를 검색하고 있습니다"},
	{85, "답변을 생성하고 있습니다"},
	{101, "최종 검토 중입니다"},
}

// StageLabel returns the human-readable stage for a progress percentage.
func StageLabel(percent float64) string {
	for _, s := range progressStages {
		if percent < s.threshold {
			return s.label
		}
	}
	return progressStages[len(progressStages)-1].label
}

// AdvanceProgress moves the simulated percentage forward. The step shrinks
// as the bar approaches the ceiling, so it creeps asymptotically instead
// of stalling visibly.
func AdvanceProgress(percent float64) float64 {
	remaining := progressCeiling - percent
	if remaining <= 0 {
		return percent
	}
	step := remaining * 0.06 * (0.5 + rand.Float64())
	return percent + step
}

// ProgressTick schedules the next simulated-progress update for the
// request identified by seq. Ticks carrying a stale seq are ignored, which
// tears the timer down once the request settles.
func ProgressTick(seq int) tea.Cmd {
	return tea.Tick(progressTickInterval, func(time.Time) tea.Msg {
		return ProgressTickMsg{Seq: seq}
	})
}
