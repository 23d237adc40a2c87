package report

import (
	"fmt"
	"regexp"
	"strings"
)

// Sections is the structured form of a report answer. Every field may be
// empty, but when no section labels are recognized at all the whole cleaned
// answer lands in Overview so no content is ever dropped.
type Sections struct {
	Overview   string
	Analysis   string
	Conclusion string
	Action     string
}

// The report convention orders sections as 사건 개요 → 법률 분석 → 결론 →
// 향후 조치, each optionally prefixed by an ordinal ("1." / "2)") and
// optionally wrapped in markdown emphasis.
var sectionLabels = []string{"사건 개요", "법률 분석", "결론", "향후 조치"}

// labelPattern matches one section heading: optional ordinal, optional
// surrounding **, optional trailing colon.
func labelPattern(label string) string {
	return fmt.Sprintf(`(?i)(?:\*\*\s*)?(?:\d+\s*[.)]\s*)?(?:\*\*\s*)?%s(?:\s*\*\*)?\s*[:：]?`, regexp.QuoteMeta(label))
}

var (
	labelRegexes = func() []*regexp.Regexp {
		res := make([]*regexp.Regexp, len(sectionLabels))
		for i, l := range sectionLabels {
			res[i] = regexp.MustCompile(labelPattern(l))
		}
		return res
	}()

	// terminatorRegexes[i] matches any heading that may follow section i.
	terminatorRegexes = func() []*regexp.Regexp {
		res := make([]*regexp.Regexp, len(sectionLabels))
		for i := range sectionLabels {
			var alts []string
			for _, l := range sectionLabels[i+1:] {
				alts = append(alts, labelPattern(l))
			}
			if len(alts) > 0 {
				res[i] = regexp.MustCompile(strings.Join(alts, "|"))
			}
		}
		return res
	}()

	emphasisRe   = regexp.MustCompile(`\*\*`)
	headingRe    = regexp.MustCompile(`(?m)^\s*#+\s*`)
	listMarkerRe = regexp.MustCompile(`(?m)^(\s*)[-*•]\s+`)
)

// ExtractSections splits a raw report answer into its four sections.
//
// Each section is matched independently against the whole text: find the
// section's heading, then capture up to the earliest occurrence of any later
// heading (or end of string). Out-of-order or duplicated headings are
// undefined input and simply truncate at whatever later heading appears
// first after the matched one.
func ExtractSections(answer string) Sections {
	parts := make([]string, len(sectionLabels))

	for i, re := range labelRegexes {
		loc := re.FindStringIndex(answer)
		if loc == nil {
			continue
		}
		rest := answer[loc[1]:]
		end := len(rest)
		if term := terminatorRegexes[i]; term != nil {
			if tloc := term.FindStringIndex(rest); tloc != nil {
				end = tloc[0]
			}
		}
		parts[i] = CleanText(rest[:end])
	}

	s := Sections{
		Overview:   parts[0],
		Analysis:   parts[1],
		Conclusion: parts[2],
		Action:     parts[3],
	}

	// Text that does not follow the convention at all: keep everything
	// visible by absorbing the full cleaned answer into the overview.
	if s.Overview == "" && s.Analysis == "" {
		return Sections{Overview: CleanText(answer)}
	}
	return s
}

// CleanText normalizes a section body for display: literal "\n" escapes
// become real newlines, emphasis and heading markers are stripped, list
// markers collapse to a single bullet glyph, surrounding whitespace is
// trimmed. Applying it twice yields the same result as applying it once.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = emphasisRe.ReplaceAllString(text, "")
	text = headingRe.ReplaceAllString(text, "")
	text = listMarkerRe.ReplaceAllString(text, "$1• ")
	return strings.TrimSpace(text)
}
