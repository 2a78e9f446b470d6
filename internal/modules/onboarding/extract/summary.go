package extract

import (
	"regexp"
	"strings"
)

var (
	fenceLineRe  = regexp.MustCompile("(?m)^\\s*```[A-Za-z0-9_+-]*\\s*$")
	inlineCodeRe = regexp.MustCompile("`([^`\n]*)`")
	boldRe       = regexp.MustCompile(`\*\*([^*\n]+)\*\*|__([^_\n]+)__`)
	italicRe     = regexp.MustCompile(`\*([^*\n]+)\*`)
	headingRe    = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]*`)
	bulletRe     = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// StripMarkdown removes emphasis, code and heading markers, keeping the text.
func StripMarkdown(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = fenceLineRe.ReplaceAllString(s, "")
	s = inlineCodeRe.ReplaceAllString(s, "$1")
	s = boldRe.ReplaceAllString(s, "$1$2")
	s = italicRe.ReplaceAllString(s, "$1")
	s = headingRe.ReplaceAllString(s, "")
	s = bulletRe.ReplaceAllString(s, "")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func (e *Extractor) Summary(raw string) Result[string] {
	text := StripMarkdown(raw)
	if text == "" {
		return Result[string]{Value: strings.TrimSpace(e.cat.Fallback.Summary), Fallback: true, Reason: "empty completion"}
	}
	return Result[string]{Value: text}
}
