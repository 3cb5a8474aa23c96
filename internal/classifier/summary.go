package classifier

import (
	"context"
	"regexp"
	"strings"
)

// minSentenceRunes is the shortest sentence considered for a summary.
const minSentenceRunes = 10

var (
	whitespaceRun    = regexp.MustCompile(`\s+`)
	sentenceBoundary = regexp.MustCompile(`[。！？.!?]+`)
)

// Summarise packs leading sentences into at most maxLength characters.
// Content without usable sentences is truncated.
func Summarise(content string, maxLength int) string {
	cleaned := strings.TrimSpace(whitespaceRun.ReplaceAllString(content, " "))

	var sentences []string
	for _, s := range sentenceBoundary.Split(cleaned, -1) {
		if runeLen(strings.TrimSpace(s)) > minSentenceRunes {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 {
		return truncateRunes(cleaned, maxLength)
	}

	var b strings.Builder
	length := 0
	for _, s := range sentences {
		if length+runeLen(s) > maxLength {
			break
		}
		trimmed := strings.TrimSpace(s)
		b.WriteString(trimmed)
		b.WriteString("。")
		length += runeLen(trimmed) + 1
	}

	if b.Len() == 0 {
		return truncateRunes(sentences[0], maxLength) + "..."
	}
	return b.String()
}

// RuleSummariser implements driven.Summariser without any external call.
type RuleSummariser struct{}

// Summarise implements driven.Summariser.
func (RuleSummariser) Summarise(_ context.Context, content string, maxLength int) string {
	return Summarise(content, maxLength)
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
