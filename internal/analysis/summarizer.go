package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/pulseboard/feedback-insights/internal/llm"
	"github.com/sirupsen/logrus"
)

const (
	// NoFeedbackSummary is returned when there is nothing to summarize.
	NoFeedbackSummary = "No feedback to summarize"

	summaryUnavailable = "Summary unavailable - please review the feedback manually"

	maxSummarizeTexts = 10
)

// Summarizer condenses recent feedback for one theme into a short
// actionable narrative. Same contract as the classifier: it never fails,
// a broken generator call degrades to a fixed message.
type Summarizer struct {
	llm llm.Client
}

// NewSummarizer creates a summarizer backed by the given text generator
func NewSummarizer(client llm.Client) *Summarizer {
	return &Summarizer{llm: client}
}

// Summarize takes feedback texts ordered most-recent-first and a theme
// label. Only the first 10 texts are used; an empty sequence short-circuits
// without invoking the generator.
func (s *Summarizer) Summarize(ctx context.Context, texts []string, theme string) string {
	if len(texts) == 0 {
		return NoFeedbackSummary
	}

	if len(texts) > maxSummarizeTexts {
		texts = texts[:maxSummarizeTexts]
	}

	summary, err := s.llm.Run(ctx, buildSummaryPrompt(texts, theme))
	if err != nil {
		logrus.Warnf("Summarizer call failed for theme %q: %v", theme, err)
		return summaryUnavailable
	}

	return strings.TrimSpace(summary)
}

func buildSummaryPrompt(texts []string, theme string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Here is recent product feedback about %q, newest first:\n\n", theme)
	sb.WriteString(strings.Join(texts, "\n---\n"))
	sb.WriteString("\n\n")
	sb.WriteString("Write a 2-3 sentence summary covering: the main pain points, ")
	sb.WriteString("any recurring patterns, and one suggested action for the product team. ")
	sb.WriteString("Be direct and specific.")

	return sb.String()
}
